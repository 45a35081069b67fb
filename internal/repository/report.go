package repository

import (
	"context"

	"example/storefront/internal/logger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Report queries. Sums and averages come back as the driver reports them
// and are rounded by the caller.

// ProductSalesRow is one product's share of all purchases
type ProductSalesRow struct {
	ProductID    uuid.UUID       `db:"product_id"`
	Name         string          `db:"name"`
	Price        decimal.Decimal `db:"price"`
	Region       string          `db:"region"`
	TotalSales   int64           `db:"total_sales"`
	TotalRevenue decimal.Decimal `db:"total_revenue"`
}

// PurchaseTotalsRow aggregates every purchase
type PurchaseTotalsRow struct {
	TotalPurchases int64           `db:"total_purchases"`
	TotalRevenue   decimal.Decimal `db:"total_revenue"`
	AverageTicket  decimal.Decimal `db:"average_ticket"`
}

// DailyProductRow aggregates one product's purchases on one calendar day
type DailyProductRow struct {
	Day             string          `db:"sale_day"`
	ProductID       uuid.UUID       `db:"product_id"`
	Name            string          `db:"name"`
	Price           decimal.Decimal `db:"price"`
	TotalPurchases  int64           `db:"total_purchases"`
	TotalRevenue    decimal.Decimal `db:"total_revenue"`
	AveragePurchase decimal.Decimal `db:"average_purchase"`
}

// GetSalesByProduct sums quantity and revenue per product, best sellers first
func GetSalesByProduct(ctx context.Context, s Session) ([]ProductSalesRow, error) {
	rows := []ProductSalesRow{}

	err := sqlx.SelectContext(ctx, s, &rows, `
		SELECT pr.id AS product_id, pr.name, pr.price, pr.region,
		       SUM(p.quantity) AS total_sales,
		       SUM(p.total_price) AS total_revenue
		FROM purchase p
		JOIN product pr ON p.product_id = pr.id
		GROUP BY pr.id, pr.name, pr.price, pr.region
		ORDER BY total_sales DESC, pr.name, pr.id`)
	if err != nil {
		logger.Log.Errorw("Failed to query sales by product", "error", err)
		return nil, errors.Wrap(err, "getSalesByProduct")
	}

	return rows, nil
}

// GetPurchaseTotals counts all purchases and sums and averages their totals
func GetPurchaseTotals(ctx context.Context, s Session) (PurchaseTotalsRow, error) {
	var totals PurchaseTotalsRow

	err := sqlx.GetContext(ctx, s, &totals, `
		SELECT COUNT(id) AS total_purchases,
		       COALESCE(SUM(total_price), 0) AS total_revenue,
		       COALESCE(AVG(total_price), 0) AS average_ticket
		FROM purchase`)
	if err != nil {
		logger.Log.Errorw("Failed to query purchase totals", "error", err)
		return totals, errors.Wrap(err, "getPurchaseTotals")
	}

	return totals, nil
}

// GetDailyProductStats groups purchases by calendar day and product, most
// recent day first
func GetDailyProductStats(ctx context.Context, s Session) ([]DailyProductRow, error) {
	rows := []DailyProductRow{}
	day := dayOf(s, "p.created_at")

	err := sqlx.SelectContext(ctx, s, &rows, `
		SELECT `+day+` AS sale_day, pr.id AS product_id, pr.name, pr.price,
		       COUNT(p.id) AS total_purchases,
		       SUM(p.total_price) AS total_revenue,
		       AVG(p.total_price) AS average_purchase
		FROM purchase p
		JOIN product pr ON p.product_id = pr.id
		GROUP BY `+day+`, pr.id, pr.name, pr.price
		ORDER BY sale_day DESC, pr.name, pr.id`)
	if err != nil {
		logger.Log.Errorw("Failed to query daily purchase stats", "error", err)
		return nil, errors.Wrap(err, "getDailyProductStats")
	}

	return rows, nil
}
