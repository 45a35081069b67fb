package service

import (
	"context"

	"example/storefront/internal/models"
	"example/storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// moneyPlaces is the scale every reported amount is rounded to
const moneyPlaces = 2

// SalesReport ranks products by units sold and adds overall totals
func (s *Shop) SalesReport(ctx context.Context) (models.SalesReport, error) {
	rows, err := repository.GetSalesByProduct(ctx, s.db)
	if err != nil {
		return models.SalesReport{}, err
	}
	totals, err := repository.GetPurchaseTotals(ctx, s.db)
	if err != nil {
		return models.SalesReport{}, err
	}

	report := models.SalesReport{
		SalesByProduct: make([]models.ProductSales, 0, len(rows)),
		AverageTicket:  totals.AverageTicket.Round(moneyPlaces),
		TotalPurchases: totals.TotalPurchases,
		TotalRevenue:   totals.TotalRevenue.Round(moneyPlaces),
	}
	for _, r := range rows {
		report.SalesByProduct = append(report.SalesByProduct, models.ProductSales{
			Product: models.ProductRef{
				ID:     r.ProductID,
				Name:   r.Name,
				Price:  r.Price,
				Region: r.Region,
			},
			TotalSales:   r.TotalSales,
			TotalRevenue: r.TotalRevenue.Round(moneyPlaces),
		})
	}
	return report, nil
}

// PurchaseReport breaks purchases down by day and product, then derives
// the overall summary and a per-product rollup from those daily rows.
func (s *Shop) PurchaseReport(ctx context.Context) (models.PurchaseReport, error) {
	rows, err := repository.GetDailyProductStats(ctx, s.db)
	if err != nil {
		return models.PurchaseReport{}, err
	}
	return buildPurchaseReport(rows), nil
}

func buildPurchaseReport(rows []repository.DailyProductRow) models.PurchaseReport {
	report := models.PurchaseReport{
		DailyStats:   make([]models.DailyStat, 0, len(rows)),
		ProductStats: []models.ProductStat{},
	}

	revenue := decimal.Zero
	var count int64
	byProduct := make(map[uuid.UUID]int)

	for _, r := range rows {
		ref := models.ProductRef{ID: r.ProductID, Name: r.Name, Price: r.Price}
		rowRevenue := r.TotalRevenue.Round(moneyPlaces)

		report.DailyStats = append(report.DailyStats, models.DailyStat{
			Date:            r.Day,
			Product:         ref,
			TotalPurchases:  r.TotalPurchases,
			TotalRevenue:    rowRevenue,
			AveragePurchase: r.AveragePurchase.Round(moneyPlaces),
		})

		revenue = revenue.Add(rowRevenue)
		count += r.TotalPurchases

		i, seen := byProduct[r.ProductID]
		if !seen {
			i = len(report.ProductStats)
			byProduct[r.ProductID] = i
			report.ProductStats = append(report.ProductStats, models.ProductStat{Product: ref, TotalRevenue: decimal.Zero})
		}
		report.ProductStats[i].TotalRevenue = report.ProductStats[i].TotalRevenue.Add(rowRevenue)
		report.ProductStats[i].TotalPurchases += r.TotalPurchases
	}

	report.Summary = models.ReportSummary{
		TotalRevenue:    revenue,
		TotalPurchases:  count,
		AveragePurchase: decimal.Zero,
	}
	if count > 0 {
		report.Summary.AveragePurchase = revenue.DivRound(decimal.NewFromInt(count), moneyPlaces)
	}
	return report
}
