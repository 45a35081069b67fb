package repository

import (
	"context"
	"database/sql"
	"time"

	"example/storefront/internal/logger"
	"example/storefront/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Purchase database operations

const purchaseDetailQuery = `
	SELECT p.id, p.product_id, p.customer_id, p.quantity, p.total_price, p.created_at, p.updated_at,
	       pr.name AS product_name, pr.price AS product_price, pr.description AS product_description
	FROM purchase p
	JOIN product pr ON p.product_id = pr.id`

// purchaseRow is a purchase joined with its product summary
type purchaseRow struct {
	models.Purchase
	ProductName        string          `db:"product_name"`
	ProductPrice       decimal.Decimal `db:"product_price"`
	ProductDescription *string         `db:"product_description"`
}

func (r purchaseRow) detail() models.PurchaseDetail {
	return models.PurchaseDetail{
		Purchase: r.Purchase,
		Product: models.ProductSummary{
			ID:          r.ProductID,
			Name:        r.ProductName,
			Price:       r.ProductPrice,
			Description: r.ProductDescription,
		},
	}
}

func details(rows []purchaseRow) []models.PurchaseDetail {
	out := make([]models.PurchaseDetail, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.detail())
	}
	return out
}

// GetAllPurchases queries for all purchases with product details, newest first
func GetAllPurchases(ctx context.Context, s Session) ([]models.PurchaseDetail, error) {
	var rows []purchaseRow

	err := sqlx.SelectContext(ctx, s, &rows, purchaseDetailQuery+" ORDER BY p.created_at DESC, p.id")
	if err != nil {
		logger.Log.Errorw("Failed to query purchases", "error", err)
		return nil, errors.Wrap(err, "getAllPurchases")
	}

	return details(rows), nil
}

// GetPurchasesByCustomerID queries for purchases by a specific customer, newest first
func GetPurchasesByCustomerID(ctx context.Context, s Session, customerID uuid.UUID) ([]models.PurchaseDetail, error) {
	var rows []purchaseRow

	err := sqlx.SelectContext(ctx, s, &rows, purchaseDetailQuery+" WHERE p.customer_id = ? ORDER BY p.created_at DESC, p.id", customerID)
	if err != nil {
		logger.Log.Errorw("Failed to query purchases by customer", "customer_id", customerID, "error", err)
		return nil, errors.Wrapf(err, "getPurchasesByCustomerID %s", customerID)
	}

	return details(rows), nil
}

// GetPurchaseDetail queries for one purchase with its product details
func GetPurchaseDetail(ctx context.Context, s Session, id uuid.UUID) (models.PurchaseDetail, error) {
	var row purchaseRow

	err := sqlx.GetContext(ctx, s, &row, purchaseDetailQuery+" WHERE p.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Log.Debugw("Purchase not found", "purchase_id", id)
		return models.PurchaseDetail{}, models.NotFound("purchase", id.String())
	}
	if err != nil {
		logger.Log.Errorw("Failed to query purchase", "purchase_id", id, "error", err)
		return models.PurchaseDetail{}, errors.Wrapf(err, "getPurchaseDetail %s", id)
	}

	return row.detail(), nil
}

// GetPurchaseForUpdate reads a bare purchase row and locks it
func GetPurchaseForUpdate(ctx context.Context, s Session, id uuid.UUID) (models.Purchase, error) {
	var p models.Purchase

	err := sqlx.GetContext(ctx, s, &p,
		"SELECT id, product_id, customer_id, quantity, total_price, created_at, updated_at FROM purchase WHERE id = ?"+forUpdate(s), id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, models.NotFound("purchase", id.String())
	}
	if err != nil {
		logger.Log.Errorw("Failed to lock purchase", "purchase_id", id, "error", err)
		return p, errors.Wrapf(err, "getPurchaseForUpdate %s", id)
	}

	return p, nil
}

// AddPurchase inserts p, assigning its ID and timestamps
func AddPurchase(ctx context.Context, s Session, p *models.Purchase) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Second)
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := s.ExecContext(ctx,
		"INSERT INTO purchase (id, product_id, customer_id, quantity, total_price, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.ProductID, p.CustomerID, p.Quantity, p.TotalPrice, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		logger.Log.Errorw("Failed to insert purchase", "error", err, "customer_id", p.CustomerID, "product_id", p.ProductID)
		return errors.Wrap(err, "addPurchase")
	}

	return nil
}

// UpdatePurchase stores a new quantity and total for p
func UpdatePurchase(ctx context.Context, s Session, p *models.Purchase) error {
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	result, err := s.ExecContext(ctx,
		"UPDATE purchase SET quantity = ?, total_price = ?, updated_at = ? WHERE id = ?",
		p.Quantity, p.TotalPrice, p.UpdatedAt, p.ID)
	if err != nil {
		logger.Log.Errorw("Failed to update purchase", "purchase_id", p.ID, "error", err)
		return errors.Wrapf(err, "updatePurchase %s", p.ID)
	}

	return expectOne(result, "purchase", p.ID)
}

// DeletePurchase removes the purchase with the specified ID
func DeletePurchase(ctx context.Context, s Session, id uuid.UUID) error {
	result, err := s.ExecContext(ctx, "DELETE FROM purchase WHERE id = ?", id)
	if err != nil {
		logger.Log.Errorw("Failed to delete purchase", "purchase_id", id, "error", err)
		return errors.Wrapf(err, "deletePurchase %s", id)
	}

	return expectOne(result, "purchase", id)
}

// CountPurchases counts purchases referencing a product or customer.
// column must be "product_id" or "customer_id".
func CountPurchases(ctx context.Context, s Session, column string, id uuid.UUID) (int64, error) {
	if column != "product_id" && column != "customer_id" {
		return 0, errors.Errorf("countPurchases: unsupported column %q", column)
	}

	var n int64
	if err := sqlx.GetContext(ctx, s, &n, "SELECT COUNT(*) FROM purchase WHERE "+column+" = ?", id); err != nil {
		logger.Log.Errorw("Failed to count purchases", "column", column, "id", id, "error", err)
		return 0, errors.Wrapf(err, "countPurchases %s=%s", column, id)
	}
	return n, nil
}
