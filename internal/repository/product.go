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
)

// Product database operations

const productColumns = "id, name, price, region, description, created_at, updated_at"

// GetAllProducts queries for all products in the database
func GetAllProducts(ctx context.Context, s Session) ([]models.Product, error) {
	products := []models.Product{}

	err := sqlx.SelectContext(ctx, s, &products, "SELECT "+productColumns+" FROM product ORDER BY name, id")
	if err != nil {
		logger.Log.Errorw("Failed to query products", "error", err)
		return nil, errors.Wrap(err, "getAllProducts")
	}

	return products, nil
}

// GetProductByID queries for the product with the specified ID
func GetProductByID(ctx context.Context, s Session, id uuid.UUID) (models.Product, error) {
	var p models.Product

	err := sqlx.GetContext(ctx, s, &p, "SELECT "+productColumns+" FROM product WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Log.Debugw("Product not found", "product_id", id)
		return p, models.NotFound("product", id.String())
	}
	if err != nil {
		logger.Log.Errorw("Failed to query product", "product_id", id, "error", err)
		return p, errors.Wrapf(err, "getProductByID %s", id)
	}

	return p, nil
}

// AddProduct inserts p, assigning its ID and timestamps
func AddProduct(ctx context.Context, s Session, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Second)
	p.CreatedAt, p.UpdatedAt = now, now

	logger.Log.Infow("Adding new product", "name", p.Name, "price", p.Price, "region", p.Region)

	_, err := s.ExecContext(ctx,
		"INSERT INTO product (id, name, price, region, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Price, p.Region, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		logger.Log.Errorw("Failed to insert product", "error", err, "name", p.Name)
		return errors.Wrap(err, "addProduct")
	}

	logger.Log.Infow("Product created", "product_id", p.ID, "name", p.Name)
	return nil
}

// UpdateProduct overwrites the mutable columns of p
func UpdateProduct(ctx context.Context, s Session, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	result, err := s.ExecContext(ctx,
		"UPDATE product SET name = ?, price = ?, region = ?, description = ?, updated_at = ? WHERE id = ?",
		p.Name, p.Price, p.Region, p.Description, p.UpdatedAt, p.ID)
	if err != nil {
		logger.Log.Errorw("Failed to update product", "product_id", p.ID, "error", err)
		return errors.Wrapf(err, "updateProduct %s", p.ID)
	}

	return expectOne(result, "product", p.ID)
}

// DeleteProduct removes the product with the specified ID
func DeleteProduct(ctx context.Context, s Session, id uuid.UUID) error {
	result, err := s.ExecContext(ctx, "DELETE FROM product WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Conflict("product %s still has purchases", id)
		}
		logger.Log.Errorw("Failed to delete product", "product_id", id, "error", err)
		return errors.Wrapf(err, "deleteProduct %s", id)
	}

	if err := expectOne(result, "product", id); err != nil {
		return err
	}
	logger.Log.Infow("Product deleted", "product_id", id)
	return nil
}

// expectOne turns a zero-row UPDATE or DELETE into a NotFoundError
func expectOne(result sql.Result, entity string, id uuid.UUID) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "%s %s: rows affected", entity, id)
	}
	if n == 0 {
		return models.NotFound(entity, id.String())
	}
	return nil
}
