package database

import (
	"context"

	"example/storefront/internal/logger"
	"example/storefront/internal/models"
	"example/storefront/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

func strptr(s string) *string { return &s }

var seedProducts = []models.Product{
	{Name: "Fone de Ouvido Premium", Price: decimal.RequireFromString("199.99"), Region: "Norte", Description: strptr("Fone de ouvido sem fio com cancelamento de ruído")},
	{Name: "Relógio Inteligente Pro", Price: decimal.RequireFromString("299.99"), Region: "Sul", Description: strptr("Smartwatch avançado com monitoramento de saúde")},
	{Name: "Notebook Elite", Price: decimal.RequireFromString("1299.99"), Region: "Leste", Description: strptr("Notebook potente para profissionais")},
}

var seedCustomers = []models.Customer{
	{Email: "admin@example.com", Name: "Administrador", Region: "Brasil", Balance: decimal.Zero},
	{Email: "cliente@example.com", Name: "Cliente Teste", Region: "Brasil", Balance: decimal.RequireFromString("10000.00")},
}

// Seed inserts the demo catalog and customers. It does nothing when any
// product or customer already exists, so it is safe to run on every start.
func Seed(ctx context.Context, db *sqlx.DB) (bool, error) {
	var existing int64
	err := db.GetContext(ctx, &existing, "SELECT (SELECT COUNT(*) FROM product) + (SELECT COUNT(*) FROM customer)")
	if err != nil {
		return false, errors.Wrap(err, "seed: count rows")
	}
	if existing > 0 {
		logger.Log.Infow("Skipping seed, data already present", "rows", existing)
		return false, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "seed: begin tx")
	}
	defer tx.Rollback()

	for _, p := range seedProducts {
		if err := repository.AddProduct(ctx, tx, &p); err != nil {
			return false, errors.Wrap(err, "seed")
		}
	}
	for _, c := range seedCustomers {
		if err := repository.AddCustomer(ctx, tx, &c); err != nil {
			return false, errors.Wrap(err, "seed")
		}
	}

	if err := tx.Commit(); err != nil {
		return false, errors.Wrap(err, "seed: commit")
	}

	logger.Log.Infow("Seed data inserted", "products", len(seedProducts), "customers", len(seedCustomers))
	return true, nil
}
