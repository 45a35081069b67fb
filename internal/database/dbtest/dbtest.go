// Package dbtest provides throwaway databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"example/storefront/internal/config"
	"example/storefront/internal/database"
	"example/storefront/internal/models"
	"example/storefront/internal/repository"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Open creates an in-memory SQLite database with the full schema applied.
// The pool is capped at one connection: every transaction waits for the
// previous one to finish, and the in-memory database lives exactly as long
// as that connection.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err, "open test database")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.ApplySchema(context.Background(), db), "apply schema")
	return db
}

// OpenFile creates a migrated SQLite database file in a temporary
// directory and opens it through the production DSN with a pool of
// maxOpen connections, so concurrent transactions really contend.
func OpenFile(t testing.TB, maxOpen int) *sqlx.DB {
	t.Helper()

	cfg := config.Database{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "storefront.db"),
		MaxOpenConns: maxOpen,
		MaxIdleConns: maxOpen,
	}
	require.NoError(t, database.Migrate(cfg, false), "migrate test database")

	db, err := database.Open(context.Background(), cfg)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { database.Close(db) })
	return db
}

// Product inserts a product with the given price
func Product(t testing.TB, db *sqlx.DB, name, price string) models.Product {
	t.Helper()

	p := models.Product{Name: name, Price: decimal.RequireFromString(price), Region: "Norte"}
	require.NoError(t, repository.AddProduct(context.Background(), db, &p))
	return p
}

// Customer inserts a customer with the given balance
func Customer(t testing.TB, db *sqlx.DB, email, balance string) models.Customer {
	t.Helper()

	c := models.Customer{Email: email, Name: "Test " + email, Region: "Brasil", Balance: decimal.RequireFromString(balance)}
	require.NoError(t, repository.AddCustomer(context.Background(), db, &c))
	return c
}

// Balance reads the stored balance of a customer
func Balance(t testing.TB, db *sqlx.DB, email string) decimal.Decimal {
	t.Helper()

	c, err := repository.GetCustomerByEmail(context.Background(), db, email, false)
	require.NoError(t, err)
	return c.Balance
}

// PurchaseCount counts every stored purchase
func PurchaseCount(t testing.TB, db *sqlx.DB) int {
	t.Helper()

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM purchase"))
	return n
}
