package database_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"example/storefront/internal/config"
	"example/storefront/internal/database"
	"example/storefront/internal/database/dbtest"
	"example/storefront/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLoggerDev()
}

func sqliteConfig(t *testing.T) config.Database {
	return config.Database{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "storefront.db"),
		MaxOpenConns: 2,
		MaxIdleConns: 2,
	}
}

func TestDSN(t *testing.T) {
	dsn, err := database.DSN(config.Database{
		Driver:   config.DriverMySQL,
		User:     "shop",
		Password: "secret",
		Host:     "db:3306",
		Name:     "storefront",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "shop:secret@tcp(db:3306)/storefront?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "clientFoundRows=true")

	dsn, err = database.DSN(config.Database{Driver: config.DriverSQLite, Path: "/tmp/x.db"})
	require.NoError(t, err)
	assert.Equal(t, "file:/tmp/x.db?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", dsn)

	_, err = database.DSN(config.Database{Driver: "postgres"})
	assert.Error(t, err)
}

func TestMigrateAndSeed(t *testing.T) {
	cfg := sqliteConfig(t)
	ctx := context.Background()

	require.NoError(t, database.Migrate(cfg, false))
	// Running again is a no-op.
	require.NoError(t, database.Migrate(cfg, false))

	db, err := database.Open(ctx, cfg)
	require.NoError(t, err)

	seeded, err := database.Seed(ctx, db)
	require.NoError(t, err)
	assert.True(t, seeded)

	var products, customers int
	require.NoError(t, db.Get(&products, "SELECT COUNT(*) FROM product"))
	require.NoError(t, db.Get(&customers, "SELECT COUNT(*) FROM customer"))
	assert.Equal(t, 3, products)
	assert.Equal(t, 2, customers)

	seeded, err = database.Seed(ctx, db)
	require.NoError(t, err)
	assert.False(t, seeded)
	require.NoError(t, db.Get(&products, "SELECT COUNT(*) FROM product"))
	assert.Equal(t, 3, products)

	require.NoError(t, database.Close(db))

	require.NoError(t, database.Migrate(cfg, true))
	db, err = database.Open(ctx, cfg)
	require.NoError(t, err)
	defer database.Close(db)
	var tables int
	require.NoError(t, db.Get(&tables, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('product', 'customer', 'purchase')"))
	assert.Zero(t, tables)
}

func TestSeedBalances(t *testing.T) {
	db := dbtest.Open(t)

	_, err := database.Seed(context.Background(), db)
	require.NoError(t, err)

	assert.True(t, dbtest.Balance(t, db, "admin@example.com").IsZero())
	assert.Equal(t, "10000", dbtest.Balance(t, db, "cliente@example.com").String())
}
