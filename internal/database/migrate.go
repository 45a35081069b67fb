package database

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"example/storefront/internal/config"
	"example/storefront/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate applies (or, with down set, reverts) every embedded migration.
// It uses a dedicated connection that is closed before returning.
func Migrate(cfg config.Database, down bool) error {
	dsn, err := DSN(cfg)
	if err != nil {
		return err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return errors.Wrap(err, "migrate: open database")
	}

	src, err := iofs.New(migrations, migrationsDir)
	if err != nil {
		db.Close()
		return errors.Wrap(err, "migrate: load migrations")
	}

	var drv migratedb.Driver
	switch cfg.Driver {
	case config.DriverMySQL:
		drv, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case config.DriverSQLite:
		drv, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		err = errors.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		db.Close()
		return errors.Wrap(err, "migrate: init driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Driver, drv)
	if err != nil {
		db.Close()
		return errors.Wrap(err, "migrate: init")
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Log.Warnw("Failed to close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Log.Infow("Schema already up to date", "down", down)
		return nil
	}
	if err != nil {
		logger.Log.Errorw("Migration failed", "down", down, "error", err)
		return errors.Wrap(err, "migrate")
	}

	version, dirty, _ := m.Version()
	logger.Log.Infow("Migrations applied", "down", down, "version", version, "dirty", dirty)
	return nil
}

// ApplySchema executes the embedded up migrations directly on db, in
// version order. It skips golang-migrate's bookkeeping and is meant for
// throwaway databases such as in-memory SQLite.
func ApplySchema(ctx context.Context, db *sqlx.DB) error {
	files, err := fs.Glob(migrations, migrationsDir+"/*.up.sql")
	if err != nil {
		return errors.Wrap(err, "applySchema: list migrations")
	}
	sort.Strings(files)

	for _, name := range files {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return errors.Wrapf(err, "applySchema: read %s", name)
		}
		for _, stmt := range strings.Split(string(body), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return errors.Wrapf(err, "applySchema: %s", name)
			}
		}
	}
	return nil
}
