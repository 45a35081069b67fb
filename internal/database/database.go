package database

import (
	"context"
	"fmt"
	"time"

	"example/storefront/internal/config"
	"example/storefront/internal/logger"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DSN builds the driver-specific data source name for cfg
func DSN(cfg config.Database) (string, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = cfg.Host
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.ClientFoundRows = true
		mc.Loc = time.UTC
		return mc.FormatDSN(), nil
	case config.DriverSQLite:
		// Immediate transactions take the write lock at BEGIN, so purchases
		// against the same file serialize instead of failing at COMMIT.
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", cfg.Path), nil
	default:
		return "", errors.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// Open opens and verifies the connection pool described by cfg
func Open(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	logger.Log.Debugw("Initializing database connection", "driver", cfg.Driver)

	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		logger.Log.Errorw("Failed to open database", "driver", cfg.Driver, "error", err)
		return nil, errors.Wrap(err, "open database")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdle)

	if err := db.PingContext(ctx); err != nil {
		logger.Log.Errorw("Failed to ping database", "driver", cfg.Driver, "error", err)
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	logger.Log.Infow("Database connection established", "driver", cfg.Driver, "database", target(cfg))
	return db, nil
}

// Close closes the pool, logging the outcome
func Close(db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	logger.Log.Debug("Closing database connection")
	err := db.Close()
	if err != nil {
		logger.Log.Errorw("Error closing database", "error", err)
	} else {
		logger.Log.Info("Database connection closed")
	}
	return err
}

func target(cfg config.Database) string {
	if cfg.Driver == config.DriverSQLite {
		return cfg.Path
	}
	return cfg.Host + "/" + cfg.Name
}
