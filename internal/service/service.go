// Package service holds the storefront's business operations. Each public
// method owns its transaction boundary; repository calls inside it share
// the same *sqlx.Tx.
package service

import (
	"context"

	"example/storefront/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Shop runs catalog, purchase and report operations against one pool
type Shop struct {
	db *sqlx.DB
}

func NewShop(db *sqlx.DB) *Shop {
	return &Shop{db: db}
}

// Ping checks that the pool can still reach the database
func (s *Shop) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// inTx runs fn inside a transaction. The transaction is committed only if
// fn returns nil and is rolled back on every other path, panics included.
func (s *Shop) inTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		logger.Log.Errorw("Failed to begin transaction", "op", op, "error", err)
		return errors.Wrapf(err, "%s: begin tx", op)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Log.Errorw("Failed to roll back transaction", "op", op, "error", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		logger.Log.Debugw("Rolling back transaction", "op", op, "error", err)
		return err
	}

	committed = true
	if err := tx.Commit(); err != nil {
		logger.Log.Errorw("Failed to commit transaction", "op", op, "error", err)
		return errors.Wrapf(err, "%s: commit", op)
	}
	return nil
}
