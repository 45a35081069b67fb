package repository

import (
	"context"
	"database/sql"
	"time"

	"example/storefront/internal/logger"
	"example/storefront/internal/models"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Customer database operations

const customerColumns = "id, email, name, region, balance, created_at, updated_at"

// GetAllCustomers queries for all customers in the database
func GetAllCustomers(ctx context.Context, s Session) ([]models.Customer, error) {
	customers := []models.Customer{}

	err := sqlx.SelectContext(ctx, s, &customers, "SELECT "+customerColumns+" FROM customer ORDER BY name, id")
	if err != nil {
		logger.Log.Errorw("Failed to query customers", "error", err)
		return nil, errors.Wrap(err, "getAllCustomers")
	}

	return customers, nil
}

// GetCustomerByID queries for the customer with the specified ID
func GetCustomerByID(ctx context.Context, s Session, id uuid.UUID) (models.Customer, error) {
	var c models.Customer

	err := sqlx.GetContext(ctx, s, &c, "SELECT "+customerColumns+" FROM customer WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Log.Debugw("Customer not found", "customer_id", id)
		return c, models.NotFound("customer", id.String())
	}
	if err != nil {
		logger.Log.Errorw("Failed to query customer", "customer_id", id, "error", err)
		return c, errors.Wrapf(err, "getCustomerByID %s", id)
	}

	return c, nil
}

// GetCustomerByEmail looks a customer up by its alternate key. With lock
// set the row stays locked until the surrounding transaction ends.
func GetCustomerByEmail(ctx context.Context, s Session, email string, lock bool) (models.Customer, error) {
	var c models.Customer

	query := "SELECT " + customerColumns + " FROM customer WHERE email = ?"
	if lock {
		query += forUpdate(s)
	}

	err := sqlx.GetContext(ctx, s, &c, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Log.Debugw("Customer not found", "email", email)
		return c, models.NotFound("customer", email)
	}
	if err != nil {
		logger.Log.Errorw("Failed to query customer by email", "email", email, "error", err)
		return c, errors.Wrapf(err, "getCustomerByEmail %q", email)
	}

	return c, nil
}

// GetCustomerForUpdate reads a customer by ID and locks the row
func GetCustomerForUpdate(ctx context.Context, s Session, id uuid.UUID) (models.Customer, error) {
	var c models.Customer

	err := sqlx.GetContext(ctx, s, &c, "SELECT "+customerColumns+" FROM customer WHERE id = ?"+forUpdate(s), id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, models.NotFound("customer", id.String())
	}
	if err != nil {
		logger.Log.Errorw("Failed to lock customer", "customer_id", id, "error", err)
		return c, errors.Wrapf(err, "getCustomerForUpdate %s", id)
	}

	return c, nil
}

// AddCustomer inserts c, assigning its ID and timestamps
func AddCustomer(ctx context.Context, s Session, c *models.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Second)
	c.CreatedAt, c.UpdatedAt = now, now

	logger.Log.Infow("Adding new customer", "email", c.Email, "name", c.Name)

	_, err := s.ExecContext(ctx,
		"INSERT INTO customer (id, email, name, region, balance, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.Email, c.Name, c.Region, c.Balance, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Conflict("email %s is already registered", c.Email)
		}
		logger.Log.Errorw("Failed to insert customer", "error", err, "email", c.Email)
		return errors.Wrap(err, "addCustomer")
	}

	logger.Log.Infow("Customer created", "customer_id", c.ID, "email", c.Email)
	return nil
}

// UpdateCustomer overwrites the profile columns of c. Balance is left alone.
func UpdateCustomer(ctx context.Context, s Session, c *models.Customer) error {
	c.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	result, err := s.ExecContext(ctx,
		"UPDATE customer SET email = ?, name = ?, region = ?, updated_at = ? WHERE id = ?",
		c.Email, c.Name, c.Region, c.UpdatedAt, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Conflict("email %s is already registered", c.Email)
		}
		logger.Log.Errorw("Failed to update customer", "customer_id", c.ID, "error", err)
		return errors.Wrapf(err, "updateCustomer %s", c.ID)
	}

	return expectOne(result, "customer", c.ID)
}

// SetBalance moves a customer's balance from expected to balance. The
// update only applies if the stored balance still equals expected.
func SetBalance(ctx context.Context, s Session, id uuid.UUID, expected, balance decimal.Decimal) error {
	result, err := s.ExecContext(ctx,
		"UPDATE customer SET balance = ?, updated_at = ? WHERE id = ? AND balance = ?",
		balance, time.Now().UTC().Truncate(time.Second), id, expected)
	if err != nil {
		logger.Log.Errorw("Failed to update balance", "customer_id", id, "error", err)
		return errors.Wrapf(err, "setBalance %s", id)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "setBalance %s: rows affected", id)
	}
	if n == 0 {
		logger.Log.Warnw("Balance changed concurrently", "customer_id", id, "expected", expected)
		return models.Conflict("balance of customer %s changed concurrently", id)
	}

	logger.Log.Debugw("Balance updated", "customer_id", id, "old_balance", expected, "new_balance", balance)
	return nil
}

// DeleteCustomer removes the customer with the specified ID
func DeleteCustomer(ctx context.Context, s Session, id uuid.UUID) error {
	result, err := s.ExecContext(ctx, "DELETE FROM customer WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Conflict("customer %s still has purchases", id)
		}
		logger.Log.Errorw("Failed to delete customer", "customer_id", id, "error", err)
		return errors.Wrapf(err, "deleteCustomer %s", id)
	}

	if err := expectOne(result, "customer", id); err != nil {
		return err
	}
	logger.Log.Infow("Customer deleted", "customer_id", id)
	return nil
}

// isUniqueViolation recognizes duplicate-key errors from both drivers
func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// isForeignKeyViolation recognizes rejected deletes of referenced rows.
// SQLite reports an ON DELETE RESTRICT action as a trigger constraint.
func isForeignKeyViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1451
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint &&
			(liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey || liteErr.ExtendedCode == sqlite3.ErrConstraintTrigger)
	}
	return false
}
