package service

import (
	"context"

	"example/storefront/internal/logger"
	"example/storefront/internal/models"
	"example/storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func (s *Shop) ListProducts(ctx context.Context) ([]models.Product, error) {
	return repository.GetAllProducts(ctx, s.db)
}

func (s *Shop) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	return repository.GetProductByID(ctx, s.db, id)
}

func (s *Shop) CreateProduct(ctx context.Context, in NewProduct) (models.Product, error) {
	if err := in.Validate(); err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		Name:        in.Name,
		Price:       *in.Price,
		Region:      in.Region,
		Description: in.Description,
	}
	if err := repository.AddProduct(ctx, s.db, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// UpdateProduct applies a partial update. Concurrent updates are last
// write wins.
func (s *Shop) UpdateProduct(ctx context.Context, id uuid.UUID, changes ProductChanges) (models.Product, error) {
	if err := changes.Validate(); err != nil {
		return models.Product{}, err
	}

	var p models.Product
	err := s.inTx(ctx, "updateProduct", func(tx *sqlx.Tx) error {
		var err error
		if p, err = repository.GetProductByID(ctx, tx, id); err != nil {
			return err
		}
		changes.apply(&p)
		return repository.UpdateProduct(ctx, tx, &p)
	})
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// DeleteProduct refuses to remove a product that purchases still reference
func (s *Shop) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.inTx(ctx, "deleteProduct", func(tx *sqlx.Tx) error {
		if _, err := repository.GetProductByID(ctx, tx, id); err != nil {
			return err
		}
		n, err := repository.CountPurchases(ctx, tx, "product_id", id)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Log.Warnw("Refusing to delete product with purchases", "product_id", id, "purchases", n)
			return models.Conflict("product %s has %d purchases and cannot be deleted", id, n)
		}
		return repository.DeleteProduct(ctx, tx, id)
	})
}

func (s *Shop) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return repository.GetAllCustomers(ctx, s.db)
}

func (s *Shop) GetCustomer(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	return repository.GetCustomerByID(ctx, s.db, id)
}

func (s *Shop) CreateCustomer(ctx context.Context, in NewCustomer) (models.Customer, error) {
	if err := in.Validate(); err != nil {
		return models.Customer{}, err
	}

	c := models.Customer{
		Email:   in.Email,
		Name:    in.Name,
		Region:  in.Region,
		Balance: decimal.Zero,
	}
	if in.Balance != nil {
		c.Balance = *in.Balance
	}

	err := s.inTx(ctx, "createCustomer", func(tx *sqlx.Tx) error {
		if err := ensureEmailFree(ctx, tx, c.Email, uuid.Nil); err != nil {
			return err
		}
		return repository.AddCustomer(ctx, tx, &c)
	})
	if err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

func (s *Shop) UpdateCustomer(ctx context.Context, id uuid.UUID, changes CustomerChanges) (models.Customer, error) {
	if err := changes.Validate(); err != nil {
		return models.Customer{}, err
	}

	var c models.Customer
	err := s.inTx(ctx, "updateCustomer", func(tx *sqlx.Tx) error {
		var err error
		if c, err = repository.GetCustomerByID(ctx, tx, id); err != nil {
			return err
		}
		if changes.Email != nil && *changes.Email != c.Email {
			if err := ensureEmailFree(ctx, tx, *changes.Email, id); err != nil {
				return err
			}
		}
		changes.apply(&c)
		return repository.UpdateCustomer(ctx, tx, &c)
	})
	if err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

// DeleteCustomer refuses to remove a customer that still has purchases
func (s *Shop) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return s.inTx(ctx, "deleteCustomer", func(tx *sqlx.Tx) error {
		if _, err := repository.GetCustomerByID(ctx, tx, id); err != nil {
			return err
		}
		n, err := repository.CountPurchases(ctx, tx, "customer_id", id)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Log.Warnw("Refusing to delete customer with purchases", "customer_id", id, "purchases", n)
			return models.Conflict("customer %s has %d purchases and cannot be deleted", id, n)
		}
		return repository.DeleteCustomer(ctx, tx, id)
	})
}

// GetBalance looks up a customer's balance by email
func (s *Shop) GetBalance(ctx context.Context, email string) (models.Balance, error) {
	c, err := repository.GetCustomerByEmail(ctx, s.db, email, false)
	if err != nil {
		return models.Balance{}, err
	}
	return models.Balance{Name: c.Name, Balance: c.Balance}, nil
}

// ensureEmailFree fails with a ConflictError if another customer than self
// already uses email
func ensureEmailFree(ctx context.Context, tx *sqlx.Tx, email string, self uuid.UUID) error {
	existing, err := repository.GetCustomerByEmail(ctx, tx, email, false)
	if models.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return models.Conflict("email %s is already registered", email)
	}
	return nil
}
