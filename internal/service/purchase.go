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

// PurchaseResult is a committed purchase and the buyer's balance after it
type PurchaseResult struct {
	models.PurchaseDetail
	NewBalance decimal.Decimal `json:"newBalance"`
}

func (s *Shop) ListPurchases(ctx context.Context) ([]models.PurchaseDetail, error) {
	return repository.GetAllPurchases(ctx, s.db)
}

func (s *Shop) GetPurchase(ctx context.Context, id uuid.UUID) (models.PurchaseDetail, error) {
	return repository.GetPurchaseDetail(ctx, s.db, id)
}

// CustomerPurchases lists the purchases of the customer with the given email
func (s *Shop) CustomerPurchases(ctx context.Context, email string) ([]models.PurchaseDetail, error) {
	c, err := repository.GetCustomerByEmail(ctx, s.db, email, false)
	if err != nil {
		return nil, err
	}
	return repository.GetPurchasesByCustomerID(ctx, s.db, c.ID)
}

// AttemptPurchase debits the customer and records the purchase in one
// transaction. It fails with a NotFoundError for an unknown product or
// email, an InsufficientFundsError when the balance does not cover the
// total, or a ValidationError for a malformed request; in every failure
// case nothing is written.
func (s *Shop) AttemptPurchase(ctx context.Context, req PurchaseRequest) (PurchaseResult, error) {
	if err := req.Validate(); err != nil {
		return PurchaseResult{}, err
	}
	quantity := req.quantity()

	logger.Log.Infow("Attempting purchase", "product_id", req.ProductID, "customer_email", req.CustomerEmail, "quantity", quantity)

	var result PurchaseResult
	err := s.inTx(ctx, "attemptPurchase", func(tx *sqlx.Tx) error {
		product, err := repository.GetProductByID(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}

		// The customer row stays locked until commit so a concurrent
		// purchase cannot pass the balance check against a stale balance.
		customer, err := repository.GetCustomerByEmail(ctx, tx, req.CustomerEmail, true)
		if err != nil {
			return err
		}

		total := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
		if customer.Balance.LessThan(total) {
			logger.Log.Warnw("Insufficient balance", "customer_id", customer.ID, "required", total, "available", customer.Balance)
			return &models.InsufficientFundsError{Required: total, Available: customer.Balance}
		}

		purchase := models.Purchase{
			ProductID:  product.ID,
			CustomerID: customer.ID,
			Quantity:   quantity,
			TotalPrice: total,
		}
		if err := repository.AddPurchase(ctx, tx, &purchase); err != nil {
			return err
		}

		newBalance := customer.Balance.Sub(total)
		if err := repository.SetBalance(ctx, tx, customer.ID, customer.Balance, newBalance); err != nil {
			return err
		}

		detail, err := repository.GetPurchaseDetail(ctx, tx, purchase.ID)
		if err != nil {
			return err
		}

		result = PurchaseResult{PurchaseDetail: detail, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		logger.Log.Warnw("Purchase failed", "product_id", req.ProductID, "customer_email", req.CustomerEmail, "quantity", quantity, "error", err)
		return PurchaseResult{}, err
	}

	logger.Log.Infow("Purchase committed successfully", "purchase_id", result.ID, "customer_id", result.CustomerID, "total_price", result.TotalPrice, "new_balance", result.NewBalance)
	return result, nil
}

// UpdatePurchase changes a purchase's quantity. The total is recomputed
// from the product's current price and the customer is charged (or
// refunded) the difference to the previous total.
func (s *Shop) UpdatePurchase(ctx context.Context, id uuid.UUID, changes PurchaseChanges) (PurchaseResult, error) {
	if err := changes.Validate(); err != nil {
		return PurchaseResult{}, err
	}

	var result PurchaseResult
	err := s.inTx(ctx, "updatePurchase", func(tx *sqlx.Tx) error {
		purchase, err := repository.GetPurchaseForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		product, err := repository.GetProductByID(ctx, tx, purchase.ProductID)
		if err != nil {
			return err
		}
		customer, err := repository.GetCustomerForUpdate(ctx, tx, purchase.CustomerID)
		if err != nil {
			return err
		}

		total := product.Price.Mul(decimal.NewFromInt(int64(*changes.Quantity)))
		delta := total.Sub(purchase.TotalPrice)
		if delta.GreaterThan(customer.Balance) {
			logger.Log.Warnw("Insufficient balance for purchase update", "purchase_id", id, "required", delta, "available", customer.Balance)
			return &models.InsufficientFundsError{Required: delta, Available: customer.Balance}
		}

		newBalance := customer.Balance.Sub(delta)
		if err := checkBalanceCeiling(customer, newBalance); err != nil {
			return err
		}

		purchase.Quantity = *changes.Quantity
		purchase.TotalPrice = total
		if err := repository.UpdatePurchase(ctx, tx, &purchase); err != nil {
			return err
		}
		if !delta.IsZero() {
			if err := repository.SetBalance(ctx, tx, customer.ID, customer.Balance, newBalance); err != nil {
				return err
			}
		}

		detail, err := repository.GetPurchaseDetail(ctx, tx, id)
		if err != nil {
			return err
		}
		result = PurchaseResult{PurchaseDetail: detail, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	logger.Log.Infow("Purchase updated", "purchase_id", id, "quantity", result.Quantity, "total_price", result.TotalPrice, "new_balance", result.NewBalance)
	return result, nil
}

// DeletePurchase removes a purchase and refunds its total to the customer
func (s *Shop) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	err := s.inTx(ctx, "deletePurchase", func(tx *sqlx.Tx) error {
		purchase, err := repository.GetPurchaseForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		customer, err := repository.GetCustomerForUpdate(ctx, tx, purchase.CustomerID)
		if err != nil {
			return err
		}

		refunded := customer.Balance.Add(purchase.TotalPrice)
		if err := checkBalanceCeiling(customer, refunded); err != nil {
			return err
		}

		if err := repository.DeletePurchase(ctx, tx, id); err != nil {
			return err
		}
		return repository.SetBalance(ctx, tx, customer.ID, customer.Balance, refunded)
	})
	if err != nil {
		return err
	}

	logger.Log.Infow("Purchase deleted and refunded", "purchase_id", id)
	return nil
}

// checkBalanceCeiling rejects a refund that would push the balance past
// what the balance column can store
func checkBalanceCeiling(customer models.Customer, balance decimal.Decimal) error {
	if balance.LessThan(maxAmount) {
		return nil
	}
	logger.Log.Warnw("Refund exceeds balance limit", "customer_id", customer.ID, "balance", customer.Balance, "requested", balance)
	return models.Conflict("refund would raise the balance of customer %s above %s", customer.ID, maxAmount.Sub(decimal.New(1, -2)).StringFixed(2))
}
