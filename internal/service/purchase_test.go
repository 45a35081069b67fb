package service_test

import (
	"context"
	"sync"
	"testing"

	"example/storefront/internal/database/dbtest"
	"example/storefront/internal/logger"
	"example/storefront/internal/models"
	"example/storefront/internal/repository"
	"example/storefront/internal/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests
	logger.InitLoggerDev()
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func qty(n int) *int { return &n }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}

// TestAttemptPurchaseSequential buys twice and then runs out of balance
func TestAttemptPurchaseSequential(t *testing.T) {
	db := dbtest.Open(t)
	shop := service.NewShop(db)
	ctx := context.Background()

	product := dbtest.Product(t, db, "Headphones", "100.00")
	dbtest.Customer(t, db, "buyer@example.com", "250.00")

	result, err := shop.AttemptPurchase(ctx, service.PurchaseRequest{
		ProductID:     product.ID,
		CustomerEmail: "buyer@example.com",
		Quantity:      qty(2),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, 2, result.Quantity)
	assertDecimal(t, "200.00", result.TotalPrice)
	assertDecimal(t, "50.00", result.NewBalance)
	assert.Equal(t, product.ID, result.Product.ID)
	assert.Equal(t, "Headphones", result.Product.Name)
	assertDecimal(t, "50.00", dbtest.Balance(t, db, "buyer@example.com"))

	_, err = shop.AttemptPurchase(ctx, service.PurchaseRequest{
		ProductID:     product.ID,
		CustomerEmail: "buyer@example.com",
	})
	var insufficient *models.InsufficientFundsError
	require.True(t, errors.As(err, &insufficient), "expected InsufficientFundsError, got %v", err)
	assertDecimal(t, "100.00", insufficient.Required)
	assertDecimal(t, "50.00", insufficient.Available)

	assertDecimal(t, "50.00", dbtest.Balance(t, db, "buyer@example.com"))
	assert.Equal(t, 1, dbtest.PurchaseCount(t, db))
}

func TestAttemptPurchaseDefaultsToOneUnit(t *testing.T) {
	db := dbtest.Open(t)
	shop := service.NewShop(db)

	product := dbtest.Product(t, db, "Watch", "299.99")
	dbtest.Customer(t, db, "buyer@example.com", "10000.00")

	result, err := shop.AttemptPurchase(context.Background(), service.PurchaseRequest{
		ProductID:     product.ID,
		CustomerEmail: "buyer@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Quantity)
	assertDecimal(t, "299.99", result.TotalPrice)
	assertDecimal(t, "9700.01", result.NewBalance)
	assertDecimal(t, "9700.01", dbtest.Balance(t, db, "buyer@example.com"))
}

func TestAttemptPurchaseExactBalance(t *testing.T) {
	db := dbtest.Open(t)
	shop := service.NewShop(db)

	product := dbtest.Product(t, db, "Laptop", "1299.99")
	dbtest.Customer(t, db, "buyer@example.com", "1299.99")

	result, err := shop.AttemptPurchase(context.Background(), service.PurchaseRequest{
		ProductID:     product.ID,
		CustomerEmail: "buyer@example.com",
	})
	require.NoError(t, err)
	assert.True(t, result.NewBalance.IsZero())
}

// TestAttemptPurchaseConcurrentInsufficientBalance runs two purchases whose
// combined cost exceeds the balance; exactly one may win
func TestAttemptPurchaseConcurrentInsufficientBalance(t *testing.T) {
	db := dbtest.Open(t)
	shop := service.NewShop(db)

	product := dbtest.Product(t, db, "Limited Edition", "100.00")
	dbtest.Customer(t, db, "buyer@example.com", "150.00")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = shop.AttemptPurchase(context.Background(), service.PurchaseRequest{
				ProductID:     product.ID,
				CustomerEmail: "buyer@example.com",
				Quantity:      qty(1),
			})
		}()
	}
	wg.Wait()

	successCount := 0
	for _, err := range errs {
		if err == nil {
			successCount++
			continue
		}
		var insufficient *models.InsufficientFundsError
		assert.True(t, errors.As(err, &insufficient), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, successCount, "err1: %v, err2: %v", errs[0], errs[1])

	assertDecimal(t, "50.00", dbtest.Balance(t, db, "buyer@example.com"))
	assert.Equal(t, 1, dbtest.PurchaseCount(t, db))
}

// TestAttemptPurchaseConcurrentPool runs many purchases over a pool of
// several connections to one database file; only as many as the balance
// covers may commit
func TestAttemptPurchaseConcurrentPool(t *testing.T) {
	db := dbtest.OpenFile(t, 8)
	shop := service.NewShop(db)

	product := dbtest.Product(t, db, "Flash Sale", "100.00")
	dbtest.Customer(t, db, "buyer@example.com", "350.00")

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = shop.AttemptPurchase(context.Background(), service.PurchaseRequest{
				ProductID:     product.ID,
				CustomerEmail: "buyer@example.com",
			})
		}()
	}
	wg.Wait()

	successCount := 0
	for _, err := range errs {
		if err == nil {
			successCount++
			continue
		}
		var insufficient *models.InsufficientFundsError
		assert.True(t, errors.As(err, &insufficient), "unexpected error: %v", err)
	}
	assert.Equal(t, 3, successCount)
	assertDecimal(t, "50.00", dbtest.Balance(t, db, "buyer@example.com"))
	assert.Equal(t, 3, dbtest.PurchaseCount(t, db))
}

func TestAttemptPurchaseNotFound(t *testing.T) {
	db := dbtest.Open(t)
	shop := service.NewShop(db)
	ctx := context.Background()

	product := dbtest.Product(t, db, "Headphones", "100.00")
	dbtest.Customer(t, db, "buyer@example.com", "250.00")

	t.Run("unknown product", func(t *testing.T) {
		_, err := shop.AttemptPurchase(ctx, service.PurchaseRequest{
			ProductID:     uuid.New(),
			CustomerEmail: "buyer@example.com",
		})
		var nf *models.NotFoundError
		require.True(t, errors.As(err, &nf), "got %v", err)
		assert.Equal(t, "product", nf.Entity)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := shop.AttemptPurchase(ctx, service.PurchaseRequest{
			ProductID:     product.ID,
			CustomerEmail: "nobody@example.com",
		})
		var nf *models.NotFoundError
		require.True(t, errors.As(err, &nf), "got %v", err)
		assert.Equal(t, "customer", nf.Entity)
	})

	assert.Equal(t, 0, dbtest.PurchaseCount(t, db))
	assertDecimal(t, "250.00", dbtest.Balance(t, db, "buyer@example.com"))
}

func TestAttemptPurchaseValidation(t *testing.T) {
	db := dbtest.Open(t)
	shop := service.NewShop(db)
	product := dbtest.Product(t, db, "Headphones", "100.00")
	dbtest.Customer(t, db, "buyer@example.com", "250.00")

	cases := map[string]service.PurchaseRequest{
		"missing product":   {CustomerEmail: "buyer@example.com"},
		"missing customer":  {ProductID: product.ID},
		"zero quantity":     {ProductID: product.ID, CustomerEmail: "buyer@example.com", Quantity: qty(0)},
		"negative quantity": {ProductID: product.ID, CustomerEmail: "buyer@example.com", Quantity: qty(-3)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := shop.AttemptPurchase(context.Background(), req)
			var invalid *models.ValidationError
			assert.True(t, errors.As(err, &invalid), "got %v", err)
		})
	}

	assert.Equal(t, 0, dbtest.PurchaseCount(t, db))
	assertDecimal(t, "250.00", dbtest.Balance(t, db, "buyer@example.com"))
}

func TestUpdatePurchaseChargesDifference(t *testing.T) {
	db := dbtest.Open(t)
	shop := service.NewShop(db)
	ctx := context.Background()

	product := dbtest.Product(t, db, "Headphones", "100.00")
	dbtest.Customer(t, db, "buyer@example.com", "500.00")

	bought, err := shop.AttemptPurchase(ctx, service.PurchaseRequest{ProductID: product.ID, CustomerEmail: "buyer@example.com", Quantity: qty(2)})
	require.NoError(t, err)

	t.Run("more units debit the difference", func(t *testing.T) {
		updated, err := shop.UpdatePurchase(ctx, bought.ID, service.PurchaseChanges{Quantity: qty(4)})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Quantity)
		assertDecimal(t, "400.00", updated.TotalPrice)
		assertDecimal(t, "100.00", updated.NewBalance)
		assertDecimal(t, "100.00", dbtest.Balance(t, db, "buyer@example.com"))
	})

	t.Run("fewer units refund the difference", func(t *testing.T) {
		updated, err := shop.UpdatePurchase(ctx, bought.ID, service.PurchaseChanges{Quantity: qty(1)})
		require.NoError(t, err)
		assertDecimal(t, "100.00", updated.TotalPrice)
		assertDecimal(t, "400.00", dbtest.Balance(t, db, "buyer@example.com"))
	})

	t.Run("uses the current product price", func(t *testing.T) {
		newPrice := dec("150.00")
		_, err := shop.UpdateProduct(ctx, product.ID, service.ProductChanges{Price: &newPrice})
		require.NoError(t, err)

		updated, err := shop.UpdatePurchase(ctx, bought.ID, service.PurchaseChanges{Quantity: qty(2)})
		require.NoError(t, err)
		assertDecimal(t, "300.00", updated.TotalPrice)
		assertDecimal(t, "200.00", dbtest.Balance(t, db, "buyer@example.com"))
	})

	t.Run("rejects an unaffordable increase", func(t *testing.T) {
		_, err := shop.UpdatePurchase(ctx, bought.ID, service.PurchaseChanges{Quantity: qty(10)})
		var insufficient *models.InsufficientFundsError
		require.True(t, errors.As(err, &insufficient), "got %v", err)
		assertDecimal(t, "1200.00", insufficient.Required)
		assertDecimal(t, "200.00", insufficient.Available)

		stored, err := shop.GetPurchase(ctx, bought.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Quantity)
		assertDecimal(t, "300.00", stored.TotalPrice)
		assertDecimal(t, "200.00", dbtest.Balance(t, db, "buyer@example.com"))
	})

	t.Run("unknown purchase", func(t *testing.T) {
		_, err := shop.UpdatePurchase(ctx, uuid.New(), service.PurchaseChanges{Quantity: qty(1)})
		assert.True(t, models.IsNotFound(err), "got %v", err)
	})

	t.Run("missing quantity", func(t *testing.T) {
		_, err := shop.UpdatePurchase(ctx, bought.ID, service.PurchaseChanges{})
		var invalid *models.ValidationError
		assert.True(t, errors.As(err, &invalid), "got %v", err)
	})
}

func TestDeletePurchaseRefunds(t *testing.T) {
	db := dbtest.Open(t)
	shop := service.NewShop(db)
	ctx := context.Background()

	product := dbtest.Product(t, db, "Headphones", "100.00")
	dbtest.Customer(t, db, "buyer@example.com", "250.00")

	bought, err := shop.AttemptPurchase(ctx, service.PurchaseRequest{ProductID: product.ID, CustomerEmail: "buyer@example.com", Quantity: qty(2)})
	require.NoError(t, err)
	assertDecimal(t, "50.00", dbtest.Balance(t, db, "buyer@example.com"))

	require.NoError(t, shop.DeletePurchase(ctx, bought.ID))
	assert.Equal(t, 0, dbtest.PurchaseCount(t, db))
	assertDecimal(t, "250.00", dbtest.Balance(t, db, "buyer@example.com"))

	err = shop.DeletePurchase(ctx, bought.ID)
	assert.True(t, models.IsNotFound(err), "got %v", err)
}

func TestCustomerPurchases(t *testing.T) {
	db := dbtest.Open(t)
	shop := service.NewShop(db)
	ctx := context.Background()

	product := dbtest.Product(t, db, "Headphones", "10.00")
	dbtest.Customer(t, db, "a@example.com", "100.00")
	dbtest.Customer(t, db, "b@example.com", "100.00")

	for _, email := range []string{"a@example.com", "a@example.com", "b@example.com"} {
		_, err := shop.AttemptPurchase(ctx, service.PurchaseRequest{ProductID: product.ID, CustomerEmail: email})
		require.NoError(t, err)
	}

	purchases, err := shop.CustomerPurchases(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Len(t, purchases, 2)

	all, err := shop.ListPurchases(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = shop.CustomerPurchases(ctx, "nobody@example.com")
	assert.True(t, models.IsNotFound(err))
}

func TestRefundRespectsBalanceLimit(t *testing.T) {
	db := dbtest.Open(t)
	shop := service.NewShop(db)
	ctx := context.Background()

	product := dbtest.Product(t, db, "Server", "10.00")
	customer := dbtest.Customer(t, db, "rich@example.com", "100.00")

	bought, err := shop.AttemptPurchase(ctx, service.PurchaseRequest{ProductID: product.ID, CustomerEmail: "rich@example.com", Quantity: qty(5)})
	require.NoError(t, err)

	// Top the balance up to the largest storable amount.
	require.NoError(t, repository.SetBalance(ctx, db, customer.ID, dec("50"), dec("99999999.99")))

	err = shop.DeletePurchase(ctx, bought.ID)
	var conflict *models.ConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)
	assert.Equal(t, 1, dbtest.PurchaseCount(t, db))
	assertDecimal(t, "99999999.99", dbtest.Balance(t, db, "rich@example.com"))

	_, err = shop.UpdatePurchase(ctx, bought.ID, service.PurchaseChanges{Quantity: qty(1)})
	require.True(t, errors.As(err, &conflict), "got %v", err)

	stored, err := shop.GetPurchase(ctx, bought.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Quantity)
}
