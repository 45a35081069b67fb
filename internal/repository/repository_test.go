package repository_test

import (
	"context"
	"testing"

	"example/storefront/internal/database/dbtest"
	"example/storefront/internal/logger"
	"example/storefront/internal/models"
	"example/storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLoggerDev()
}

func TestProductCRUD(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	p := models.Product{Name: "Lamp", Price: decimal.RequireFromString("12.34"), Region: "Oeste"}
	require.NoError(t, repository.AddProduct(ctx, db, &p))
	require.NotEqual(t, uuid.Nil, p.ID)

	got, err := repository.GetProductByID(ctx, db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Name)
	assert.True(t, p.Price.Equal(got.Price))
	assert.Nil(t, got.Description)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", p.CreatedAt, got.CreatedAt)

	desc := "Desk lamp"
	got.Description = &desc
	got.Name = "Desk Lamp"
	require.NoError(t, repository.UpdateProduct(ctx, db, &got))

	// Unchanged values still count as a match.
	require.NoError(t, repository.UpdateProduct(ctx, db, &got))

	all, err := repository.GetAllProducts(ctx, db)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Desk Lamp", all[0].Name)
	require.NotNil(t, all[0].Description)
	assert.Equal(t, "Desk lamp", *all[0].Description)

	require.NoError(t, repository.DeleteProduct(ctx, db, p.ID))
	_, err = repository.GetProductByID(ctx, db, p.ID)
	assert.True(t, models.IsNotFound(err))
	assert.True(t, models.IsNotFound(repository.DeleteProduct(ctx, db, p.ID)))
}

func TestGetAllProductsEmpty(t *testing.T) {
	db := dbtest.Open(t)

	products, err := repository.GetAllProducts(context.Background(), db)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestCustomerUniqueEmail(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	dbtest.Customer(t, db, "dup@example.com", "1.00")

	c := models.Customer{Email: "dup@example.com", Name: "Dup", Region: "Sul", Balance: decimal.Zero}
	err := repository.AddCustomer(ctx, db, &c)
	var conflict *models.ConflictError
	assert.True(t, errors.As(err, &conflict), "got %v", err)
}

func TestGetCustomerByEmail(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	c := dbtest.Customer(t, db, "find@example.com", "3.50")

	got, err := repository.GetCustomerByEmail(ctx, db, "find@example.com", false)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = repository.GetCustomerByEmail(ctx, db, "missing@example.com", false)
	var nf *models.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "customer", nf.Entity)
	assert.Equal(t, "missing@example.com", nf.Key)
}

func TestSetBalanceGuard(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	d := decimal.RequireFromString

	c := dbtest.Customer(t, db, "guard@example.com", "100.00")

	require.NoError(t, repository.SetBalance(ctx, db, c.ID, d("100.00"), d("60.00")))
	assert.True(t, d("60").Equal(dbtest.Balance(t, db, "guard@example.com")))

	// A stale expected balance must not overwrite the stored one.
	err := repository.SetBalance(ctx, db, c.ID, d("100.00"), d("0"))
	var conflict *models.ConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)
	assert.True(t, d("60").Equal(dbtest.Balance(t, db, "guard@example.com")))
}

func TestPurchaseRows(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	product := dbtest.Product(t, db, "Pen", "2.50")
	customer := dbtest.Customer(t, db, "pen@example.com", "10.00")

	p := models.Purchase{ProductID: product.ID, CustomerID: customer.ID, Quantity: 2, TotalPrice: decimal.RequireFromString("5.00")}
	require.NoError(t, repository.AddPurchase(ctx, db, &p))

	detail, err := repository.GetPurchaseDetail(ctx, db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Quantity)
	assert.Equal(t, product.ID, detail.Product.ID)
	assert.Equal(t, "Pen", detail.Product.Name)

	byCustomer, err := repository.GetPurchasesByCustomerID(ctx, db, customer.ID)
	require.NoError(t, err)
	assert.Len(t, byCustomer, 1)

	none, err := repository.GetPurchasesByCustomerID(ctx, db, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := repository.CountPurchases(ctx, db, "product_id", product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repository.CountPurchases(ctx, db, "name", product.ID)
	assert.Error(t, err)

	p.Quantity = 3
	p.TotalPrice = decimal.RequireFromString("7.50")
	require.NoError(t, repository.UpdatePurchase(ctx, db, &p))
	locked, err := repository.GetPurchaseForUpdate(ctx, db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, locked.Quantity)

	require.NoError(t, repository.DeletePurchase(ctx, db, p.ID))
	assert.True(t, models.IsNotFound(repository.DeletePurchase(ctx, db, p.ID)))
	require.NoError(t, repository.DeleteCustomer(ctx, db, customer.ID))
}

// TestForeignKeysRestrictDeletes deletes referenced rows directly, without
// the purchase count the service checks first.
func TestForeignKeysRestrictDeletes(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	product := dbtest.Product(t, db, "Pen", "2.50")
	customer := dbtest.Customer(t, db, "pen@example.com", "10.00")
	p := models.Purchase{ProductID: product.ID, CustomerID: customer.ID, Quantity: 1, TotalPrice: decimal.RequireFromString("2.50")}
	require.NoError(t, repository.AddPurchase(ctx, db, &p))

	var conflict *models.ConflictError
	err := repository.DeleteProduct(ctx, db, product.ID)
	require.True(t, errors.As(err, &conflict), "got %v", err)
	err = repository.DeleteCustomer(ctx, db, customer.ID)
	require.True(t, errors.As(err, &conflict), "got %v", err)

	_, err = repository.GetProductByID(ctx, db, product.ID)
	assert.NoError(t, err)
	_, err = repository.GetCustomerByID(ctx, db, customer.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, dbtest.PurchaseCount(t, db))
}
