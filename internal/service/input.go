package service

import (
	"bytes"
	"encoding/json"

	"example/storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewProduct is the body of a product creation request
type NewProduct struct {
	Name        string           `json:"name" validate:"required,notblank"`
	Price       *decimal.Decimal `json:"price" validate:"required,money"`
	Region      string           `json:"region" validate:"required,notblank"`
	Description *string          `json:"description"`
}

func (p NewProduct) Validate() error {
	return check(p)
}

// NullableString is an optional JSON string that tells an absent field
// (Set is false) apart from an explicit null (Set with a nil Value).
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// SetNull returns a NullableString that clears the field
func SetNull() NullableString { return NullableString{Set: true} }

// SetString returns a NullableString that sets the field to s
func SetString(s string) NullableString { return NullableString{Set: true, Value: &s} }

// ProductChanges is a partial product update; absent fields are kept and
// a null description removes it
type ProductChanges struct {
	Name        *string          `json:"name" validate:"omitempty,notblank"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,money"`
	Region      *string          `json:"region" validate:"omitempty,notblank"`
	Description NullableString   `json:"description"`
}

func (c ProductChanges) Validate() error {
	if c.Name == nil && c.Price == nil && c.Region == nil && !c.Description.Set {
		return models.Invalid("", "at least one field must be provided")
	}
	return check(c)
}

func (c ProductChanges) apply(p *models.Product) {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.Region != nil {
		p.Region = *c.Region
	}
	if c.Description.Set {
		p.Description = c.Description.Value
	}
}

// NewCustomer is the body of a customer creation request
type NewCustomer struct {
	Email   string           `json:"email" validate:"required,email"`
	Name    string           `json:"name" validate:"required,notblank"`
	Region  string           `json:"region" validate:"required,notblank"`
	Balance *decimal.Decimal `json:"balance" validate:"omitempty,money"`
}

func (c NewCustomer) Validate() error {
	return check(c)
}

// CustomerChanges is a partial customer update. The balance is not part of
// it: only purchases move money.
type CustomerChanges struct {
	Email  *string `json:"email" validate:"omitempty,email"`
	Name   *string `json:"name" validate:"omitempty,notblank"`
	Region *string `json:"region" validate:"omitempty,notblank"`
}

func (c CustomerChanges) Validate() error {
	if c.Email == nil && c.Name == nil && c.Region == nil {
		return models.Invalid("", "at least one field must be provided")
	}
	return check(c)
}

func (c CustomerChanges) apply(cu *models.Customer) {
	if c.Email != nil {
		cu.Email = *c.Email
	}
	if c.Name != nil {
		cu.Name = *c.Name
	}
	if c.Region != nil {
		cu.Region = *c.Region
	}
}

// PurchaseRequest asks to buy Quantity units of a product for the customer
// whose email is CustomerEmail. A missing quantity means one unit.
type PurchaseRequest struct {
	ProductID     uuid.UUID `json:"productId" validate:"required"`
	CustomerEmail string    `json:"customerId" validate:"required,notblank"`
	Quantity      *int      `json:"quantity" validate:"omitempty,gte=1"`
}

func (r PurchaseRequest) Validate() error {
	return check(r)
}

func (r PurchaseRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

// PurchaseChanges is the body of a purchase update request
type PurchaseChanges struct {
	Quantity *int `json:"quantity" validate:"required,gte=1"`
}

func (c PurchaseChanges) Validate() error {
	return check(c)
}
