package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product record in the database
type Product struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Region      string          `db:"region" json:"region"`
	Description *string         `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// Customer represents a customer record in the database.
// Email is unique and doubles as the external lookup key.
type Customer struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Email     string          `db:"email" json:"email"`
	Name      string          `db:"name" json:"name"`
	Region    string          `db:"region" json:"region"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// Purchase represents a purchase record in the database
type Purchase struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	ProductID  uuid.UUID       `db:"product_id" json:"productId"`
	CustomerID uuid.UUID       `db:"customer_id" json:"customerId"`
	Quantity   int             `db:"quantity" json:"quantity"`
	TotalPrice decimal.Decimal `db:"total_price" json:"totalPrice"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// ProductSummary is the product detail embedded in purchase responses
type ProductSummary struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description"`
}

// PurchaseDetail represents purchase information with product details
type PurchaseDetail struct {
	Purchase
	Product ProductSummary `json:"product"`
}

// Balance is the public view of a customer's spendable credit
type Balance struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// ProductSales is one row of the by-product sales report
type ProductSales struct {
	Product      ProductRef      `json:"product"`
	TotalSales   int64           `json:"totalSales"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// ProductRef identifies a product inside report rows
type ProductRef struct {
	ID     uuid.UUID       `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Region string          `json:"region,omitempty"`
}

// SalesReport aggregates purchases per product
type SalesReport struct {
	SalesByProduct []ProductSales  `json:"salesByProduct"`
	AverageTicket  decimal.Decimal `json:"averageTicket"`
	TotalPurchases int64           `json:"totalPurchases"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
}

// DailyStat is one (day, product) row of the purchase report
type DailyStat struct {
	Date            string          `json:"date"`
	Product         ProductRef      `json:"product"`
	TotalPurchases  int64           `json:"totalPurchases"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	AveragePurchase decimal.Decimal `json:"averagePurchase"`
}

// ReportSummary holds the overall totals of a purchase report
type ReportSummary struct {
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	TotalPurchases  int64           `json:"totalPurchases"`
	AveragePurchase decimal.Decimal `json:"averagePurchase"`
}

// ProductStat is the per-product rollup of the daily rows
type ProductStat struct {
	Product        ProductRef      `json:"product"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalPurchases int64           `json:"totalPurchases"`
}

// PurchaseReport aggregates purchases per calendar day and product
type PurchaseReport struct {
	Summary      ReportSummary `json:"summary"`
	DailyStats   []DailyStat   `json:"dailyStats"`
	ProductStats []ProductStat `json:"productStats"`
}

// WSMessage represents a WebSocket message from the client
type WSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// WSResponse represents a WebSocket response to the client
type WSResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}
