package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is append-only: once placed it is never updated or deleted, and
// its line totals stay frozen at placement-time prices.
type Order struct {
	ID         string          `json:"id"`
	Customer   string          `json:"customer"`
	Items      []LineItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type LineItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// ProductRef is the display expansion of a line item's product reference.
type ProductRef struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	ExpiryDate time.Time       `json:"expiryDate"`
}

// LineItemView carries the line item plus its product expansion for
// listings. Product is nil when the product has since been deleted; the
// line item itself survives.
type LineItemView struct {
	LineItem
	Product *ProductRef `json:"product"`
}

type OrderView struct {
	ID         string          `json:"id"`
	Customer   string          `json:"customer"`
	Items      []LineItemView  `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ItemInput is one requested product/quantity pairing in placement order.
type ItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
