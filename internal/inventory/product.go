package inventory

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// LowStockThreshold is the quantity at or below which a product is
	// flagged for restocking after an order-driven decrement.
	LowStockThreshold = 10

	// ExpiringSoonDays is the ceiling-days window for flagging products
	// that are close to their expiry date during order placement.
	ExpiringSoonDays = 30
)

type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	ExpiryDate time.Time       `json:"expiryDate"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Expired reports whether the product may no longer be sold at the given
// instant. A product expiring exactly now is already expired.
func (p Product) Expired(now time.Time) bool {
	return !p.ExpiryDate.After(now)
}

// DaysUntilExpiry returns the number of whole days until the expiry date,
// rounded up. Expired products yield zero or a negative count.
func (p Product) DaysUntilExpiry(now time.Time) int {
	return int(math.Ceil(p.ExpiryDate.Sub(now).Hours() / 24))
}
