package orders

import (
	"fmt"
	"time"
)

// InvalidRequestError covers malformed placement requests: empty item
// lists, missing product ids, non-positive quantities.
type InvalidRequestError struct{ Reason string }

func (e *InvalidRequestError) Error() string { return e.Reason }

// NotFoundError means an item referenced a product id that does not exist.
type NotFoundError struct{ ProductID string }

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// ExpiredError means the product's expiry date is not in the future.
type ExpiredError struct {
	Name       string
	ExpiryDate time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("%s expired on %s", e.Name, e.ExpiryDate.Format("2006-01-02"))
}

// InsufficientStockError means the requested quantity exceeds what is
// available. Available is the quantity observed at validation time.
type InsufficientStockError struct {
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s is out of stock: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}
