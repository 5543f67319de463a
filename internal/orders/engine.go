package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sammade/inventory-api/internal/inventory"
	"github.com/sammade/inventory-api/internal/notify"
)

// InventoryStore is the slice of the product store the engine needs.
type InventoryStore interface {
	FindByID(ctx context.Context, id string) (inventory.Product, error)
	// Decrement reserves qty units and returns the remaining quantity.
	// Must fail with inventory.ErrInsufficientStock instead of going
	// negative.
	Decrement(ctx context.Context, id string, qty int) (int, error)
}

// Ledger appends placed orders. Insert assigns the order id.
type Ledger interface {
	Insert(ctx context.Context, o *Order) error
}

// Engine runs the order-placement transaction: validate each item in
// request order, reserve stock, freeze line prices, persist the order,
// and hand back the alerts to fire once the response is out.
//
// Items are processed fail-fast with no cross-item rollback: when item k
// fails validation, items 1..k-1 keep their stock decrements and no order
// is persisted. Operators reconcile; the engine does not compensate.
type Engine struct {
	Inventory InventoryStore
	Ledger    Ledger
	Now       func() time.Time // nil means time.Now
}

// Placement is the outcome of a successful PlaceOrder call. Alerts are
// ordered low-stock first, then expiring, in item order within each kind.
type Placement struct {
	Order  *Order
	Alerts []notify.Alert
}

func (e *Engine) PlaceOrder(ctx context.Context, customer string, items []ItemInput) (*Placement, error) {
	if strings.TrimSpace(customer) == "" {
		return nil, &InvalidRequestError{Reason: "customer is required"}
	}
	if len(items) == 0 {
		return nil, &InvalidRequestError{Reason: "order must contain at least one item"}
	}
	for i, it := range items {
		if it.ProductID == "" {
			return nil, &InvalidRequestError{Reason: fmt.Sprintf("item %d: productId is required", i)}
		}
		if it.Quantity <= 0 {
			return nil, &InvalidRequestError{Reason: fmt.Sprintf("item %d: quantity must be positive", i)}
		}
	}

	now := e.now()
	total := decimal.Zero
	lineItems := make([]LineItem, 0, len(items))
	var lowStock, expiring []notify.Alert

	for _, it := range items {
		p, err := e.Inventory.FindByID(ctx, it.ProductID)
		if errors.Is(err, inventory.ErrNotFound) {
			return nil, &NotFoundError{ProductID: it.ProductID}
		}
		if err != nil {
			return nil, fmt.Errorf("find product %s: %w", it.ProductID, err)
		}
		if p.Expired(now) {
			return nil, &ExpiredError{Name: p.Name, ExpiryDate: p.ExpiryDate}
		}
		if p.Quantity < it.Quantity {
			return nil, &InsufficientStockError{Name: p.Name, Requested: it.Quantity, Available: p.Quantity}
		}

		remaining, err := e.Inventory.Decrement(ctx, p.ID, it.Quantity)
		if errors.Is(err, inventory.ErrInsufficientStock) {
			// lost a concurrent race after the read above; re-read so the
			// reported availability is not the stale pre-race count
			available := p.Quantity
			if cur, rerr := e.Inventory.FindByID(ctx, p.ID); rerr == nil {
				available = cur.Quantity
			}
			return nil, &InsufficientStockError{Name: p.Name, Requested: it.Quantity, Available: available}
		}
		if err != nil {
			return nil, fmt.Errorf("decrement stock for %s: %w", p.Name, err)
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(lineTotal)
		lineItems = append(lineItems, LineItem{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			LineTotal: lineTotal,
		})

		// per item, not deduplicated across repeats of the same product
		if remaining <= inventory.LowStockThreshold {
			lowStock = append(lowStock, notify.LowStock(p.Name))
		}
		if p.DaysUntilExpiry(now) <= inventory.ExpiringSoonDays {
			expiring = append(expiring, notify.Expiring(p.Name, p.ExpiryDate))
		}
	}

	order := &Order{
		Customer:   customer,
		Items:      lineItems,
		TotalPrice: total,
		CreatedAt:  now,
	}
	if err := e.Ledger.Insert(ctx, order); err != nil {
		// stock already decremented; reconciliation concern, not rolled back
		return nil, fmt.Errorf("persist order: %w", err)
	}

	return &Placement{Order: order, Alerts: append(lowStock, expiring...)}, nil
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
