package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammade/inventory-api/internal/inventory"
	"github.com/sammade/inventory-api/internal/notify"
)

type fakeInventory struct {
	products map[string]*inventory.Product
	decErr   error
	raceQty  int // quantity left behind by a concurrent order when decErr fires
}

func (f *fakeInventory) FindByID(ctx context.Context, id string) (inventory.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return inventory.Product{}, inventory.ErrNotFound
	}
	return *p, nil
}

func (f *fakeInventory) Decrement(ctx context.Context, id string, qty int) (int, error) {
	if f.decErr != nil {
		if p, ok := f.products[id]; ok {
			p.Quantity = f.raceQty
		}
		return 0, f.decErr
	}
	p, ok := f.products[id]
	if !ok || p.Quantity < qty {
		return 0, inventory.ErrInsufficientStock
	}
	p.Quantity -= qty
	return p.Quantity, nil
}

type fakeLedger struct {
	inserted []*Order
	err      error
}

func (f *fakeLedger) Insert(ctx context.Context, o *Order) error {
	if f.err != nil {
		return f.err
	}
	o.ID = "order-1"
	f.inserted = append(f.inserted, o)
	return nil
}

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newEngine(inv *fakeInventory, ledger *fakeLedger) *Engine {
	return &Engine{Inventory: inv, Ledger: ledger, Now: func() time.Time { return testNow }}
}

func product(id, name, priceStr string, qty int, expiry time.Time) *inventory.Product {
	return &inventory.Product{ID: id, Name: name, Price: price(priceStr), Quantity: qty, ExpiryDate: expiry}
}

func TestPlaceOrder_SingleItem(t *testing.T) {
	inv := &fakeInventory{products: map[string]*inventory.Product{
		"a": product("a", "Rice", "100", 50, testNow.AddDate(0, 0, 60)),
	}}
	ledger := &fakeLedger{}
	e := newEngine(inv, ledger)

	placement, err := e.PlaceOrder(context.Background(), "x", []ItemInput{{ProductID: "a", Quantity: 5}})
	require.NoError(t, err)

	assert.Equal(t, 45, inv.products["a"].Quantity)
	assert.True(t, placement.Order.TotalPrice.Equal(price("500")),
		"total = %s", placement.Order.TotalPrice)
	require.Len(t, placement.Order.Items, 1)
	assert.True(t, placement.Order.Items[0].LineTotal.Equal(price("500")))
	assert.Equal(t, testNow, placement.Order.CreatedAt)
	require.Len(t, ledger.inserted, 1)
	assert.Equal(t, "order-1", placement.Order.ID)
	assert.Empty(t, placement.Alerts)
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	e := newEngine(&fakeInventory{}, &fakeLedger{})

	_, err := e.PlaceOrder(context.Background(), "x", nil)
	var inv *InvalidRequestError
	require.ErrorAs(t, err, &inv)
}

func TestPlaceOrder_InvalidItem(t *testing.T) {
	e := newEngine(&fakeInventory{}, &fakeLedger{})

	_, err := e.PlaceOrder(context.Background(), "x", []ItemInput{{ProductID: "a", Quantity: 0}})
	var invErr *InvalidRequestError
	require.ErrorAs(t, err, &invErr)

	_, err = e.PlaceOrder(context.Background(), "x", []ItemInput{{Quantity: 1}})
	require.ErrorAs(t, err, &invErr)

	_, err = e.PlaceOrder(context.Background(), "  ", []ItemInput{{ProductID: "a", Quantity: 1}})
	require.ErrorAs(t, err, &invErr)
}

func TestPlaceOrder_ProductNotFound_KeepsEarlierDecrements(t *testing.T) {
	inv := &fakeInventory{products: map[string]*inventory.Product{
		"a": product("a", "Rice", "100", 50, testNow.AddDate(0, 0, 60)),
	}}
	ledger := &fakeLedger{}
	e := newEngine(inv, ledger)

	_, err := e.PlaceOrder(context.Background(), "x", []ItemInput{
		{ProductID: "a", Quantity: 5},
		{ProductID: "missing", Quantity: 1},
	})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ProductID)

	// fail-fast with no rollback: item 1 stays decremented, no order persisted
	assert.Equal(t, 45, inv.products["a"].Quantity)
	assert.Empty(t, ledger.inserted)
}

func TestPlaceOrder_Expired(t *testing.T) {
	inv := &fakeInventory{products: map[string]*inventory.Product{
		"c": product("c", "Milk", "20", 100, testNow.AddDate(0, 0, -1)),
	}}
	ledger := &fakeLedger{}
	e := newEngine(inv, ledger)

	_, err := e.PlaceOrder(context.Background(), "x", []ItemInput{{ProductID: "c", Quantity: 1}})

	var exp *ExpiredError
	require.ErrorAs(t, err, &exp)
	assert.Equal(t, "Milk", exp.Name)
	assert.Equal(t, 100, inv.products["c"].Quantity)
	assert.Empty(t, ledger.inserted)
}

func TestPlaceOrder_ExpiringExactlyNowIsExpired(t *testing.T) {
	inv := &fakeInventory{products: map[string]*inventory.Product{
		"c": product("c", "Milk", "20", 100, testNow),
	}}
	e := newEngine(inv, &fakeLedger{})

	_, err := e.PlaceOrder(context.Background(), "x", []ItemInput{{ProductID: "c", Quantity: 1}})

	var exp *ExpiredError
	require.ErrorAs(t, err, &exp)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	inv := &fakeInventory{products: map[string]*inventory.Product{
		"b": product("b", "Beans", "50", 5, testNow.AddDate(0, 0, 60)),
	}}
	ledger := &fakeLedger{}
	e := newEngine(inv, ledger)

	_, err := e.PlaceOrder(context.Background(), "x", []ItemInput{{ProductID: "b", Quantity: 10}})

	var stock *InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, "Beans", stock.Name)
	assert.Equal(t, 10, stock.Requested)
	assert.Equal(t, 5, stock.Available)
	assert.Equal(t, 5, inv.products["b"].Quantity)
	assert.Empty(t, ledger.inserted)
}

func TestPlaceOrder_LowStockAlert(t *testing.T) {
	// Product A: price=100, qty=12, expiry=+60d. Two orders of 5 each.
	inv := &fakeInventory{products: map[string]*inventory.Product{
		"a": product("a", "Rice", "100", 12, testNow.AddDate(0, 0, 60)),
	}}
	e := newEngine(inv, &fakeLedger{})

	first, err := e.PlaceOrder(context.Background(), "x", []ItemInput{{ProductID: "a", Quantity: 5}})
	require.NoError(t, err)
	assert.True(t, first.Order.TotalPrice.Equal(price("500")))
	assert.Equal(t, 7, inv.products["a"].Quantity)
	// 7 is already at or below the threshold
	require.Len(t, first.Alerts, 1)
	assert.Equal(t, notify.KindLowStock, first.Alerts[0].Kind)

	second, err := e.PlaceOrder(context.Background(), "x", []ItemInput{{ProductID: "a", Quantity: 5}})
	require.NoError(t, err)
	assert.Equal(t, 2, inv.products["a"].Quantity)
	require.Len(t, second.Alerts, 1)
	assert.Equal(t, notify.KindLowStock, second.Alerts[0].Kind)
	assert.Equal(t, "Rice", second.Alerts[0].ProductName)
}

func TestPlaceOrder_AlertOrdering(t *testing.T) {
	expSoon := testNow.AddDate(0, 0, 10)
	inv := &fakeInventory{products: map[string]*inventory.Product{
		"soon": product("soon", "Yogurt", "10", 100, expSoon),          // expiring only
		"low":  product("low", "Salt", "5", 11, testNow.AddDate(1, 0, 0)), // low stock only
	}}
	e := newEngine(inv, &fakeLedger{})

	placement, err := e.PlaceOrder(context.Background(), "x", []ItemInput{
		{ProductID: "soon", Quantity: 1},
		{ProductID: "low", Quantity: 1},
	})
	require.NoError(t, err)

	// low-stock alerts come before expiring alerts regardless of item order
	require.Len(t, placement.Alerts, 2)
	assert.Equal(t, notify.KindLowStock, placement.Alerts[0].Kind)
	assert.Equal(t, "Salt", placement.Alerts[0].ProductName)
	assert.Equal(t, notify.KindExpiring, placement.Alerts[1].Kind)
	assert.Equal(t, "Yogurt", placement.Alerts[1].ProductName)
	assert.Equal(t, expSoon, placement.Alerts[1].ExpiryDate)
}

func TestPlaceOrder_SameProductBothBuckets(t *testing.T) {
	inv := &fakeInventory{products: map[string]*inventory.Product{
		"a": product("a", "Rice", "100", 12, testNow.AddDate(0, 0, 20)),
	}}
	e := newEngine(inv, &fakeLedger{})

	placement, err := e.PlaceOrder(context.Background(), "x", []ItemInput{{ProductID: "a", Quantity: 5}})
	require.NoError(t, err)
	require.Len(t, placement.Alerts, 2)
	assert.Equal(t, notify.KindLowStock, placement.Alerts[0].Kind)
	assert.Equal(t, notify.KindExpiring, placement.Alerts[1].Kind)
}

func TestPlaceOrder_MultiItemTotal(t *testing.T) {
	inv := &fakeInventory{products: map[string]*inventory.Product{
		"a": product("a", "Rice", "100.50", 50, testNow.AddDate(0, 0, 60)),
		"b": product("b", "Beans", "50", 40, testNow.AddDate(0, 0, 60)),
	}}
	e := newEngine(inv, &fakeLedger{})

	placement, err := e.PlaceOrder(context.Background(), "x", []ItemInput{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 3},
	})
	require.NoError(t, err)

	require.Len(t, placement.Order.Items, 2)
	assert.True(t, placement.Order.Items[0].LineTotal.Equal(price("201")))
	assert.True(t, placement.Order.Items[1].LineTotal.Equal(price("150")))
	assert.True(t, placement.Order.TotalPrice.Equal(price("351")))
}

func TestPlaceOrder_LedgerFailure(t *testing.T) {
	inv := &fakeInventory{products: map[string]*inventory.Product{
		"a": product("a", "Rice", "100", 50, testNow.AddDate(0, 0, 60)),
	}}
	ledger := &fakeLedger{err: errors.New("db down")}
	e := newEngine(inv, ledger)

	_, err := e.PlaceOrder(context.Background(), "x", []ItemInput{{ProductID: "a", Quantity: 5}})
	require.Error(t, err)

	var invErr *InvalidRequestError
	var nf *NotFoundError
	assert.False(t, errors.As(err, &invErr))
	assert.False(t, errors.As(err, &nf))

	// stock stays decremented; reconciliation concern, not rolled back
	assert.Equal(t, 45, inv.products["a"].Quantity)
}

func TestPlaceOrder_DecrementRace(t *testing.T) {
	// stock passes the initial read, then a concurrent order drains it to 2
	// before the conditional decrement lands
	inv := &fakeInventory{
		products: map[string]*inventory.Product{
			"a": product("a", "Rice", "100", 12, testNow.AddDate(0, 0, 60)),
		},
		decErr:  inventory.ErrInsufficientStock,
		raceQty: 2,
	}
	e := newEngine(inv, &fakeLedger{})

	_, err := e.PlaceOrder(context.Background(), "x", []ItemInput{{ProductID: "a", Quantity: 5}})

	var stock *InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, 5, stock.Requested)
	// availability reflects the post-race re-read, not the stale count of 12
	assert.Equal(t, 2, stock.Available)
}
