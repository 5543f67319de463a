package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindLowStock Kind = "low_stock"
	KindExpiring Kind = "expiring_soon"
)

// Alert is one pending operator notification about a product.
type Alert struct {
	Kind        Kind
	ProductName string
	ExpiryDate  time.Time // set for KindExpiring only
}

func LowStock(productName string) Alert {
	return Alert{Kind: KindLowStock, ProductName: productName}
}

func Expiring(productName string, expiry time.Time) Alert {
	return Alert{Kind: KindExpiring, ProductName: productName, ExpiryDate: expiry}
}

// Sink receives alerts fire-and-forget: a sink error never affects the
// request that produced the alert.
type Sink interface {
	NotifyLowStock(ctx context.Context, productName string) error
	NotifyExpiring(ctx context.Context, productName string, expiry time.Time) error
}
