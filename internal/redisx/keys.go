package redisx

import "time"

const (
	// Cache for GET /orders/recent: orders:recent -> JSON array of orders.
	KeyRecentOrders = "orders:recent"

	// Dedup notification delivery: dedup:notifier:{event_id}
	KeyNotifyDedup = "dedup:notifier:%s"
)

var (
	TTLRecentCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
