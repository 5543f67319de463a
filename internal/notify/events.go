package notify

import (
	"encoding/json"
	"time"
)

const (
	EventLowStockDetected  = "LowStockDetected"
	EventExpiryApproaching = "ExpiryApproaching"
)

const (
	TopicLowStock = "inventory.stock.low"
	TopicExpiring = "inventory.expiry.soon"
)

type Envelope struct {
	EventID      string          `json:"event_id"` // uuid
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"` // 1
	OccurredAt   time.Time       `json:"occurred_at"`   // RFC3339
	Producer     string          `json:"producer"`      // e.g. "inventory-api"
	Payload      json.RawMessage `json:"payload"`
}

type LowStockPayload struct {
	ProductName string `json:"product_name"`
}

type ExpiringPayload struct {
	ProductName string    `json:"product_name"`
	ExpiryDate  time.Time `json:"expiry_date"`
}

// Partition key = product name, so repeated alerts for one product stay
// ordered within a topic.
func PartitionKey(productName string) []byte { return []byte(productName) }
