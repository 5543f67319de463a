package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/sammade/inventory-api/internal/kafka"
)

// KafkaSink publishes alert events for the notifier service to deliver.
// Publishing only enqueues on the producer inbox, so the sink never blocks
// on the broker.
type KafkaSink struct {
	LowStock *kafkax.Producer // topic inventory.stock.low
	Expiring *kafkax.Producer // topic inventory.expiry.soon
	Service  string
}

func (s *KafkaSink) NotifyLowStock(ctx context.Context, productName string) error {
	s.publish(s.LowStock, EventLowStockDetected, productName,
		LowStockPayload{ProductName: productName})
	return nil
}

func (s *KafkaSink) NotifyExpiring(ctx context.Context, productName string, expiry time.Time) error {
	s.publish(s.Expiring, EventExpiryApproaching, productName,
		ExpiringPayload{ProductName: productName, ExpiryDate: expiry})
	return nil
}

func (s *KafkaSink) publish(p *kafkax.Producer, eventType, productName string, payload any) {
	ev := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     s.Service,
		Payload:      kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(productName), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
