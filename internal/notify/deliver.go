package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sammade/inventory-api/internal/redisx"
)

// Deliverer turns alert events into Mailer calls. Mailer failures are
// logged and the offset is committed anyway: notifications get no retries.
type Deliverer struct {
	Mailer Mailer
	Redis  *redis.Client
	Log    *zap.Logger
}

// Handle is wired as the consumer handler for both alert topics.
func (d *Deliverer) Handle(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup on event_id; Redis being down just means duplicates get through
	dkey := fmt.Sprintf(redisx.KeyNotifyDedup, env.EventID)
	if exists, _ := redisx.Exists(ctx, d.Redis, dkey); exists {
		return nil
	}
	_ = d.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	var err error
	switch env.EventType {
	case EventLowStockDetected:
		var p LowStockPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		err = d.Mailer.SendLowStockAlert(ctx, p.ProductName)
	case EventExpiryApproaching:
		var p ExpiringPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		err = d.Mailer.SendExpiryWarning(ctx, p.ProductName, p.ExpiryDate)
	default:
		return nil // not ours
	}

	if err != nil {
		d.Log.Warn("mail delivery failed",
			zap.String("event_type", env.EventType),
			zap.String("event_id", env.EventID),
			zap.Error(err))
	}
	return nil
}
