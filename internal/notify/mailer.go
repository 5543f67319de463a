package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Mailer is the narrow seam to the mail transport, which lives outside
// this system.
type Mailer interface {
	SendLowStockAlert(ctx context.Context, productName string) error
	SendExpiryWarning(ctx context.Context, productName string, expiry time.Time) error
}

// LogMailer records notifications in the service log instead of sending
// mail. Used as the default transport.
type LogMailer struct{ Log *zap.Logger }

func (m *LogMailer) SendLowStockAlert(ctx context.Context, productName string) error {
	m.Log.Info("low stock alert: please refill inventory",
		zap.String("product", productName))
	return nil
}

func (m *LogMailer) SendExpiryWarning(ctx context.Context, productName string, expiry time.Time) error {
	m.Log.Info("expiry warning: please check inventory",
		zap.String("product", productName),
		zap.Time("expiry_date", expiry))
	return nil
}
