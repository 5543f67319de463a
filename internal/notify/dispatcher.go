package notify

import (
	"context"

	"go.uber.org/zap"
)

// Dispatcher decouples alert delivery from the request that raised the
// alerts: handlers enqueue after writing their response, a single worker
// goroutine delivers in enqueue order on a background context, so client
// disconnects never cancel delivery. Sink failures are logged and dropped.
type Dispatcher struct {
	sink    Sink
	log     *zap.Logger
	inbox   chan Alert
	closeCh chan struct{}
}

func NewDispatcher(sink Sink, log *zap.Logger, buf int) *Dispatcher {
	return &Dispatcher{
		sink:    sink,
		log:     log,
		inbox:   make(chan Alert, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the delivery loop until Close is called, then drains what is
// left in the inbox and exits.
func (d *Dispatcher) Start() {
	go func() {
		defer close(d.closeCh)
		for a := range d.inbox {
			d.deliver(a)
		}
	}()
}

// Dispatch enqueues alerts in order. It blocks only when the inbox buffer
// is full.
func (d *Dispatcher) Dispatch(alerts ...Alert) {
	for _, a := range alerts {
		d.inbox <- a
	}
}

func (d *Dispatcher) deliver(a Alert) {
	ctx := context.Background()
	var err error
	switch a.Kind {
	case KindLowStock:
		err = d.sink.NotifyLowStock(ctx, a.ProductName)
	case KindExpiring:
		err = d.sink.NotifyExpiring(ctx, a.ProductName, a.ExpiryDate)
	default:
		d.log.Warn("unknown alert kind", zap.String("kind", string(a.Kind)))
		return
	}
	if err != nil {
		d.log.Warn("notification delivery failed",
			zap.String("kind", string(a.Kind)),
			zap.String("product", a.ProductName),
			zap.Error(err))
	}
}

// Close stops intake; the worker drains the remainder and exits.
func (d *Dispatcher) Close() { close(d.inbox) }

// WaitClosed blocks until the drain finishes.
func (d *Dispatcher) WaitClosed() { <-d.closeCh }
