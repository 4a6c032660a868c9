package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/revaspay/paygate/internal/services/payment/paygate"
)

// PaymentReceivedEvent names payment notifications on the bus
const PaymentReceivedEvent = "paygate.payment_received"

// Sink is anything that accepts payment notifications
type Sink = paygate.Sink

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, payment paygate.PaymentReceived) error

// Publish calls f
func (f SinkFunc) Publish(ctx context.Context, payment paygate.PaymentReceived) error {
	return f(ctx, payment)
}

type subscriber struct {
	name     string
	sink     Sink
	required bool
}

// Dispatcher fans a notification out to every subscriber in registration order.
// A failing optional subscriber does not stop the others; a failing required
// subscriber stops delivery to the subscribers after it. Failures are joined.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers []subscriber
	logger      *zap.Logger
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger.Named("events")}
}

// Subscribe registers a sink under a name used in logs
func (d *Dispatcher) Subscribe(name string, sink Sink) {
	d.add(subscriber{name: name, sink: sink})
}

// SubscribeRequired registers a sink that later subscribers depend on
func (d *Dispatcher) SubscribeRequired(name string, sink Sink) {
	d.add(subscriber{name: name, sink: sink, required: true})
}

func (d *Dispatcher) add(s subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, s)
}

// Publish delivers the notification to every subscriber
func (d *Dispatcher) Publish(ctx context.Context, payment paygate.PaymentReceived) error {
	d.mu.RLock()
	subs := make([]subscriber, len(d.subscribers))
	copy(subs, d.subscribers)
	d.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.sink.Publish(ctx, payment); err != nil {
			d.logger.Error("subscriber failed",
				zap.String("subscriber", s.name),
				zap.String("event", PaymentReceivedEvent),
				zap.String("tx_reference", payment.TxReference),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			if s.required {
				break
			}
		}
	}
	return errors.Join(errs...)
}
