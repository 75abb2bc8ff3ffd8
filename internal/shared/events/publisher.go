package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

type Publisher interface {
	Publish(ctx context.Context, e Envelope) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Envelope) error { return nil }

// Producer is the transport a BrokerPublisher writes to; kafkax.Producer satisfies it.
type Producer interface {
	Produce(ctx context.Context, key, value []byte) error
}

// BrokerPublisher encodes envelopes as JSON keyed by aggregate id.
type BrokerPublisher struct {
	producer  Producer
	published *prometheus.CounterVec
}

func NewBrokerPublisher(p Producer, reg prometheus.Registerer) *BrokerPublisher {
	c := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "events_published_total", Help: "Change events handed to the broker."},
		[]string{"event_type", "status"},
	)
	reg.MustRegister(c)
	return &BrokerPublisher{producer: p, published: c}
}

func (b *BrokerPublisher) Publish(ctx context.Context, e Envelope) error {
	value, err := json.Marshal(e)
	if err != nil {
		b.published.WithLabelValues(e.EventType, "error").Inc()
		return fmt.Errorf("encode event %s: %w", e.EventID, err)
	}
	if err := b.producer.Produce(ctx, []byte(e.AggregateID), value); err != nil {
		b.published.WithLabelValues(e.EventType, "error").Inc()
		return fmt.Errorf("publish event %s: %w", e.EventID, err)
	}
	b.published.WithLabelValues(e.EventType, "ok").Inc()
	return nil
}
