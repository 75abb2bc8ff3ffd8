package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	opsTotal  *prometheus.CounterVec
	opLatency *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docstore_operations_total",
				Help: "Document store operations by collection, operation and outcome.",
			},
			[]string{"collection", "op", "outcome"},
		),
		opLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docstore_operation_duration_seconds",
				Help:    "Document store operation latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"collection", "op"},
		),
	}
	reg.MustRegister(m.opsTotal, m.opLatency)
	return m
}

// Instrument wraps next so every data operation is counted and timed.
func Instrument(next Store, m *Metrics) Store {
	return &instrumented{Store: next, m: m}
}

type instrumented struct {
	Store
	m *Metrics
}

func (s *instrumented) observe(collection, op string, start time.Time, err error) {
	s.m.opLatency.WithLabelValues(collection, op).Observe(time.Since(start).Seconds())
	s.m.opsTotal.WithLabelValues(collection, op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformedID), errors.Is(err, ErrBadField):
		return "rejected"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func (s *instrumented) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	start := time.Now()
	id, err := s.Store.Create(ctx, collection, fields)
	s.observe(collection, "create", start, err)
	return id, err
}

func (s *instrumented) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	start := time.Now()
	docs, err := s.Store.List(ctx, collection, q)
	s.observe(collection, "list", start, err)
	return docs, err
}

func (s *instrumented) Get(ctx context.Context, collection, id string) (Document, error) {
	start := time.Now()
	d, err := s.Store.Get(ctx, collection, id)
	s.observe(collection, "get", start, err)
	return d, err
}

func (s *instrumented) Update(ctx context.Context, collection, id string, set Fields) (Document, error) {
	start := time.Now()
	d, err := s.Store.Update(ctx, collection, id, set)
	s.observe(collection, "update", start, err)
	return d, err
}
