package kafkax

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	mu        sync.Mutex
	w         *kafka.Writer
	cfg       ProducerConfig
	lastReset time.Time
}

type ProducerConfig struct {
	Brokers      []string
	Topic        string
	ClientID     string
	WriteTimeout time.Duration
}

func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Producer{cfg: cfg, w: newWriter(cfg)}
}

func newWriter(cfg ProducerConfig) *kafka.Writer {
	// Short metadata TTL so a moved broker is picked up without a restart.
	tr := &kafka.Transport{
		ClientID:    cfg.ClientID,
		MetadataTTL: 10 * time.Second,
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Transport:              tr,
	}
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.w == nil {
		return nil
	}
	err := p.w.Close()
	p.w = nil
	return err
}

// Produce writes one keyed message. Messages with the same key land on the
// same partition, so per-aggregate order is kept.
func (p *Producer) Produce(ctx context.Context, key, value []byte) error {
	if err := p.write(ctx, key, value); err != nil {
		if !shouldReset(err) {
			return err
		}
		p.reset()
		return p.write(ctx, key, value)
	}
	return nil
}

func (p *Producer) write(ctx context.Context, key, value []byte) error {
	p.mu.Lock()
	w := p.w
	p.mu.Unlock()
	if w == nil {
		return errors.New("kafkax: producer closed")
	}
	cctx, cancel := context.WithTimeout(ctx, p.cfg.WriteTimeout)
	defer cancel()
	return w.WriteMessages(cctx, kafka.Message{Key: key, Value: value})
}

func shouldReset(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.EOF) {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, sub := range []string{
		"connection refused",
		"broken pipe",
		"not leader",
		"unknown broker",
		"failed to dial",
	} {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// reset recreates the writer at most once every two seconds.
func (p *Producer) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.w == nil || time.Since(p.lastReset) < 2*time.Second {
		return
	}
	_ = p.w.Close()
	p.w = newWriter(p.cfg)
	p.lastReset = time.Now()
}
