// Package messaging publishes and consumes messages over NSQ, NATS, Kafka,
// Google Pub/Sub or an in-process broker, behind one interface.
//
// A Handler reports the outcome by its return value: nil settles the message,
// an error asks the broker to redeliver it when the broker supports that.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	ErrUnknownDriver    = errors.New("messaging: unknown driver")
	ErrTopicRequired    = errors.New("messaging: topic is required")
	ErrHandlerRequired  = errors.New("messaging: handler is required")
	ErrGroupRequired    = errors.New("messaging: consumer group is required")
	ErrClosed           = errors.New("messaging: client closed")
	ErrProducerDisabled = errors.New("messaging: producer not configured")
)

const (
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
	DriverMemory       = "memory"
)

// Message is both what gets published and what a Handler receives.
type Message struct {
	ID        string
	Topic     string
	Key       []byte
	Body      []byte
	Headers   map[string]string
	Timestamp time.Time
	// Attempt counts deliveries, starting at 1, where the broker tracks it.
	Attempt int
}

// Header returns the header value for key, matched case-insensitively
// since some brokers canonicalize header names.
func (m *Message) Header(key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m.Headers[key]; ok {
		return v
	}
	for k, v := range m.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// Handler processes one delivery.
type Handler func(ctx context.Context, msg *Message) error

type Publisher interface {
	Publish(ctx context.Context, topic string, msg *Message) error
}

// Consumer blocks in Consume until ctx ends or the subscription fails.
type Consumer interface {
	Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error
}

type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

// Options holds per-driver settings; New reads only the selected one.
type Options struct {
	NSQ    NSQConfig
	NATS   NATSConfig
	Kafka  KafkaConfig
	PubSub PubSubConfig
	Memory MemoryConfig
}

// New connects to the broker named by driver.
func New(ctx context.Context, driver string, opts Options) (Messaging, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverNSQ:
		return NewNSQ(opts.NSQ)
	case DriverNATS:
		return NewNATS(opts.NATS)
	case DriverKafka:
		return NewKafka(opts.Kafka)
	case DriverGooglePubSub:
		return NewPubSub(ctx, opts.PubSub)
	case DriverMemory:
		return NewMemory(opts.Memory), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

func validateConsume(ctx context.Context, topic string, h Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	if h == nil {
		return ErrHandlerRequired
	}
	return nil
}
