package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")

type KafkaConfig struct {
	Brokers  []string
	ClientID string
}

// Kafka commits an offset only after the handler succeeds. A failed message
// is left uncommitted and is re-read after a rebalance or restart.
type Kafka struct {
	cfg    KafkaConfig
	dialer *kafka.Dialer

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	readers map[*kafka.Reader]struct{}
	closed  bool
}

func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}
	return &Kafka{
		cfg:     cfg,
		dialer:  &kafka.Dialer{ClientID: cfg.ClientID, Timeout: 10 * time.Second},
		writers: make(map[string]*kafka.Writer),
		readers: make(map[*kafka.Reader]struct{}),
	}, nil
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrClosed
	}
	if w, ok := k.writers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(k.cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	k.writers[topic] = w
	return w, nil
}

func (k *Kafka) Publish(ctx context.Context, topic string, msg *Message) error {
	if topic == "" {
		return ErrTopicRequired
	}
	w, err := k.writer(topic)
	if err != nil {
		return err
	}

	out := kafka.Message{Key: msg.Key, Value: msg.Body, Time: time.Now()}
	for key, v := range msg.Headers {
		out.Headers = append(out.Headers, kafka.Header{Key: key, Value: []byte(v)})
	}
	if err := w.WriteMessages(ctx, out); err != nil {
		return fmt.Errorf("messaging: kafka publish: %w", err)
	}
	return nil
}

func (k *Kafka) Consume(ctx context.Context, topic string, h Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, topic, h); err != nil {
		return err
	}
	co := buildConsumeOptions(opts)
	if co.group == "" {
		return ErrGroupRequired
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.cfg.Brokers,
		GroupID:  co.group,
		Topic:    topic,
		Dialer:   k.dialer,
		MaxBytes: 10e6,
	})
	if !k.track(r) {
		return errors.Join(ErrClosed, r.Close())
	}
	defer k.untrack(r)

	fetched := make(chan kafka.Message)
	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for m := range fetched {
				k.handle(ctx, r, h, m)
			}
		})
	}

	var fetchErr error
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			fetchErr = err
			break
		}
		fetched <- m
	}
	close(fetched)
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("messaging: kafka fetch: %w", fetchErr)
}

func (k *Kafka) handle(ctx context.Context, r *kafka.Reader, h Handler, m kafka.Message) {
	msg := &Message{
		ID:        m.Topic + "/" + strconv.Itoa(m.Partition) + "/" + strconv.FormatInt(m.Offset, 10),
		Topic:     m.Topic,
		Key:       m.Key,
		Body:      m.Value,
		Timestamp: m.Time,
		Attempt:   1,
	}
	if len(m.Headers) > 0 {
		msg.Headers = make(map[string]string, len(m.Headers))
		for _, hd := range m.Headers {
			msg.Headers[hd.Key] = string(hd.Value)
		}
	}

	if err := invoke(ctx, DriverKafka, h, msg); err != nil {
		slog.WarnContext(ctx, "kafka message left uncommitted", "id", msg.ID, "error", err)
		return
	}
	if err := r.CommitMessages(ctx, m); err != nil {
		slog.ErrorContext(ctx, "kafka commit failed", "id", msg.ID, "error", err)
	}
}

func (k *Kafka) track(r *kafka.Reader) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return false
	}
	k.readers[r] = struct{}{}
	return true
}

func (k *Kafka) untrack(r *kafka.Reader) {
	k.mu.Lock()
	_, owned := k.readers[r]
	delete(k.readers, r)
	k.mu.Unlock()

	if owned {
		if err := r.Close(); err != nil {
			slog.Warn("kafka reader close failed", "error", err)
		}
	}
}

func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	writers, readers := k.writers, k.readers
	k.writers, k.readers = nil, nil
	k.mu.Unlock()

	var errs []error
	for r := range readers {
		errs = append(errs, r.Close())
	}
	for _, w := range writers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}
