package messaging

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

var ErrNSQAddrsRequired = errors.New("messaging: nsq nsqd or lookupd addresses are required")

type NSQConfig struct {
	ProducerAddr string
	NSQDAddrs    []string
	LookupdAddrs []string
	MaxInFlight  int
	MaxAttempts  uint16
	DialTimeout  time.Duration
	RequeueDelay time.Duration
}

func (c NSQConfig) consumerConfig(concurrency int) *nsq.Config {
	cfg := nsq.NewConfig()
	cfg.MaxInFlight = max(c.MaxInFlight, concurrency)
	if c.MaxAttempts > 0 {
		cfg.MaxAttempts = c.MaxAttempts
	}
	if c.DialTimeout > 0 {
		cfg.DialTimeout = c.DialTimeout
	}
	if c.RequeueDelay > 0 {
		cfg.DefaultRequeueDelay = c.RequeueDelay
	}
	return cfg
}

// NSQ carries no headers on the wire; Message.Headers is always empty on receive.
type NSQ struct {
	cfg      NSQConfig
	producer *nsq.Producer

	mu        sync.Mutex
	consumers []*nsq.Consumer
	closed    bool
}

func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	n := &NSQ{cfg: cfg}
	if cfg.ProducerAddr == "" {
		return n, nil
	}

	pcfg := nsq.NewConfig()
	if cfg.DialTimeout > 0 {
		pcfg.DialTimeout = cfg.DialTimeout
	}
	p, err := nsq.NewProducer(cfg.ProducerAddr, pcfg)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)
	n.producer = p
	return n, nil
}

func (n *NSQ) Publish(ctx context.Context, topic string, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	if n.producer == nil {
		return ErrProducerDisabled
	}
	if err := n.producer.Publish(topic, msg.Body); err != nil {
		return fmt.Errorf("messaging: nsq publish: %w", err)
	}
	return nil
}

// Consume returns handler errors to nsq, which requeues with backoff until
// MaxAttempts is reached.
func (n *NSQ) Consume(ctx context.Context, topic string, h Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, topic, h); err != nil {
		return err
	}
	co := buildConsumeOptions(opts)
	if co.group == "" {
		return ErrGroupRequired
	}
	if len(n.cfg.NSQDAddrs) == 0 && len(n.cfg.LookupdAddrs) == 0 {
		return ErrNSQAddrsRequired
	}

	c, err := nsq.NewConsumer(topic, co.group, n.cfg.consumerConfig(co.concurrency))
	if err != nil {
		return fmt.Errorf("messaging: nsq consumer: %w", err)
	}
	c.SetLoggerLevel(nsq.LogLevelError)
	c.AddConcurrentHandlers(nsq.HandlerFunc(func(m *nsq.Message) error {
		return invoke(ctx, DriverNSQ, h, &Message{
			ID:        hex.EncodeToString(m.ID[:]),
			Topic:     topic,
			Body:      m.Body,
			Timestamp: time.Unix(0, m.Timestamp),
			Attempt:   int(m.Attempts),
		})
	}), co.concurrency)

	if !n.track(c) {
		return ErrClosed
	}

	if len(n.cfg.LookupdAddrs) > 0 {
		err = c.ConnectToNSQLookupds(n.cfg.LookupdAddrs)
	} else {
		err = c.ConnectToNSQDs(n.cfg.NSQDAddrs)
	}
	if err != nil {
		c.Stop()
		<-c.StopChan
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	select {
	case <-ctx.Done():
		c.Stop()
		<-c.StopChan
		return ctx.Err()
	case <-c.StopChan:
		return nil
	}
}

func (n *NSQ) track(c *nsq.Consumer) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return false
	}
	n.consumers = append(n.consumers, c)
	return true
}

func (n *NSQ) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	consumers := n.consumers
	n.consumers = nil
	n.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
		<-c.StopChan
	}
	if n.producer != nil {
		n.producer.Stop()
	}
	return nil
}
