package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

var ErrNATSURLRequired = errors.New("messaging: nats url is required")

type NATSConfig struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

func (c NATSConfig) options() []nats.Option {
	opts := []nats.Option{nats.Name(c.Name)}
	if c.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(c.MaxReconnects))
	}
	if c.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(c.ReconnectWait))
	}
	if c.Timeout > 0 {
		opts = append(opts, nats.Timeout(c.Timeout))
	}
	return opts
}

// NATS uses core NATS subjects. Delivery is at most once, so a handler error
// is logged and the message is not redelivered.
type NATS struct {
	conn *nats.Conn
}

func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}
	conn, err := nats.Connect(cfg.URL, cfg.options()...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}
	return &NATS{conn: conn}, nil
}

func (n *NATS) Publish(ctx context.Context, topic string, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}

	out := nats.NewMsg(topic)
	out.Data = msg.Body
	for k, v := range msg.Headers {
		out.Header.Set(k, v)
	}
	if err := n.conn.PublishMsg(out); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}
	return n.conn.FlushWithContext(ctx)
}

func (n *NATS) Consume(ctx context.Context, topic string, h Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, topic, h); err != nil {
		return err
	}
	co := buildConsumeOptions(opts)

	ch := make(chan *nats.Msg, co.concurrency*16)
	sub, err := n.conn.ChanQueueSubscribe(topic, co.group, ch)
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case m := <-ch:
					msg := &Message{Topic: m.Subject, Body: m.Data, Timestamp: time.Now(), Attempt: 1}
					if len(m.Header) > 0 {
						msg.Headers = make(map[string]string, len(m.Header))
						for k := range m.Header {
							msg.Headers[k] = m.Header.Get(k)
						}
					}
					if err := invoke(ctx, DriverNATS, h, msg); err != nil {
						slog.WarnContext(ctx, "nats message dropped after handler error", "topic", topic, "error", err)
					}
				}
			}
		})
	}

	<-ctx.Done()
	uerr := sub.Unsubscribe()
	wg.Wait()
	return errors.Join(ctx.Err(), uerr)
}

func (n *NATS) Close() error {
	if err := n.conn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		n.conn.Close()
		return err
	}
	return nil
}
