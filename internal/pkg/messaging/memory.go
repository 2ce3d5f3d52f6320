package messaging

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

type MemoryConfig struct {
	// Buffer is the per-group queue length. Publish blocks when it is full.
	Buffer int
	// MaxAttempts bounds redelivery of messages whose handler failed.
	MaxAttempts int
}

// Memory is an in-process broker for single-node deployments and tests.
// Each group receives every message published after the group first
// subscribed; messages published to a topic with no groups are held until
// one appears.
type Memory struct {
	cfg MemoryConfig
	seq atomic.Int64

	published atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64

	mu      sync.Mutex
	topics  map[string]map[string]chan *Message
	backlog map[string][]*Message
	closed  bool
	done    chan struct{}
}

// MemoryStats counts broker activity since creation.
type MemoryStats struct {
	Published int64
	Delivered int64
	Dropped   int64
}

func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Memory{
		cfg:     cfg,
		topics:  make(map[string]map[string]chan *Message),
		backlog: make(map[string][]*Message),
		done:    make(chan struct{}),
	}
}

func (m *Memory) Stats() MemoryStats {
	return MemoryStats{
		Published: m.published.Load(),
		Delivered: m.delivered.Load(),
		Dropped:   m.dropped.Load(),
	}
}

func (m *Memory) Publish(ctx context.Context, topic string, msg *Message) error {
	if topic == "" {
		return ErrTopicRequired
	}

	out := *msg
	out.ID = strconv.FormatInt(m.seq.Inc(), 10)
	out.Topic = topic
	out.Timestamp = time.Now()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	groups := m.topics[topic]
	if len(groups) == 0 {
		m.backlog[topic] = append(m.backlog[topic], &out)
		m.mu.Unlock()
		m.published.Inc()
		return nil
	}
	queues := make([]chan *Message, 0, len(groups))
	for _, q := range groups {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	for _, q := range queues {
		cp := out
		select {
		case q <- &cp:
		case <-ctx.Done():
			return ctx.Err()
		case <-m.done:
			return ErrClosed
		}
	}
	m.published.Inc()
	return nil
}

func (m *Memory) queue(topic, group string) (chan *Message, []*Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, false
	}
	groups, ok := m.topics[topic]
	if !ok {
		groups = make(map[string]chan *Message)
		m.topics[topic] = groups
	}
	q, ok := groups[group]
	if !ok {
		q = make(chan *Message, m.cfg.Buffer)
		groups[group] = q
	}

	pending := m.backlog[topic]
	delete(m.backlog, topic)
	return q, pending, true
}

func (m *Memory) Consume(ctx context.Context, topic string, h Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, topic, h); err != nil {
		return err
	}
	co := buildConsumeOptions(opts)

	q, pending, ok := m.queue(topic, co.group)
	if !ok {
		return ErrClosed
	}

	var wg sync.WaitGroup
	if len(pending) > 0 {
		wg.Go(func() {
			for _, msg := range pending {
				select {
				case q <- msg:
				case <-ctx.Done():
					return
				}
			}
		})
	}

	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case msg := <-q:
					m.deliver(ctx, q, h, msg)
				}
			}
		})
	}

	wg.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func (m *Memory) deliver(ctx context.Context, q chan *Message, h Handler, msg *Message) {
	msg.Attempt++
	err := invoke(ctx, DriverMemory, h, msg)
	if err == nil {
		m.delivered.Inc()
		return
	}

	if msg.Attempt >= m.cfg.MaxAttempts {
		m.dropped.Inc()
		slog.WarnContext(ctx, "memory broker dropped message", "topic", msg.Topic, "id", msg.ID, "attempt", msg.Attempt, "error", err)
		return
	}

	select {
	case q <- msg:
	default:
		m.dropped.Inc()
		slog.WarnContext(ctx, "memory broker queue full, message dropped", "topic", msg.Topic, "id", msg.ID)
	}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}
