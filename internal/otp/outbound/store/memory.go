package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"go.uber.org/atomic"
)

const defaultShards = 32

type shard struct {
	mu      sync.Mutex
	records map[string]entity.Record
}

// Memory is the in-process store. Identities are spread over lock
// stripes so unrelated addresses never wait on each other.
type Memory struct {
	shards []*shard
	clock  clock.Clocker
	ins    instrument.Instrumentation

	size   atomic.Int64
	reaped atomic.Int64
}

func NewMemory(clk clock.Clocker, ins instrument.Instrumentation, shards int) *Memory {
	if shards <= 0 {
		shards = defaultShards
	}
	if clk == nil {
		clk = clock.New()
	}
	if ins == nil {
		ins = instrument.NewNoop()
	}

	m := &Memory{shards: make([]*shard, shards), clock: clk, ins: ins}
	for i := range m.shards {
		m.shards[i] = &shard{records: make(map[string]entity.Record)}
	}
	return m
}

func (m *Memory) shardOf(identity string) *shard {
	return m.shards[xxhash.Sum64String(identity)%uint64(len(m.shards))]
}

func (m *Memory) Put(ctx context.Context, identity, code string, maxAttempts int, ttl time.Duration) error {
	_, span := startSpan(ctx, m.ins, "Put")
	defer span.End()

	rec := entity.Record{
		Code:              code,
		RemainingAttempts: maxAttempts,
		ExpiresAt:         m.clock.Now().Add(ttl),
	}

	s := m.shardOf(identity)
	s.mu.Lock()
	if _, ok := s.records[identity]; !ok {
		m.size.Inc()
	}
	s.records[identity] = rec
	s.mu.Unlock()

	return nil
}

func (m *Memory) CheckAndConsume(ctx context.Context, identity, candidate string) (entity.CheckOutcome, error) {
	_, span := startSpan(ctx, m.ins, "CheckAndConsume")
	defer span.End()

	now := m.clock.Now()
	s := m.shardOf(identity)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identity]
	if !ok {
		return entity.CheckOutcome{Kind: entity.CheckNotFound}, nil
	}

	if rec.Expired(now) {
		m.remove(s, identity)
		return entity.CheckOutcome{Kind: entity.CheckExpired}, nil
	}

	if codeMatches(rec.Code, candidate) {
		m.remove(s, identity)
		return entity.CheckOutcome{Kind: entity.CheckSuccess}, nil
	}

	rec.RemainingAttempts--
	if rec.RemainingAttempts <= 0 {
		m.remove(s, identity)
		return entity.CheckOutcome{Kind: entity.CheckExhausted}, nil
	}

	s.records[identity] = rec
	return entity.CheckOutcome{Kind: entity.CheckMismatch, Remaining: rec.RemainingAttempts}, nil
}

// remove expects s.mu to be held.
func (m *Memory) remove(s *shard, identity string) {
	delete(s.records, identity)
	m.size.Dec()
}

// Len is the number of records held, expired ones included.
func (m *Memory) Len() int64 {
	return m.size.Load()
}

// Reap drops every expired record. It only frees memory; reads already
// treat expired records as gone.
func (m *Memory) Reap(ctx context.Context) error {
	now := m.clock.Now()
	var n int64

	for _, s := range m.shards {
		s.mu.Lock()
		for id, rec := range s.records {
			if rec.Expired(now) {
				m.remove(s, id)
				n++
			}
		}
		s.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if n > 0 {
		m.reaped.Add(n)
		slog.DebugContext(ctx, "otp store reaped expired records", "count", n, "total_reaped", m.reaped.Load())
	}
	return nil
}
