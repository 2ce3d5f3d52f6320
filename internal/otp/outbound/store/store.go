// Package store keeps pending OTP records keyed by email address.
//
// Both drivers implement the same contract: Put replaces whatever was
// stored for the identity, and CheckAndConsume settles one verification
// attempt atomically. Expiry is evaluated lazily on read.
package store

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

var (
	ErrUnknownDriver = errors.New("store: unknown driver")
	ErrRedisRequired = errors.New("store: redis client is required")
)

type Store interface {
	Put(ctx context.Context, identity, code string, maxAttempts int, ttl time.Duration) error
	CheckAndConsume(ctx context.Context, identity, candidate string) (entity.CheckOutcome, error)
}

type Options struct {
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	// Shards is the memory driver's lock stripe count.
	Shards int
	Redis  redis.UniversalClient
	// Prefix namespaces redis keys.
	Prefix string
}

// New returns the store for driver; an empty driver means memory.
func New(driver string, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemory(opts.Clock, opts.Instrument, opts.Shards), nil
	case DriverRedis:
		if opts.Redis == nil {
			return nil, ErrRedisRequired
		}
		return NewRedis(opts.Redis, opts.Clock, opts.Instrument, opts.Prefix), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

func codeMatches(code, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(code), []byte(candidate)) == 1
}

func startSpan(ctx context.Context, ins instrument.Instrumentation, name string) (context.Context, trace.Span) {
	return ins.Tracer("otp.outbound.store").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
