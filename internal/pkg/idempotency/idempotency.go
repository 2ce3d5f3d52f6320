// Package idempotency guards side effects that may be triggered more than once
// for the same key, such as a broker message redelivered after the handler
// already succeeded.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInProgress = errors.New("idempotency: operation already in progress")
	ErrCompleted  = errors.New("idempotency: operation already completed")
	ErrInvalid    = errors.New("idempotency: invalid state")
)

type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

func (s State) String() string {
	return string(s)
}

const (
	defaultPrefix       = "idempotency:"
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

type Option func(*Tracker)

func WithPrefix(prefix string) Option {
	return func(t *Tracker) {
		if prefix != "" {
			t.prefix = prefix
		}
	}
}

// WithLockDuration bounds how long a crashed holder blocks the key.
func WithLockDuration(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.lock = d
		}
	}
}

// WithStateTTL sets how long a completed key is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.ttl = d
		}
	}
}

// Tracker records per-key progress in redis.
type Tracker struct {
	client redis.UniversalClient
	prefix string
	lock   time.Duration
	ttl    time.Duration
}

func New(client redis.UniversalClient, opts ...Option) *Tracker {
	t := &Tracker{
		client: client,
		prefix: defaultPrefix,
		lock:   defaultLockDuration,
		ttl:    defaultStateTTL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Acquire claims key. StateNone means the caller now owns it.
func (t *Tracker) Acquire(ctx context.Context, key string) (State, error) {
	fk := t.prefix + key

	for range 2 {
		ok, err := t.client.SetNX(ctx, fk, StateInProgress.String(), t.lock).Result()
		if err != nil {
			return StateNone, err
		}
		if ok {
			return StateNone, nil
		}

		v, err := t.client.Get(ctx, fk).Result()
		if errors.Is(err, redis.Nil) {
			// released between SETNX and GET
			continue
		}
		if err != nil {
			return StateNone, err
		}

		switch State(v) {
		case StateInProgress:
			return StateInProgress, nil
		case StateCompleted:
			return StateCompleted, nil
		default:
			return StateNone, ErrInvalid
		}
	}

	return StateNone, ErrInProgress
}

func (t *Tracker) Complete(ctx context.Context, key string) error {
	return t.client.Set(ctx, t.prefix+key, StateCompleted.String(), t.ttl).Err()
}

// Release forgets key so a later attempt can run again.
func (t *Tracker) Release(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.prefix+key).Err()
}

// Exec runs fn at most once successfully per key. A failing fn releases the
// key and its error is returned unchanged.
func (t *Tracker) Exec(ctx context.Context, key string, fn func(context.Context) error) error {
	state, err := t.Acquire(ctx, key)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrInProgress
	case StateCompleted:
		return ErrCompleted
	}

	if err := fn(ctx); err != nil {
		if relErr := t.Release(ctx, key); relErr != nil {
			return errors.Join(err, relErr)
		}
		return err
	}

	return t.Complete(ctx, key)
}
