// Package goroutine runs background work under a shared concurrency cap so
// shutdown can wait for every task the process started.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/stacktrace"
)

// DefaultPerCPU is multiplied by NumCPU when NewManager receives a non-positive cap.
const DefaultPerCPU = 100

// Manager tracks goroutines, their errors and recovered panics.
type Manager struct {
	wg   sync.WaitGroup
	slot chan struct{}

	mu   sync.Mutex
	errs []error

	state  sync.RWMutex
	closed bool
}

// NewManager creates a Manager allowing at most limit concurrent tasks.
func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = runtime.NumCPU() * DefaultPerCPU
	}
	return &Manager{slot: make(chan struct{}, limit)}
}

// Go runs f in a new goroutine. It reports false when the manager is closed
// or the cap is reached, in which case f never runs.
func (m *Manager) Go(ctx context.Context, f func(ctx context.Context) error) bool {
	if m == nil {
		return false
	}

	m.state.RLock()
	defer m.state.RUnlock()

	if m.closed {
		slog.WarnContext(ctx, "goroutine manager closed, task dropped")
		return false
	}

	select {
	case m.slot <- struct{}{}:
	default:
		slog.WarnContext(ctx, "goroutine limit reached, task dropped", "limit", cap(m.slot))
		return false
	}

	m.wg.Go(func() {
		defer func() { <-m.slot }()
		defer m.recover(ctx)

		if ctx.Err() != nil {
			slog.WarnContext(ctx, "goroutine canceled before start", "error", ctx.Err())
			return
		}
		if err := f(ctx); err != nil {
			m.mu.Lock()
			m.errs = append(m.errs, err)
			m.mu.Unlock()
		}
	})

	return true
}

// Every runs f on each tick of interval until ctx is done. Errors from f are
// logged and the loop continues.
func (m *Manager) Every(ctx context.Context, name string, interval time.Duration, f func(ctx context.Context) error) bool {
	if interval <= 0 {
		return false
	}

	return m.Go(ctx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.InfoContext(ctx, "periodic task stopped", "task", name)
				return nil
			case <-ticker.C:
				if err := f(ctx); err != nil {
					slog.ErrorContext(ctx, "periodic task failed", "task", name, "error", err)
				}
			}
		}
	})
}

// Wait closes the manager to new work, blocks until running tasks return and
// joins their errors.
func (m *Manager) Wait() error {
	if m == nil {
		return nil
	}

	m.state.Lock()
	m.closed = true
	m.state.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}

func (m *Manager) recover(ctx context.Context) {
	rvr := recover()
	if rvr == nil {
		return
	}

	stack := debug.Stack()
	if frames := stacktrace.InternalPaths(stack); len(frames) > 0 {
		slog.ErrorContext(ctx, "panic in goroutine", "panic", rvr, "stack", frames)
		return
	}
	slog.ErrorContext(ctx, "panic in goroutine", "panic", rvr, "stack", string(stack))
}
