package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/gotp/internal/pkg/stacktrace"
)

// invoke runs h and turns a panic into an error so the driver redelivers.
func invoke(ctx context.Context, driver string, h Handler, msg *Message) (err error) {
	defer func() {
		rvr := recover()
		if rvr == nil {
			return
		}

		stack := debug.Stack()
		if frames := stacktrace.InternalPaths(stack); len(frames) > 0 {
			slog.ErrorContext(ctx, "panic in message handler", "driver", driver, "topic", msg.Topic, "panic", rvr, "stack", frames)
		} else {
			slog.ErrorContext(ctx, "panic in message handler", "driver", driver, "topic", msg.Topic, "panic", rvr, "stack", string(stack))
		}
		err = fmt.Errorf("messaging: %s handler panic: %v", driver, rvr)
	}()

	return h(ctx, msg)
}
