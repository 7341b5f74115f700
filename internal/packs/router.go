// ABOUTME: Executes tool handlers through a uniform asynchronous completion path.
// ABOUTME: Recovers handler panics so one misbehaving tool cannot take down a transport.

package packs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/2389/grafana-mcp/internal/schema"
)

// ErrHandlerPanic indicates a tool handler panicked.
var ErrHandlerPanic = errors.New("tool handler panicked")

// ErrHandlerExited indicates a tool handler stopped its goroutine without
// returning, e.g. via runtime.Goexit.
var ErrHandlerExited = errors.New("tool handler exited without returning")

// Router runs tool handlers and reports their outcome.
type Router struct {
	logger *slog.Logger
}

// RouterConfig contains configuration options for the Router.
type RouterConfig struct {
	Logger *slog.Logger
}

// NewRouter creates a new Router with the given configuration.
func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{logger: logger}
}

// completion is the outcome of one handler invocation.
type completion struct {
	result any
	err    error
}

// Execute invokes the tool's handler on its own goroutine and waits for it
// to complete. There is no timeout here; handlers that block on I/O own
// their deadlines.
func (r *Router) Execute(ctx context.Context, tool *Tool, args schema.Args, requestID string) (any, error) {
	r.logger.Info("→ dispatching to tool",
		"tool_name", tool.Name,
		"pack_id", tool.PackID,
		"request_id", requestID,
	)
	start := time.Now()

	done := make(chan completion, 1)
	go func() {
		var c completion
		returned := false
		// Exactly one completion is sent, whether the handler returns,
		// panics, or calls runtime.Goexit.
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("tool handler panicked",
					"tool_name", tool.Name,
					"request_id", requestID,
					"panic", p,
					"stack", string(debug.Stack()),
				)
				c = completion{err: fmt.Errorf("%w: %v", ErrHandlerPanic, p)}
			} else if !returned {
				c = completion{err: ErrHandlerExited}
			}
			done <- c
		}()
		c.result, c.err = tool.Handler.Call(ctx, args)
		returned = true
	}()

	c := <-done
	if c.err != nil {
		r.logger.Warn("tool error",
			"tool_name", tool.Name,
			"request_id", requestID,
			"duration", time.Since(start),
			"error", c.err,
		)
		return nil, c.err
	}

	r.logger.Info("← tool responded",
		"tool_name", tool.Name,
		"request_id", requestID,
		"duration", time.Since(start),
	)
	return c.result, nil
}
