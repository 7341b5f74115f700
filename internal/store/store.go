// ABOUTME: Store interface and data types for the tool-call journal
// ABOUTME: Defines ToolCall records, list filters, and the Store interface

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// CallOutcome classifies how a tool call ended.
type CallOutcome string

const (
	OutcomeOK      CallOutcome = "ok"      // handler returned a result
	OutcomeInvalid CallOutcome = "invalid" // arguments failed validation
	OutcomeError   CallOutcome = "error"   // handler failed or panicked
)

// ToolCall is one journaled call_tool request that resolved to a tool.
type ToolCall struct {
	ID        string // UUID v4
	RequestID string // transport correlation id
	ToolName  string
	Arguments json.RawMessage // raw arguments as received
	Outcome   CallOutcome
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

// ToolCallFilter specifies filtering options for listing tool calls.
type ToolCallFilter struct {
	ToolName *string
	Outcome  *CallOutcome
	Since    *time.Time
	Limit    int // max results (default 100, max 1000)
}

// Store is the tool-call journal.
type Store interface {
	AppendToolCall(ctx context.Context, call *ToolCall) error
	ListToolCalls(ctx context.Context, f ToolCallFilter) ([]ToolCall, error)
	GetToolCall(ctx context.Context, id string) (*ToolCall, error)
	Close() error
}

// normalizeLimit applies default (100) and cap (1000) to a list limit.
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}
