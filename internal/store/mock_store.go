// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu    sync.RWMutex
	calls []ToolCall
	err   error // returned by AppendToolCall when set
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// FailAppends makes every later AppendToolCall return err.
func (m *MockStore) FailAppends(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// AppendToolCall records a tool call in memory.
func (m *MockStore) AppendToolCall(ctx context.Context, c *ToolCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	// Make a copy to avoid external modification
	stored := *c
	stored.Arguments = append([]byte(nil), c.Arguments...)
	m.calls = append(m.calls, stored)
	return nil
}

// ListToolCalls returns matching calls newest first.
func (m *MockStore) ListToolCalls(ctx context.Context, f ToolCallFilter) ([]ToolCall, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []ToolCall{}
	for i := len(m.calls) - 1; i >= 0; i-- {
		c := m.calls[i]
		if f.ToolName != nil && c.ToolName != *f.ToolName {
			continue
		}
		if f.Outcome != nil && c.Outcome != *f.Outcome {
			continue
		}
		if f.Since != nil && c.CreatedAt.Before(*f.Since) {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit := normalizeLimit(f.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetToolCall returns a call by ID.
func (m *MockStore) GetToolCall(ctx context.Context, id string) (*ToolCall, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.calls {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}

// Compile-time interface checks.
var (
	_ Store = (*MockStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
