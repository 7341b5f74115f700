// ABOUTME: Registry of tools keyed by name, populated at startup then frozen.
// ABOUTME: Lookups after Freeze are lock-free since the registry never mutates again.

package packs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/2389/grafana-mcp/internal/schema"
)

// ErrToolAlreadyRegistered indicates a tool with the same name exists.
var ErrToolAlreadyRegistered = errors.New("tool already registered")

// ErrEmptyName indicates a tool was registered without a name.
var ErrEmptyName = errors.New("tool name is empty")

// ErrNilHandler indicates a tool was registered without a handler.
var ErrNilHandler = errors.New("tool handler is nil")

// ErrSchemaMismatch indicates a typed handler's parameter record cannot hold
// the arguments its schema accepts.
var ErrSchemaMismatch = errors.New("schema does not match handler parameters")

// ErrRegistryFrozen indicates registration was attempted after Freeze.
var ErrRegistryFrozen = errors.New("registry is frozen")

// Registry holds the server's tools in registration order.
type Registry struct {
	mu     sync.Mutex // serializes registration
	frozen atomic.Bool
	tools  map[string]*Tool
	order  []*Tool
	logger *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: logger,
	}
}

// Register adds a single tool. A nil schema is treated as an empty object.
func (r *Registry) Register(tool *Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLocked(tool, nil); err != nil {
		return err
	}
	r.addLocked(tool)

	r.logger.Debug("tool registered", "tool_name", tool.Name, "total_tools", len(r.order))
	return nil
}

// RegisterPack adds every tool in the pack. Nothing is registered if any
// tool fails the checks.
func (r *Registry) RegisterPack(pack *Pack) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(pack.Tools))
	for _, tool := range pack.Tools {
		if err := r.checkLocked(tool, seen); err != nil {
			return fmt.Errorf("pack '%s': %w", pack.ID, err)
		}
		seen[tool.Name] = true
	}

	for _, tool := range pack.Tools {
		tool.PackID = pack.ID
		r.addLocked(tool)
	}

	r.logger.Info("=== PACK REGISTERED ===",
		"pack_id", pack.ID,
		"tool_count", len(pack.Tools),
		"total_tools", len(r.order),
	)
	return nil
}

// checkLocked validates a tool for registration. pending holds names from
// the same batch that are not yet in the registry.
func (r *Registry) checkLocked(tool *Tool, pending map[string]bool) error {
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}
	if tool == nil || tool.Name == "" {
		return ErrEmptyName
	}
	if tool.Handler == nil {
		return fmt.Errorf("%w: tool '%s'", ErrNilHandler, tool.Name)
	}
	if _, exists := r.tools[tool.Name]; exists || pending[tool.Name] {
		return fmt.Errorf("%w: tool '%s'", ErrToolAlreadyRegistered, tool.Name)
	}
	if tool.Schema == nil {
		tool.Schema = schema.Object()
	}
	if binder, ok := tool.Handler.(ParamBinder); ok {
		if err := tool.Schema.Bind(binder.ParamType()); err != nil {
			return fmt.Errorf("%w: tool '%s': %v", ErrSchemaMismatch, tool.Name, err)
		}
	}
	return nil
}

func (r *Registry) addLocked(tool *Tool) {
	r.tools[tool.Name] = tool
	r.order = append(r.order, tool)
}

// Freeze ends registration. Every later Register call fails.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Swap(true) {
		return
	}
	r.logger.Info("registry frozen", "total_tools", len(r.order))
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Lookup returns the named tool. An absent name is a normal outcome.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns discovery descriptors for all tools in registration order.
func (r *Registry) List() []ToolInfo {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	infos := make([]ToolInfo, 0, len(r.order))
	for _, tool := range r.order {
		infos = append(infos, tool.Info())
	}
	return infos
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	out := make([]*Tool, len(r.order))
	copy(out, r.order)
	return out
}
