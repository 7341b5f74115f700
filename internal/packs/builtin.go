// ABOUTME: Tool, pack, and handler types for in-process tools.
// ABOUTME: Typed handlers decode validated arguments into a parameter record.

package packs

import (
	"context"
	"reflect"

	"github.com/2389/grafana-mcp/internal/schema"
)

// Handler executes a tool with validated arguments.
type Handler interface {
	Call(ctx context.Context, args schema.Args) (any, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, args schema.Args) (any, error)

// Call implements Handler.
func (f HandlerFunc) Call(ctx context.Context, args schema.Args) (any, error) {
	return f(ctx, args)
}

// ParamBinder is implemented by handlers that decode their arguments into a
// Go record. The registry reconciles that record with the tool's schema.
type ParamBinder interface {
	ParamType() reflect.Type
}

type typedHandler[P any] struct {
	fn func(context.Context, P) (any, error)
}

// Typed wraps fn so that validated arguments are decoded into P before the call.
func Typed[P any](fn func(context.Context, P) (any, error)) Handler {
	return typedHandler[P]{fn: fn}
}

func (h typedHandler[P]) Call(ctx context.Context, args schema.Args) (any, error) {
	var params P
	if err := args.Decode(&params); err != nil {
		return nil, err
	}
	return h.fn(ctx, params)
}

func (h typedHandler[P]) ParamType() reflect.Type {
	return reflect.TypeFor[P]()
}

// Tool is a named, schema-described capability. Tools are immutable once
// registered.
type Tool struct {
	Name        string
	Description string
	Schema      *schema.Schema
	Handler     Handler
	PackID      string // set by RegisterPack
}

// NewTool builds a tool whose parameter record describes its own schema.
func NewTool[P schema.Describer](name, description string, fn func(context.Context, P) (any, error)) *Tool {
	var zero P
	return &Tool{
		Name:        name,
		Description: description,
		Schema:      zero.Describe(),
		Handler:     Typed(fn),
	}
}

// ToolInfo is the discovery descriptor of a tool.
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema *schema.Schema `json:"input_schema"`
}

// Info returns the tool's discovery descriptor.
func (t *Tool) Info() ToolInfo {
	return ToolInfo{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.Schema,
	}
}

// Pack is a category of tools registered, and disabled, as a unit.
type Pack struct {
	ID    string
	Tools []*Tool
}
