// ABOUTME: Resolves envelope methods to registry operations and tool handlers.
// ABOUTME: Normalizes every outcome into a Response; handler failures never escape.

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/grafana-mcp/internal/packs"
	"github.com/2389/grafana-mcp/internal/schema"
	"github.com/2389/grafana-mcp/internal/store"
)

// Recorder journals tool calls. Recording failures are logged and never
// change the response.
type Recorder interface {
	AppendToolCall(ctx context.Context, call *store.ToolCall) error
}

// Config holds configuration for the Dispatcher.
type Config struct {
	Registry *packs.Registry
	Router   *packs.Router
	Name     string
	Version  string
	Logger   *slog.Logger
	Recorder Recorder // optional
}

// Dispatcher maps requests onto the registry. It holds no mutable state and
// is safe for concurrent use once the registry is frozen.
type Dispatcher struct {
	registry *packs.Registry
	router   *packs.Router
	info     ServerInfo
	logger   *slog.Logger
	recorder Recorder
}

// NewDispatcher creates a Dispatcher with the given configuration.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if !cfg.Registry.Frozen() {
		return nil, errors.New("registry must be frozen before dispatching")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := cfg.Router
	if router == nil {
		router = packs.NewRouter(packs.RouterConfig{Logger: logger})
	}

	return &Dispatcher{
		registry: cfg.Registry,
		router:   router,
		info:     ServerInfo{Name: cfg.Name, Version: cfg.Version},
		logger:   logger,
		recorder: cfg.Recorder,
	}, nil
}

type requestIDKey struct{}

// WithRequestID attaches a transport correlation id used in logs and the journal.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

// Dispatch handles one request and always returns a response carrying the
// request's id.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case MethodInitialize:
		return resultResponse(req.ID, InitializeResult{ServerInfo: d.info})
	case MethodListTools:
		return resultResponse(req.ID, ListToolsResult{Tools: d.registry.List()})
	case MethodCallTool:
		return d.callTool(ctx, req)
	default:
		d.logger.Debug("method not found", "method", req.Method)
		return errorResponse(req.ID, MethodNotFound, "Method not found: "+req.Method)
	}
}

// callTool runs the resolve, validate, execute sequence. Lookup happens
// before argument validation so an unknown tool is always -32601.
func (d *Dispatcher) callTool(ctx context.Context, req *Request) *Response {
	var params CallToolParams
	if hasValue(req.Params) {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, ToolExecutionError, "Error calling tool: invalid params: "+err.Error())
		}
	}

	tool, ok := d.registry.Lookup(params.Name)
	if !ok {
		d.logger.Debug("tool not found", "tool_name", params.Name)
		return errorResponse(req.ID, MethodNotFound, "Tool not found: "+params.Name)
	}

	requestID := requestIDFrom(ctx)
	start := time.Now()

	content, outcome, err := d.execute(ctx, tool, params.Arguments, requestID)
	d.record(ctx, &store.ToolCall{
		RequestID: requestID,
		ToolName:  tool.Name,
		Arguments: params.Arguments,
		Outcome:   outcome,
		Error:     errText(err),
		Duration:  time.Since(start),
	})

	if err != nil {
		return errorResponse(req.ID, ToolExecutionError, "Error calling tool: "+err.Error())
	}
	return resultResponse(req.ID, CallToolResult{Content: content})
}

func (d *Dispatcher) execute(ctx context.Context, tool *packs.Tool, rawArgs json.RawMessage, requestID string) (string, store.CallOutcome, error) {
	raw := map[string]any{}
	if hasValue(rawArgs) {
		if err := json.Unmarshal(rawArgs, &raw); err != nil {
			return "", store.OutcomeInvalid, fmt.Errorf("%w: arguments must be an object", schema.ErrValidation)
		}
	}

	args, err := tool.Schema.Validate(raw)
	if err != nil {
		d.logger.Info("tool arguments rejected",
			"tool_name", tool.Name,
			"request_id", requestID,
			"error", err,
		)
		return "", store.OutcomeInvalid, err
	}

	result, err := d.router.Execute(ctx, tool, args, requestID)
	if err != nil {
		return "", store.OutcomeError, err
	}

	content, err := stringify(result)
	if err != nil {
		d.logger.Error("tool result not serializable", "tool_name", tool.Name, "request_id", requestID, "error", err)
		return "", store.OutcomeError, err
	}
	return content, store.OutcomeOK, nil
}

func (d *Dispatcher) record(ctx context.Context, call *store.ToolCall) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.AppendToolCall(context.WithoutCancel(ctx), call); err != nil {
		d.logger.Warn("failed to journal tool call", "tool_name", call.ToolName, "error", err)
	}
}

// stringify returns string results unchanged and JSON-encodes anything else.
// HTML characters are left as-is so titles like "A & B" survive verbatim.
func stringify(result any) (string, error) {
	if s, ok := result.(string); ok {
		return s, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func hasValue(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
