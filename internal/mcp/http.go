// ABOUTME: HTTP/SSE transport exposing initialize, list_tools, and call_tool as POST endpoints.
// ABOUTME: Each request is dispatched independently; SSE framing is used when the client asks for it.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/2389/grafana-mcp/internal/auth"
	"github.com/2389/grafana-mcp/internal/store"
)

// CallReader reads the tool-call journal.
type CallReader interface {
	ListToolCalls(ctx context.Context, f store.ToolCallFilter) ([]store.ToolCall, error)
	GetToolCall(ctx context.Context, id string) (*store.ToolCall, error)
}

// HTTPConfig holds configuration for the HTTP transport.
type HTTPConfig struct {
	Dispatcher *Dispatcher
	Calls      CallReader // optional; enables GET /v1/calls and /v1/calls/{id}
	AuthToken  string     // optional static bearer token
	Logger     *slog.Logger
}

// HTTPServer serves the dispatcher over HTTP.
type HTTPServer struct {
	dispatcher *Dispatcher
	calls      CallReader
	logger     *slog.Logger
	router     *chi.Mux
}

// NewHTTPServer creates the HTTP transport and its routes.
func NewHTTPServer(cfg HTTPConfig) (*HTTPServer, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &HTTPServer{
		dispatcher: cfg.Dispatcher,
		calls:      cfg.Calls,
		logger:     logger.With("component", "http"),
		router:     chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.accessLog)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Use(auth.BearerTokenMiddleware(cfg.AuthToken))
		r.Post("/initialize", s.handleMethod(MethodInitialize))
		r.Post("/list_tools", s.handleMethod(MethodListTools))
		r.Post("/call_tool", s.handleMethod(MethodCallTool))
		if s.calls != nil {
			r.Get("/calls", s.handleListCalls)
			r.Get("/calls/{id}", s.handleGetCall)
		}
	})

	return s, nil
}

// Handler exposes the root HTTP handler.
func (s *HTTPServer) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *HTTPServer) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on an existing listener until ctx is cancelled.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP transport listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP transport")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// handleMethod returns a handler for one envelope method. The path decides
// the method; whatever the body says is overridden.
func (s *HTTPServer) handleMethod(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
		if err != nil {
			s.sendFramingError(w, r, "failed to read request body")
			return
		}
		if int64(len(body)) > MaxRequestBodySize {
			s.sendFramingError(w, r, "request body too large")
			return
		}

		var req Request
		if len(strings.TrimSpace(string(body))) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				s.sendFramingError(w, r, "invalid JSON")
				return
			}
		}
		if req.Method != "" && req.Method != method {
			s.logger.Debug("overriding body method with endpoint method",
				"body_method", req.Method,
				"method", method,
			)
		}
		req.Method = method

		ctx := WithRequestID(r.Context(), correlationID(r))
		s.writeResponse(w, r, http.StatusOK, s.dispatcher.Dispatch(ctx, &req))
	}
}

// sendFramingError rejects an undecodable body before it reaches the dispatcher.
func (s *HTTPServer) sendFramingError(w http.ResponseWriter, r *http.Request, message string) {
	s.logger.Warn("rejecting request", "path", r.URL.Path, "reason", message)
	s.writeResponse(w, r, http.StatusBadRequest, errorResponse(nil, ParseError, message))
}

// writeResponse encodes resp as JSON, or as a single SSE message event when
// the client accepts text/event-stream.
func (s *HTTPServer) writeResponse(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	if wantsSSE(r) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func (s *HTTPServer) handleListCalls(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.ToolCallFilter

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
			return
		}
		f.Limit = limit
	}
	if v := q.Get("tool"); v != "" {
		f.ToolName = &v
	}
	if v := q.Get("outcome"); v != "" {
		outcome := store.CallOutcome(v)
		f.Outcome = &outcome
	}

	calls, err := s.calls.ListToolCalls(r.Context(), f)
	if err != nil {
		s.logger.Error("listing tool calls", "error", err)
		http.Error(w, `{"error":"failed to list calls"}`, http.StatusInternalServerError)
		return
	}

	out := make([]callView, 0, len(calls))
	for _, c := range calls {
		out = append(out, newCallView(c))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"calls": out}); err != nil {
		s.logger.Warn("failed to encode calls", "error", err)
	}
}

func (s *HTTPServer) handleGetCall(w http.ResponseWriter, r *http.Request) {
	call, err := s.calls.GetToolCall(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"call not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("getting tool call", "error", err)
		http.Error(w, `{"error":"failed to get call"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newCallView(*call)); err != nil {
		s.logger.Warn("failed to encode call", "error", err)
	}
}

// callView is the wire shape of a journal entry.
type callView struct {
	ID         string          `json:"id"`
	RequestID  string          `json:"request_id,omitempty"`
	Tool       string          `json:"tool"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	Outcome    string          `json:"outcome"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newCallView(c store.ToolCall) callView {
	return callView{
		ID:         c.ID,
		RequestID:  c.RequestID,
		Tool:       c.ToolName,
		Arguments:  c.Arguments,
		Outcome:    string(c.Outcome),
		Error:      c.Error,
		DurationMS: c.Duration.Milliseconds(),
		CreatedAt:  c.CreatedAt,
	}
}

// accessLog writes one structured line per request.
func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
			"remote", r.RemoteAddr,
		)
	})
}

func wantsSSE(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

// correlationID prefers the chi request id and falls back to a fresh UUID.
func correlationID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.New().String()
}
