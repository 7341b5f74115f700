// ABOUTME: Line-delimited stdio transport: one request per input line, one response per output line.
// ABOUTME: Requests are handled strictly in sequence; malformed lines are logged and skipped.

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
)

// maxLoggedLine bounds how much of a malformed line is written to the log.
const maxLoggedLine = 200

// StdioTransport serves the dispatcher over a pair of byte streams.
type StdioTransport struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
	session    string
}

// NewStdioTransport creates a stdio transport for the dispatcher.
func NewStdioTransport(d *Dispatcher, logger *slog.Logger) *StdioTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &StdioTransport{
		dispatcher: d,
		logger:     logger.With("component", "stdio"),
		session:    uuid.New().String(),
	}
}

// Serve reads requests from r until EOF and writes responses to w. Each
// response is flushed before the next line is read. Cancelling ctx stops the
// loop at the next line boundary.
func (t *StdioTransport) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)

	t.logger.Info("stdio transport ready", "session", t.session)

	for lineNo := 1; ; lineNo++ {
		if ctx.Err() != nil {
			return nil
		}

		line, readErr := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			if err := t.handleLine(ctx, line, lineNo, writer); err != nil {
				return err
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				t.logger.Info("stdin closed, stopping stdio transport")
				return nil
			}
			return fmt.Errorf("reading request: %w", readErr)
		}
	}
}

// handleLine dispatches one line. Only write failures are returned.
func (t *StdioTransport) handleLine(ctx context.Context, line []byte, lineNo int, w *bufio.Writer) error {
	trimmed := bytes.TrimSpace(line)
	if trimmed[0] != '{' {
		t.logger.Warn("skipping request line that is not a JSON object",
			"line", lineNo,
			"content", truncate(trimmed, maxLoggedLine),
		)
		return nil
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		t.logger.Warn("skipping malformed request line",
			"line", lineNo,
			"error", err,
			"content", truncate(trimmed, maxLoggedLine),
		)
		return nil
	}

	ctx = WithRequestID(ctx, t.session+"/"+strconv.Itoa(lineNo))
	resp := t.dispatcher.Dispatch(ctx, &req)

	data, err := json.Marshal(resp)
	if err != nil {
		t.logger.Error("failed to encode response", "method", req.Method, "error", err)
		data, _ = json.Marshal(errorResponse(req.ID, ToolExecutionError, "Error calling tool: "+err.Error()))
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
