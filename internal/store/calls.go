// ABOUTME: Tool-call journal store methods for recording dispatch outcomes
// ABOUTME: Records which tool ran, with what arguments, and how it ended

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendToolCall appends a new entry to the journal.
// Generates ID and CreatedAt if not set.
func (s *SQLiteStore) AppendToolCall(ctx context.Context, c *ToolCall) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	var argsJSON *string
	if len(c.Arguments) > 0 {
		str := string(c.Arguments)
		argsJSON = &str
	}

	query := `
		INSERT INTO tool_calls (call_id, request_id, tool_name, arguments_json, outcome, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		nullString(c.RequestID),
		c.ToolName,
		argsJSON,
		string(c.Outcome),
		nullString(c.Error),
		c.Duration.Milliseconds(),
		c.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting tool call: %w", err)
	}

	s.logger.Debug("journaled tool call",
		"id", c.ID,
		"tool_name", c.ToolName,
		"outcome", c.Outcome,
	)
	return nil
}

// scanToolCall scans a row into a ToolCall.
func scanToolCall(scanner interface{ Scan(dest ...any) error }) (ToolCall, error) {
	var c ToolCall
	var requestID, argsJSON, errText sql.NullString
	var outcome string
	var durationMS, createdAt int64

	if err := scanner.Scan(
		&c.ID,
		&requestID,
		&c.ToolName,
		&argsJSON,
		&outcome,
		&errText,
		&durationMS,
		&createdAt,
	); err != nil {
		return c, fmt.Errorf("scanning tool call: %w", err)
	}

	c.RequestID = requestID.String
	if argsJSON.Valid {
		c.Arguments = []byte(argsJSON.String)
	}
	c.Outcome = CallOutcome(outcome)
	c.Error = errText.String
	c.Duration = time.Duration(durationMS) * time.Millisecond
	c.CreatedAt = time.Unix(0, createdAt).UTC()
	return c, nil
}

const toolCallColumns = `call_id, request_id, tool_name, arguments_json, outcome, error, duration_ms, created_at`

const toolCallQuery = `
	SELECT ` + toolCallColumns + `
	FROM tool_calls
	WHERE (? IS NULL OR tool_name = ?)
	  AND (? IS NULL OR outcome = ?)
	  AND (? IS NULL OR created_at >= ?)
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?
`

// ListToolCalls returns journal entries matching the filter criteria.
// Results are returned newest first.
func (s *SQLiteStore) ListToolCalls(ctx context.Context, f ToolCallFilter) ([]ToolCall, error) {
	limit := normalizeLimit(f.Limit)

	var outcome *string
	if f.Outcome != nil {
		o := string(*f.Outcome)
		outcome = &o
	}
	var since *int64
	if f.Since != nil {
		n := f.Since.UTC().UnixNano()
		since = &n
	}

	rows, err := s.db.QueryContext(ctx, toolCallQuery,
		f.ToolName, f.ToolName,
		outcome, outcome,
		since, since,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying tool calls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var calls []ToolCall
	for rows.Next() {
		c, err := scanToolCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tool calls: %w", err)
	}

	if calls == nil {
		calls = []ToolCall{}
	}
	return calls, nil
}

// GetToolCall returns a single journal entry by ID.
func (s *SQLiteStore) GetToolCall(ctx context.Context, id string) (*ToolCall, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+toolCallColumns+` FROM tool_calls WHERE call_id = ?`, id)

	c, err := scanToolCall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
