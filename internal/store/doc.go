// Package store provides the optional tool-call journal using SQLite.
//
// Every call_tool request that resolves to a registered tool can be recorded
// with its arguments, outcome, error text, and duration. The journal is
// enabled by setting database.path; it is read back through the calls CLI
// command and the GET /v1/calls endpoint.
//
// SQLiteStore uses the pure-Go modernc.org/sqlite driver in WAL mode. The
// schema is created on open and migrations are idempotent. MockStore is an
// in-memory implementation for tests.
//
// # Usage
//
//	s, err := store.NewSQLiteStore(cfg.Database.Path)
//	defer s.Close()
//
//	err = s.AppendToolCall(ctx, &store.ToolCall{ToolName: "search_dashboards", Outcome: store.OutcomeOK})
//	calls, err := s.ListToolCalls(ctx, store.ToolCallFilter{Limit: 20})
package store
