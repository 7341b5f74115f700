// Package packs provides the tool registry and handler execution.
//
// # Overview
//
// Tools are named capabilities with a parameter schema and a handler. Related
// tools are grouped into packs (search, dashboard, snapshot, ...) so a whole
// category can be disabled from configuration.
//
// # Architecture
//
//   - Registry: holds tools in registration order, frozen before serving
//   - Router: invokes a handler and waits for it, recovering panics
//   - Handlers: plain functions or typed functions over a parameter record
//
// # Registration
//
// Registration happens once at startup, on a single goroutine:
//
//	registry := packs.NewRegistry(logger)
//	builtins.RegisterAll(registry, client, disabled)
//	registry.Freeze()
//
// Names are unique; a duplicate fails with ErrToolAlreadyRegistered. A typed
// handler whose record cannot hold the schema's fields fails with
// ErrSchemaMismatch. After Freeze the registry is read without locks.
//
// # Execution
//
//	result, err := router.Execute(ctx, tool, args, requestID)
package packs
