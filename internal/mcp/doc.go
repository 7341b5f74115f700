// Package mcp implements the Model Context Protocol envelope, dispatcher, and transports.
//
// # Protocol
//
// Requests and responses use a JSON-RPC-shaped envelope:
//
//	{"jsonrpc":"2.0","id":1,"method":"call_tool","params":{"name":"echo","arguments":{"msg":"hi"}}}
//	{"jsonrpc":"2.0","id":1,"result":{"content":"hi"}}
//
// Three methods are recognized: initialize, list_tools, and call_tool. The
// request id is echoed verbatim; a request without one gets a null id.
//
// # Errors
//
//	-32601  unknown method, or call_tool naming an unregistered tool
//	-32000  argument validation failure, handler error or panic
//	-32700  undecodable HTTP body (framing layer, null id)
//
// Tool lookup happens before validation, and validation failures never reach
// the handler. Handler panics are recovered by packs.Router.
//
// # Results
//
// A successful call_tool result is {"content": <string>}. Handlers returning
// a string have it passed through unchanged; any other value is JSON-encoded
// into the string.
//
// # Transports
//
//   - StdioTransport: one request per line, strictly sequential, malformed
//     lines logged and skipped with no response
//   - HTTPServer: POST /v1/initialize, /v1/list_tools, /v1/call_tool with
//     optional SSE framing, GET /health, and GET /v1/calls plus
//     GET /v1/calls/{id} when a journal is configured
//
// # Usage
//
//	d, err := mcp.NewDispatcher(mcp.Config{Registry: registry, Name: "grafana-mcp", Version: version})
//	err = mcp.NewStdioTransport(d, logger).Serve(ctx, os.Stdin, os.Stdout)
package mcp
