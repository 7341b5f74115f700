// ABOUTME: JSON-RPC-shaped request/response envelope shared by every transport.
// ABOUTME: Defines method names, error codes, and the result payload types.

package mcp

import (
	"encoding/json"

	"github.com/2389/grafana-mcp/internal/packs"
)

// MaxRequestBodySize is the maximum allowed size for HTTP request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// Version of the envelope protocol written on every response.
const JSONRPCVersion = "2.0"

// Methods recognized by the dispatcher.
const (
	MethodInitialize = "initialize"
	MethodListTools  = "list_tools"
	MethodCallTool   = "call_tool"
)

// Error codes
const (
	ParseError         = -32700 // transport framing only
	MethodNotFound     = -32601
	ToolExecutionError = -32000
)

// Request is the envelope every transport decodes. The id is kept raw so it
// can be echoed byte for byte.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response carries exactly one of Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the failure half of a Response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ServerInfo identifies the server in initialize results.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult is the result of initialize.
type InitializeResult struct {
	ServerInfo ServerInfo `json:"server_info"`
}

// ListToolsResult is the result of list_tools.
type ListToolsResult struct {
	Tools []packs.ToolInfo `json:"tools"`
}

// CallToolParams are the params of call_tool.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult is the result of a successful call_tool. Content is always
// a string: non-string handler results are JSON-encoded into it.
type CallToolResult struct {
	Content string `json:"content"`
}

func resultResponse(id json.RawMessage, result any) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      echoID(id),
		Result:  result,
	}
}

func errorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      echoID(id),
		Error:   &Error{Code: code, Message: message},
	}
}

// echoID returns the request id unchanged, or null when the request had none.
func echoID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}
