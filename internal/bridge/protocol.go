// Package bridge exposes lookup and replacement to editors over
// line-delimited JSON-RPC 2.0, on stdio or a Unix socket.
//
// Each request is one JSON object on one line; each response is written as
// one line. Requests on a connection are answered in order. A request
// without an id is a notification and gets no response.
package bridge

import (
	"encoding/json"
	"errors"

	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
)

// JSON-RPC 2.0 method names.
const (
	MethodPing    = "ping"
	MethodStatus  = "status"
	MethodLookup  = "lookup"
	MethodReplace = "replace"
	MethodReindex = "reindex"
)

// Standard JSON-RPC 2.0 error codes.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Custom error codes.
const (
	ErrCodeRootNotFound      = -32001
	ErrCodeEditFailed        = -32002
	ErrCodeSelectionMismatch = -32003
	ErrCodeFileLocked        = -32004
	ErrCodeReindexFailed     = -32005
)

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// IsNotification reports whether the request carries no id.
func (r Request) IsNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

// ErrorData carries the structured error behind a JSON-RPC error.
type ErrorData struct {
	Code       string            `json:"code"`
	Suggestion string            `json:"suggestion,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements error so clients can return it directly.
func (e *Error) Error() string {
	return e.Message
}

// nullID is echoed when the request id could not be read.
var nullID = json.RawMessage("null")

// NewSuccessResponse creates a successful response.
func NewSuccessResponse(id json.RawMessage, result any) Response {
	if len(id) == 0 {
		id = nullID
	}
	return Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id json.RawMessage, code int, message string) Response {
	if len(id) == 0 {
		id = nullID
	}
	return Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
		},
		ID: id,
	}
}

// errorResponse maps err onto a JSON-RPC error. Structured errors keep
// their code and suggestion in the data member.
func errorResponse(id json.RawMessage, fallback int, err error) Response {
	resp := NewErrorResponse(id, fallback, err.Error())

	var pe *pickerr.PickError
	if !errors.As(err, &pe) {
		return resp
	}

	resp.Error.Message = pe.Message
	if pe.Cause != nil {
		resp.Error.Message += ": " + pe.Cause.Error()
	}
	resp.Error.Data = &ErrorData{
		Code:       pe.Code,
		Suggestion: pe.Suggestion,
		Details:    pe.Details,
	}

	switch pe.Code {
	case pickerr.ErrCodeInvalidInput, pickerr.ErrCodeSelectionEmpty, pickerr.ErrCodeInvalidRange:
		resp.Error.Code = ErrCodeInvalidParams
	case pickerr.ErrCodeSelectionMismatch:
		resp.Error.Code = ErrCodeSelectionMismatch
	case pickerr.ErrCodeFileLocked:
		resp.Error.Code = ErrCodeFileLocked
	case pickerr.ErrCodeRootNotFound:
		resp.Error.Code = ErrCodeRootNotFound
	}
	return resp
}

// LookupParams are the parameters for the lookup method: the currently
// selected text.
type LookupParams struct {
	Text string `json:"text"`
}

// PingResult is the response to a ping request.
type PingResult struct {
	Pong bool `json:"pong"`
}
