// Package mcp implements the Model Context Protocol (MCP) server for yamlpick.
package mcp

import (
	"context"
	"errors"
	"fmt"

	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
)

// Custom MCP error codes for yamlpick.
const (
	// ErrCodeRootNotFound indicates the workspace root is missing.
	ErrCodeRootNotFound = -32001

	// ErrCodeEditFailed indicates a replacement could not be written.
	ErrCodeEditFailed = -32002

	// ErrCodeSelectionMismatch indicates the file no longer holds the selection.
	ErrCodeSelectionMismatch = -32003

	// ErrCodeFileLocked indicates another editor holds the file.
	ErrCodeFileLocked = -32004

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32005

	// ErrCodeFileNotFound indicates a file no longer exists on disk.
	ErrCodeFileNotFound = -32006

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Sentinel errors for internal use.
var (
	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrResourceNotFound indicates the requested resource does not exist.
	ErrResourceNotFound = errors.New("resource not found")
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var pe *pickerr.PickError
	if errors.As(err, &pe) {
		return mapPickError(pe)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out.",
		}
	case errors.Is(err, context.Canceled):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request was canceled.",
		}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{
			Code:    ErrCodeMethodNotFound,
			Message: "Tool not found.",
		}
	case errors.Is(err, ErrInvalidParams):
		return &MCPError{
			Code:    ErrCodeInvalidParams,
			Message: "Invalid parameters.",
		}
	case errors.Is(err, ErrResourceNotFound):
		return &MCPError{
			Code:    ErrCodeMethodNotFound,
			Message: "Resource not found.",
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: "Internal server error.",
		}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

// NewResourceNotFoundError creates an error for unknown resources.
func NewResourceNotFoundError(uri string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Resource '%s' not found.", uri),
	}
}

// mapPickError converts a PickError to an MCPError.
func mapPickError(pe *pickerr.PickError) *MCPError {
	message := pe.Message
	if pe.Suggestion != "" {
		message = fmt.Sprintf("%s. %s", pe.Message, pe.Suggestion)
	}

	switch pe.Code {
	case pickerr.ErrCodeRootNotFound:
		return &MCPError{Code: ErrCodeRootNotFound, Message: message}
	case pickerr.ErrCodeSelectionMismatch:
		return &MCPError{Code: ErrCodeSelectionMismatch, Message: message}
	case pickerr.ErrCodeFileLocked:
		return &MCPError{Code: ErrCodeFileLocked, Message: message}
	case pickerr.ErrCodeFileNotFound:
		return &MCPError{Code: ErrCodeFileNotFound, Message: message}
	case pickerr.ErrCodeFileWrite:
		return &MCPError{Code: ErrCodeEditFailed, Message: message}
	}

	switch pe.Category {
	case pickerr.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
