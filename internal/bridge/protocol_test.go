package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
)

func TestRequest_IsNotification(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{`{"jsonrpc":"2.0","method":"ping","id":1}`, false},
		{`{"jsonrpc":"2.0","method":"ping","id":"a"}`, false},
		{`{"jsonrpc":"2.0","method":"ping"}`, true},
		{`{"jsonrpc":"2.0","method":"ping","id":null}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var req Request
			require.NoError(t, json.Unmarshal([]byte(tt.line), &req))
			assert.Equal(t, tt.want, req.IsNotification())
		})
	}
}

func TestResponses_EchoID(t *testing.T) {
	resp := NewSuccessResponse(json.RawMessage(`7`), PingResult{Pong: true})
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","result":{"pong":true},"id":7}`, string(data))

	resp = NewErrorResponse(nil, ErrCodeParseError, "bad")
	data, err = json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":-32700,"message":"bad"},"id":null}`, string(data))
}

func TestErrorResponse_MapsStructuredErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error keeps fallback", errors.New("boom"), ErrCodeEditFailed},
		{"invalid input", pickerr.ValidationError("path is required", nil), ErrCodeInvalidParams},
		{"empty selection", pickerr.New(pickerr.ErrCodeSelectionEmpty, "selection is empty", nil), ErrCodeInvalidParams},
		{"invalid range", pickerr.New(pickerr.ErrCodeInvalidRange, "out of range", nil), ErrCodeInvalidParams},
		{"mismatch", pickerr.New(pickerr.ErrCodeSelectionMismatch, "changed", nil), ErrCodeSelectionMismatch},
		{"locked", pickerr.New(pickerr.ErrCodeFileLocked, "locked", nil), ErrCodeFileLocked},
		{"root", pickerr.New(pickerr.ErrCodeRootNotFound, "no root", nil), ErrCodeRootNotFound},
		{"write", pickerr.WriteError("a.txt", errors.New("disk full")), ErrCodeEditFailed},
		{"wrapped", fmt.Errorf("outer: %w", pickerr.New(pickerr.ErrCodeFileLocked, "locked", nil)), ErrCodeFileLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := errorResponse(json.RawMessage(`1`), ErrCodeEditFailed, tt.err)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.want, resp.Error.Code)
		})
	}
}

func TestErrorResponse_CarriesData(t *testing.T) {
	err := pickerr.WriteError("a.txt", errors.New("disk full")).
		WithSuggestion("free some space")

	resp := errorResponse(json.RawMessage(`1`), ErrCodeEditFailed, err)

	require.NotNil(t, resp.Error.Data)
	assert.Equal(t, pickerr.ErrCodeFileWrite, resp.Error.Data.Code)
	assert.Equal(t, "free some space", resp.Error.Data.Suggestion)
	assert.Equal(t, "a.txt", resp.Error.Data.Details["path"])
	assert.Equal(t, "cannot write a.txt: disk full", resp.Error.Message)
}
