package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/yamlpick/internal/config"
	"github.com/Aman-CERP/yamlpick/internal/edit"
	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
	"github.com/Aman-CERP/yamlpick/internal/index"
	"github.com/Aman-CERP/yamlpick/internal/service"
)

// fakeHandler records calls and returns canned answers.
type fakeHandler struct {
	mu         sync.Mutex
	lookups    []string
	replaces   []service.ReplaceRequest
	replaceErr error
	reindexErr error
}

func (f *fakeHandler) Lookup(text string) service.LookupResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, text)
	if text == "Welcome" {
		return service.LookupResult{Found: true, Paths: []string{"home.title", "nav.home"}, Generation: 2}
	}
	return service.LookupResult{Paths: []string{}, Generation: 2}
}

func (f *fakeHandler) Replace(req service.ReplaceRequest) (*edit.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaces = append(f.replaces, req)
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}
	return &edit.Result{File: req.File, Offset: req.Offset, Replaced: req.Text, Inserted: req.Path}, nil
}

func (f *fakeHandler) Reindex(ctx context.Context) (*index.Result, error) {
	if f.reindexErr != nil {
		return nil, f.reindexErr
	}
	return &index.Result{Generation: 3, Files: 2, Indexed: 2}, nil
}

func (f *fakeHandler) Status() service.Status {
	return service.Status{Running: true, PID: os.Getpid(), Root: "/work"}
}

// serveLines runs one stdio-style session and returns the decoded responses.
func serveLines(t *testing.T, h RequestHandler, lines ...string) []map[string]any {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	out := &bytes.Buffer{}

	err := NewServer(h).Serve(context.Background(), in, out)
	require.NoError(t, err)

	var responses []map[string]any
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m), scanner.Text())
		responses = append(responses, m)
	}
	return responses
}

func errorCode(t *testing.T, resp map[string]any) int {
	t.Helper()
	e, ok := resp["error"].(map[string]any)
	require.True(t, ok, "expected an error response, got %v", resp)
	return int(e["code"].(float64))
}

func TestServe_Ping(t *testing.T) {
	responses := serveLines(t, &fakeHandler{}, `{"jsonrpc":"2.0","method":"ping","id":1}`)

	require.Len(t, responses, 1)
	assert.Equal(t, "2.0", responses[0]["jsonrpc"])
	assert.Equal(t, float64(1), responses[0]["id"])
	assert.Equal(t, map[string]any{"pong": true}, responses[0]["result"])
}

func TestServe_LookupHitAndMiss(t *testing.T) {
	// Given: a handler that knows "Welcome"
	h := &fakeHandler{}

	// When: the editor reports two selections
	responses := serveLines(t, h,
		`{"jsonrpc":"2.0","method":"lookup","params":{"text":"Welcome"},"id":"a"}`,
		`{"jsonrpc":"2.0","method":"lookup","params":{"text":"Unknown"},"id":"b"}`,
	)

	// Then: responses arrive in order with the matching ids
	require.Len(t, responses, 2)
	assert.Equal(t, "a", responses[0]["id"])
	hit := responses[0]["result"].(map[string]any)
	assert.Equal(t, true, hit["found"])
	assert.Equal(t, []any{"home.title", "nav.home"}, hit["paths"])

	assert.Equal(t, "b", responses[1]["id"])
	miss := responses[1]["result"].(map[string]any)
	assert.Equal(t, false, miss["found"])
	assert.Equal(t, []any{}, miss["paths"])

	assert.Equal(t, []string{"Welcome", "Unknown"}, h.lookups)
}

func TestServe_NotificationGetsNoResponse(t *testing.T) {
	h := &fakeHandler{}

	responses := serveLines(t, h,
		`{"jsonrpc":"2.0","method":"lookup","params":{"text":"Welcome"}}`,
		``,
		`{"jsonrpc":"2.0","method":"ping","id":2}`,
	)

	require.Len(t, responses, 1)
	assert.Equal(t, float64(2), responses[0]["id"])
	assert.Equal(t, []string{"Welcome"}, h.lookups)
}

func TestServe_Replace(t *testing.T) {
	h := &fakeHandler{}

	responses := serveLines(t, h,
		`{"jsonrpc":"2.0","method":"replace","params":{"file":"a.vue","offset":4,"length":7,"text":"Welcome","path":"home.title"},"id":1}`)

	require.Len(t, responses, 1)
	result := responses[0]["result"].(map[string]any)
	assert.Equal(t, "home.title", result["inserted"])
	require.Len(t, h.replaces, 1)
	assert.Equal(t, service.ReplaceRequest{File: "a.vue", Offset: 4, Length: 7, Text: "Welcome", Path: "home.title"}, h.replaces[0])
}

func TestServe_ReplaceErrorMapping(t *testing.T) {
	h := &fakeHandler{replaceErr: pickerr.New(pickerr.ErrCodeSelectionMismatch, "selection changed", nil)}

	responses := serveLines(t, h,
		`{"jsonrpc":"2.0","method":"replace","params":{"file":"a","text":"x","path":"p"},"id":1}`)

	require.Len(t, responses, 1)
	assert.Equal(t, ErrCodeSelectionMismatch, errorCode(t, responses[0]))
	data := responses[0]["error"].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, pickerr.ErrCodeSelectionMismatch, data["code"])
}

func TestServe_Reindex(t *testing.T) {
	responses := serveLines(t, &fakeHandler{}, `{"jsonrpc":"2.0","method":"reindex","id":1}`)

	require.Len(t, responses, 1)
	result := responses[0]["result"].(map[string]any)
	assert.Equal(t, float64(3), result["generation"])

	responses = serveLines(t, &fakeHandler{reindexErr: errors.New("scan failed")},
		`{"jsonrpc":"2.0","method":"reindex","id":1}`)
	assert.Equal(t, ErrCodeReindexFailed, errorCode(t, responses[0]))
}

func TestServe_Status(t *testing.T) {
	responses := serveLines(t, &fakeHandler{}, `{"jsonrpc":"2.0","method":"status","id":1}`)

	result := responses[0]["result"].(map[string]any)
	assert.Equal(t, true, result["running"])
	assert.Equal(t, "/work", result["root"])
}

func TestServe_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		code int
	}{
		{"parse error", `{not json`, ErrCodeParseError},
		{"wrong version", `{"jsonrpc":"1.0","method":"ping","id":1}`, ErrCodeInvalidRequest},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, ErrCodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","method":"search","id":1}`, ErrCodeMethodNotFound},
		{"bad params", `{"jsonrpc":"2.0","method":"lookup","params":{"text":1},"id":1}`, ErrCodeInvalidParams},
		{"unknown param", `{"jsonrpc":"2.0","method":"lookup","params":{"query":"x"},"id":1}`, ErrCodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := serveLines(t, &fakeHandler{}, tt.line)
			require.Len(t, responses, 1)
			assert.Equal(t, tt.code, errorCode(t, responses[0]))
		})
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	// Given: an input that never ends
	r, w := io.Pipe()
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- NewServer(&fakeHandler{}).Serve(ctx, r, io.Discard)
	}()

	// When: the context is cancelled
	cancel()

	// Then: Serve returns promptly
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop")
	}
}

func TestServe_WithRealService(t *testing.T) {
	// Given: a workspace and a source file holding the selected text
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "en.yaml"), []byte("home:\n  title: Welcome\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "App.vue"), []byte("<h1>Welcome</h1>\n"), 0o644))

	svc, err := service.NewForRoot(root, config.NewConfig())
	require.NoError(t, err)

	// When: reindexing, looking up and replacing over the protocol
	responses := serveLines(t, svc,
		`{"jsonrpc":"2.0","method":"reindex","id":1}`,
		`{"jsonrpc":"2.0","method":"lookup","params":{"text":"Welcome"},"id":2}`,
		`{"jsonrpc":"2.0","method":"replace","params":{"file":"App.vue","offset":4,"length":7,"text":"Welcome","path":"home.title"},"id":3}`,
	)

	// Then: the file now references the key path
	require.Len(t, responses, 3)
	lookup := responses[1]["result"].(map[string]any)
	assert.Equal(t, []any{"home.title"}, lookup["paths"])

	data, err := os.ReadFile(filepath.Join(root, "App.vue"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>home.title</h1>\n", string(data))
}
