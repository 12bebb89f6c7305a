package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Aman-CERP/yamlpick/internal/edit"
	"github.com/Aman-CERP/yamlpick/internal/index"
	"github.com/Aman-CERP/yamlpick/internal/service"
)

// DefaultTimeout bounds one client call.
const DefaultTimeout = 30 * time.Second

// Client talks to a bridge listening on a Unix socket. Each call uses its
// own connection.
type Client struct {
	socketPath string
	timeout    time.Duration
	requestID  atomic.Uint64
}

// NewClient creates a client for socketPath. A non-positive timeout uses
// DefaultTimeout.
func NewClient(socketPath string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		socketPath: socketPath,
		timeout:    timeout,
	}
}

// IsRunning checks if a bridge is accepting connections.
func (c *Client) IsRunning() bool {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Ping checks if the bridge is responsive.
func (c *Client) Ping(ctx context.Context) error {
	var res PingResult
	if err := c.call(ctx, MethodPing, nil, &res); err != nil {
		return err
	}
	if !res.Pong {
		return fmt.Errorf("ping failed: unexpected reply")
	}
	return nil
}

// Lookup sends the selected text and returns the matching paths.
func (c *Client) Lookup(ctx context.Context, text string) (*service.LookupResult, error) {
	var res service.LookupResult
	if err := c.call(ctx, MethodLookup, LookupParams{Text: text}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Replace asks the bridge to substitute a path for a selection.
func (c *Client) Replace(ctx context.Context, req service.ReplaceRequest) (*edit.Result, error) {
	var res edit.Result
	if err := c.call(ctx, MethodReplace, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Reindex triggers a full rebuild.
func (c *Client) Reindex(ctx context.Context) (*index.Result, error) {
	var res index.Result
	if err := c.call(ctx, MethodReindex, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Status retrieves bridge status.
func (c *Client) Status(ctx context.Context) (*service.Status, error) {
	var res service.Status
	if err := c.call(ctx, MethodStatus, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type rawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
	ID      json.RawMessage `json:"id"`
}

// call performs one request/response exchange. A JSON-RPC error is
// returned as *Error.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to bridge: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set deadline: %w", err)
	}

	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		ID:      c.nextID(),
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to encode params: %w", err)
		}
		req.Params = data
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("failed to receive response: %w", err)
	}

	var resp rawResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

// nextID generates a unique request ID.
func (c *Client) nextID() json.RawMessage {
	id := c.requestID.Add(1)
	return json.RawMessage(strconv.Quote(fmt.Sprintf("req-%d", id)))
}
