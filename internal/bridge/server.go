package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Aman-CERP/yamlpick/internal/edit"
	"github.com/Aman-CERP/yamlpick/internal/index"
	"github.com/Aman-CERP/yamlpick/internal/service"
)

// maxLineSize bounds one request line.
const maxLineSize = 4 * 1024 * 1024

// RequestHandler handles incoming RPC requests.
// *service.Service implements it.
type RequestHandler interface {
	Lookup(text string) service.LookupResult
	Replace(req service.ReplaceRequest) (*edit.Result, error)
	Reindex(ctx context.Context) (*index.Result, error)
	Status() service.Status
}

// Server answers JSON-RPC requests on stdio or a Unix socket.
type Server struct {
	handler RequestHandler

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	shutdown bool
	wg       sync.WaitGroup
}

// NewServer creates a server dispatching to h.
func NewServer(h RequestHandler) *Server {
	return &Server{
		handler: h,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Serve reads requests from r and writes responses to w until r is
// exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	encoder := json.NewEncoder(w)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read request: %w", err)
					}
				default:
				}
				return nil
			}

			resp, reply := s.handleLine(ctx, line)
			if !reply {
				continue
			}
			if err := encoder.Encode(resp); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
	}
}

// ListenAndServe listens on socketPath and serves each connection until ctx
// is cancelled. A stale socket file is replaced; a live one is an error.
func (s *Server) ListenAndServe(ctx context.Context, socketPath string) error {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	if conn, err := net.DialTimeout("unix", socketPath, 200*time.Millisecond); err == nil {
		_ = conn.Close()
		return fmt.Errorf("a bridge is already listening on %s", socketPath)
	}
	_ = os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", socketPath, err)
	}
	if err := os.Chmod(socketPath, 0o600); err != nil {
		slog.Warn("failed to restrict socket permissions", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.listener = listener
	s.shutdown = false
	s.mu.Unlock()

	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	slog.Info("bridge listening", slog.String("socket", socketPath))

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			s.mu.Lock()
			shutdown := s.shutdown
			s.mu.Unlock()
			if shutdown {
				break
			}
			slog.Error("accept error", slog.String("error", err.Error()))
			continue
		}

		if !s.track(conn) {
			_ = conn.Close()
			break
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			if err := s.Serve(ctx, conn, conn); err != nil && !errors.Is(err, context.Canceled) {
				slog.Debug("connection closed", slog.String("error", err.Error()))
			}
		}()
	}

	s.wg.Wait()
	return ctx.Err()
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

// Close stops accepting and closes open connections.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shutdown = true
	for conn := range s.conns {
		_ = conn.Close()
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// handleLine decodes and dispatches one line. reply is false for blank
// lines and notifications.
func (s *Server) handleLine(ctx context.Context, line []byte) (Response, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Response{}, false
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return NewErrorResponse(nil, ErrCodeParseError, "failed to parse request"), true
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return NewErrorResponse(req.ID, ErrCodeInvalidRequest, "invalid request"), !req.IsNotification()
	}

	resp := s.handleRequest(ctx, req)
	if req.IsNotification() {
		return Response{}, false
	}
	return resp, true
}

// handleRequest dispatches a request to the appropriate handler.
func (s *Server) handleRequest(ctx context.Context, req Request) Response {
	start := time.Now()
	defer func() {
		slog.Debug("bridge request",
			slog.String("method", req.Method),
			slog.Duration("duration", time.Since(start)))
	}()

	switch req.Method {
	case MethodPing:
		return NewSuccessResponse(req.ID, PingResult{Pong: true})

	case MethodStatus:
		return NewSuccessResponse(req.ID, s.handler.Status())

	case MethodLookup:
		var params LookupParams
		if err := decodeParams(req.Params, &params); err != nil {
			return NewErrorResponse(req.ID, ErrCodeInvalidParams, err.Error())
		}
		return NewSuccessResponse(req.ID, s.handler.Lookup(params.Text))

	case MethodReplace:
		var params service.ReplaceRequest
		if err := decodeParams(req.Params, &params); err != nil {
			return NewErrorResponse(req.ID, ErrCodeInvalidParams, err.Error())
		}
		result, err := s.handler.Replace(params)
		if err != nil {
			return errorResponse(req.ID, ErrCodeEditFailed, err)
		}
		return NewSuccessResponse(req.ID, result)

	case MethodReindex:
		result, err := s.handler.Reindex(ctx)
		if err != nil {
			return errorResponse(req.ID, ErrCodeReindexFailed, err)
		}
		return NewSuccessResponse(req.ID, result)

	default:
		return NewErrorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

// decodeParams unmarshals params strictly. Missing params decode as the
// zero value.
func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
