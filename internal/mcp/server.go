package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/yamlpick/internal/service"
	"github.com/Aman-CERP/yamlpick/pkg/version"
)

// serverName is reported to MCP clients.
const serverName = "yamlpick"

// Server is the MCP server for yamlpick.
// It lets AI clients look up YAML values and replace selections with key paths.
type Server struct {
	mcp    *mcp.Server
	svc    *service.Service
	logger *slog.Logger
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

var tools = []ToolInfo{
	{
		Name:        "lookup_value",
		Description: "Find the dotted YAML key paths whose value equals the given text exactly. Use this to turn a hard-coded string into a translation or config key.",
	},
	{
		Name:        "replace_selection",
		Description: "Replace a selected piece of text in a file with a key path. The selection is verified before writing, so a stale selection is rejected rather than corrupting the file.",
	},
	{
		Name:        "index_status",
		Description: "Report whether the YAML lookup table is built, how many files and values it holds, and the state of the last rebuild.",
	},
	{
		Name:        "reindex",
		Description: "Rebuild the lookup table from the YAML files in the workspace. Only needed when file watching is off.",
	},
}

// NewServer creates a new MCP server over svc.
func NewServer(svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, errors.New("service is required")
	}

	s := &Server{
		svc:    svc,
		logger: slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		nil, // capabilities are inferred from registered tools/resources
	)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return serverName, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	out := make([]ToolInfo, len(tools))
	copy(out, tools)
	return out
}

// CallTool invokes a tool by name with loosely typed arguments and returns
// a markdown answer for lookup_value, replace_selection and reindex, and
// *IndexStatusOutput for index_status.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "lookup_value":
		text, ok := args["text"].(string)
		if !ok {
			return nil, NewInvalidParamsError("text parameter is required and must be a string")
		}
		out, err := s.lookup(LookupInput{Text: text})
		if err != nil {
			return nil, err
		}
		return FormatLookup(out), nil

	case "replace_selection":
		in := ReplaceInput{
			File:   stringArg(args, "file"),
			Offset: intArg(args, "offset"),
			Line:   intArg(args, "line"),
			Col:    intArg(args, "col"),
			Length: intArg(args, "length"),
			Text:   stringArg(args, "text"),
			Path:   stringArg(args, "path"),
		}
		out, err := s.replace(in)
		if err != nil {
			return nil, err
		}
		return FormatReplace(out), nil

	case "index_status":
		return s.indexStatus(), nil

	case "reindex":
		out, err := s.reindex(ctx)
		if err != nil {
			return nil, err
		}
		return FormatReindex(out), nil

	default:
		return nil, NewMethodNotFoundError(name)
	}
}

func (s *Server) lookup(in LookupInput) (LookupOutput, error) {
	if in.Text == "" {
		return LookupOutput{}, NewInvalidParamsError("text parameter is required")
	}

	requestID := generateRequestID()
	res := s.svc.Lookup(in.Text)

	s.logger.Debug("lookup_value completed",
		slog.String("request_id", requestID),
		slog.Bool("found", res.Found),
		slog.Int("paths", len(res.Paths)))

	return LookupOutput{
		Text:       in.Text,
		Found:      res.Found,
		Paths:      res.Paths,
		Generation: res.Generation,
	}, nil
}

func (s *Server) replace(in ReplaceInput) (ReplaceOutput, error) {
	start := time.Now()
	requestID := generateRequestID()

	res, err := s.svc.Replace(in.request())
	if err != nil {
		s.logger.Warn("replace_selection failed",
			slog.String("request_id", requestID),
			slog.String("file", in.File),
			slog.String("error", err.Error()))
		return ReplaceOutput{}, MapError(err)
	}

	s.logger.Info("replace_selection completed",
		slog.String("request_id", requestID),
		slog.String("file", res.File),
		slog.String("path", res.Inserted),
		slog.Duration("duration", time.Since(start)))

	return toReplaceOutput(res), nil
}

func (s *Server) reindex(ctx context.Context) (ReindexOutput, error) {
	requestID := generateRequestID()
	s.logger.Info("reindex started", slog.String("request_id", requestID))

	res, err := s.svc.Reindex(ctx)
	if err != nil {
		s.logger.Error("reindex failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return ReindexOutput{}, MapError(err)
	}

	s.logger.Info("reindex completed",
		slog.String("request_id", requestID),
		slog.Uint64("generation", res.Generation),
		slog.Duration("duration", res.Duration))

	return toReindexOutput(res), nil
}

func (s *Server) indexStatus() *IndexStatusOutput {
	st := s.svc.Status()

	out := &IndexStatusOutput{
		Root:     st.Root,
		Watching: st.Watching,
		Stats: IndexStats{
			Generation:   st.Table.Generation,
			FilesIndexed: st.Table.FilesIndexed,
			FilesSkipped: st.Table.FilesSkipped,
			Values:       st.Table.Values,
			Paths:        st.Table.Paths,
		},
		Indexing: &IndexingProgress{
			Status:         st.Index.Status,
			FilesTotal:     st.Index.FilesTotal,
			FilesProcessed: st.Index.FilesProcessed,
			ProgressPct:    st.Index.ProgressPct,
			Rebuilds:       st.Index.Rebuilds,
			ErrorMessage:   st.Index.ErrorMessage,
		},
	}
	if !st.Table.BuiltAt.IsZero() {
		out.Stats.LastIndexed = st.Table.BuiltAt.Format(time.RFC3339)
	}
	return out
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[0].Name, Description: tools[0].Description}, s.mcpLookupHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[1].Name, Description: tools[1].Description}, s.mcpReplaceHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[2].Name, Description: tools[2].Description}, s.mcpIndexStatusHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[3].Name, Description: tools[3].Description}, s.mcpReindexHandler)

	s.logger.Debug("MCP tools registered", slog.Int("count", len(tools)))
}

// mcpLookupHandler is the MCP SDK handler for the lookup_value tool.
func (s *Server) mcpLookupHandler(_ context.Context, _ *mcp.CallToolRequest, input LookupInput) (
	*mcp.CallToolResult,
	LookupOutput,
	error,
) {
	out, err := s.lookup(input)
	if err != nil {
		return nil, LookupOutput{}, err
	}
	return nil, out, nil
}

// mcpReplaceHandler is the MCP SDK handler for the replace_selection tool.
func (s *Server) mcpReplaceHandler(_ context.Context, _ *mcp.CallToolRequest, input ReplaceInput) (
	*mcp.CallToolResult,
	ReplaceOutput,
	error,
) {
	out, err := s.replace(input)
	if err != nil {
		return nil, ReplaceOutput{}, err
	}
	return nil, out, nil
}

// mcpIndexStatusHandler is the MCP SDK handler for the index_status tool.
func (s *Server) mcpIndexStatusHandler(_ context.Context, _ *mcp.CallToolRequest, _ IndexStatusInput) (
	*mcp.CallToolResult,
	*IndexStatusOutput,
	error,
) {
	return nil, s.indexStatus(), nil
}

// mcpReindexHandler is the MCP SDK handler for the reindex tool.
func (s *Server) mcpReindexHandler(ctx context.Context, _ *mcp.CallToolRequest, _ ReindexInput) (
	*mcp.CallToolResult,
	ReindexOutput,
	error,
) {
	out, err := s.reindex(ctx)
	if err != nil {
		return nil, ReindexOutput{}, err
	}
	return nil, out, nil
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error",
				slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// intArg reads a JSON number argument; decoded JSON numbers are float64.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
