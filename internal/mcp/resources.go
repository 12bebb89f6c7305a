package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Resource URIs.
const (
	TableURI  = "yamlpick://table"
	StatusURI = "yamlpick://status"
)

// TableOutput is the JSON structure for the table resource.
type TableOutput struct {
	Generation uint64              `json:"generation"`
	Entries    map[string][]string `json:"entries"`
}

// registerResources registers the table and status resources.
func (s *Server) registerResources() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "table",
			URI:         TableURI,
			Description: "Every indexed YAML value with the key paths that hold it",
			MIMEType:    "application/json",
		},
		s.makeJSONHandler(TableURI, s.tableOutput),
	)
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "status",
			URI:         StatusURI,
			Description: "Process, rebuild and table status",
			MIMEType:    "application/json",
		},
		s.makeJSONHandler(StatusURI, func() any { return s.svc.Status() }),
	)
}

// tableOutput renders the current table.
func (s *Server) tableOutput() any {
	store := s.svc.Builder().Store()
	table := store.Table()

	out := TableOutput{
		Generation: store.Generation(),
		Entries:    make(map[string][]string, table.Len()),
	}
	for _, v := range table.Values() {
		paths, _ := table.Lookup(v)
		out.Entries[v] = paths
	}
	return out
}

// makeJSONHandler creates a read handler serving build() as indented JSON.
func (s *Server) makeJSONHandler(uri string, build func() any) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return readJSON(uri, build())
	}
}

func readJSON(uri string, v any) (*mcp.ReadResourceResult, error) {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, MapError(err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}
