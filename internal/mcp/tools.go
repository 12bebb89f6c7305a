package mcp

import (
	"github.com/Aman-CERP/yamlpick/internal/edit"
	"github.com/Aman-CERP/yamlpick/internal/index"
	"github.com/Aman-CERP/yamlpick/internal/service"
)

// LookupInput defines the input schema for the lookup_value tool.
type LookupInput struct {
	Text string `json:"text" jsonschema:"the selected text, matched exactly against YAML leaf values"`
}

// LookupOutput defines the output schema for the lookup_value tool.
type LookupOutput struct {
	Text       string   `json:"text" jsonschema:"the text that was looked up"`
	Found      bool     `json:"found" jsonschema:"true if at least one key path holds the text"`
	Paths      []string `json:"paths" jsonschema:"dotted key paths holding the text, in first-seen order"`
	Generation uint64   `json:"generation" jsonschema:"table generation the answer was read from"`
}

// ReplaceInput defines the input schema for the replace_selection tool.
type ReplaceInput struct {
	File   string `json:"file" jsonschema:"file containing the selection, absolute or relative to the workspace root"`
	Offset int    `json:"offset,omitempty" jsonschema:"byte offset where the selection starts"`
	Line   int    `json:"line,omitempty" jsonschema:"1-based line of the selection start, used instead of offset"`
	Col    int    `json:"col,omitempty" jsonschema:"1-based column (characters) of the selection start"`
	Length int    `json:"length,omitempty" jsonschema:"selection length in bytes, defaults to the length of text"`
	Text   string `json:"text,omitempty" jsonschema:"the selected text, verified before replacing"`
	Path   string `json:"path" jsonschema:"the key path to insert"`
}

// request converts the tool input to a service request.
func (in ReplaceInput) request() service.ReplaceRequest {
	return service.ReplaceRequest{
		File:   in.File,
		Offset: in.Offset,
		Line:   in.Line,
		Col:    in.Col,
		Length: in.Length,
		Text:   in.Text,
		Path:   in.Path,
	}
}

// ReplaceOutput defines the output schema for the replace_selection tool.
type ReplaceOutput struct {
	File     string `json:"file"`
	Offset   int    `json:"offset"`
	Replaced string `json:"replaced"`
	Inserted string `json:"inserted"`
	Size     int    `json:"size" jsonschema:"file size in bytes after the edit"`
}

func toReplaceOutput(r *edit.Result) ReplaceOutput {
	return ReplaceOutput{
		File:     r.File,
		Offset:   r.Offset,
		Replaced: r.Replaced,
		Inserted: r.Inserted,
		Size:     r.Size,
	}
}

// IndexStatusInput defines the input schema for the index_status tool (no parameters).
type IndexStatusInput struct{}

// IndexStatusOutput defines the output schema for the index_status tool.
type IndexStatusOutput struct {
	Root     string            `json:"root"`
	Watching bool              `json:"watching"`
	Stats    IndexStats        `json:"stats"`
	Indexing *IndexingProgress `json:"indexing,omitempty"`
}

// IndexStats describes the published table.
type IndexStats struct {
	Generation   uint64 `json:"generation"`
	FilesIndexed int    `json:"files_indexed"`
	FilesSkipped int    `json:"files_skipped"`
	Values       int    `json:"values"`
	Paths        int    `json:"paths"`
	LastIndexed  string `json:"last_indexed,omitempty"`
}

// IndexingProgress describes the most recent rebuild.
type IndexingProgress struct {
	Status         string  `json:"status"`                  // "idle", "scanning", "indexing", "ready", or "error"
	FilesTotal     int     `json:"files_total"`             // Files discovered by the scan
	FilesProcessed int     `json:"files_processed"`         // Files read so far
	ProgressPct    float64 `json:"progress_pct"`            // 0-100
	Rebuilds       int     `json:"rebuilds"`                // Rebuilds since start
	ErrorMessage   string  `json:"error_message,omitempty"` // Set when status is "error"
}

// ReindexInput defines the input schema for the reindex tool (no parameters).
type ReindexInput struct{}

// ReindexOutput defines the output schema for the reindex tool.
type ReindexOutput struct {
	Generation uint64        `json:"generation"`
	Files      int           `json:"files"`
	Indexed    int           `json:"indexed"`
	Skipped    []SkippedFile `json:"skipped,omitempty"`
	Values     int           `json:"values"`
	Paths      int           `json:"paths"`
	DurationMS int64         `json:"duration_ms"`
}

// SkippedFile is a discovered file that contributed nothing to the table.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

func toReindexOutput(r *index.Result) ReindexOutput {
	out := ReindexOutput{
		Generation: r.Generation,
		Files:      r.Files,
		Indexed:    r.Indexed,
		Values:     r.Values,
		Paths:      r.Paths,
		DurationMS: r.Duration.Milliseconds(),
	}
	for _, sk := range r.Skipped {
		out.Skipped = append(out.Skipped, SkippedFile{Path: sk.Path, Reason: sk.Reason, Error: sk.Error})
	}
	return out
}
