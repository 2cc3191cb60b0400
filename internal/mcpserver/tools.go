package mcpserver

import (
	"bytes"
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/paramlint/internal/output"
	"github.com/panbanda/paramlint/internal/scanner"
	"github.com/panbanda/paramlint/pkg/analyzer/unusedparam"
	"github.com/panbanda/paramlint/pkg/models"
)

// defaultSnippetName is the file name reported for inline source.
const defaultSnippetName = "Snippet.java"

// CheckInput is the input of check_unused_parameters.
type CheckInput struct {
	Paths         []string `json:"paths,omitempty" jsonschema:"Files or directories to check. Defaults to current directory if empty and no source is given."`
	Source        string   `json:"source,omitempty" jsonschema:"Inline Java source to check instead of paths."`
	Filename      string   `json:"filename,omitempty" jsonschema:"File name reported for inline source. Default Snippet.java."`
	CheckCatch    bool     `json:"check_catch,omitempty" jsonschema:"Also report unused catch clause parameters."`
	IgnorePattern string   `json:"ignore_pattern,omitempty" jsonschema:"Regular expression of parameter names never reported."`
	Format        string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, markdown, or text."`
}

func getPaths(input CheckInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

// getFormat parses a format name. Tool output defaults to toon, which is the
// most compact for a model to read.
func getFormat(name string) output.Format {
	if strings.TrimSpace(name) == "" {
		return output.FormatTOON
	}
	return output.ParseFormat(name)
}

func toolResult(analysis *models.UnusedParameterAnalysis, format output.Format) (*mcp.CallToolResult, any, error) {
	var buf bytes.Buffer
	f := output.NewWriterFormatter(format, &buf, false)
	if err := f.Output(output.UnusedParameters(analysis)); err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: buf.String()},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleCheck(ctx context.Context, req *mcp.CallToolRequest, input CheckInput) (*mcp.CallToolResult, any, error) {
	cfg := *s.config
	if input.CheckCatch {
		cfg.Check.IgnoreCatchParameters = false
	}
	if input.IgnorePattern != "" {
		cfg.Check.IgnorePattern = input.IgnorePattern
	}
	ignore, err := cfg.IgnorePattern()
	if err != nil {
		return toolError(err.Error())
	}

	a := unusedparam.New(
		unusedparam.WithConfig(unusedparam.Config{IgnoreCatchParameters: cfg.Check.IgnoreCatchParameters}),
		unusedparam.WithIgnorePattern(ignore),
		unusedparam.WithWorkers(cfg.Workers),
		unusedparam.WithMaxFileSize(cfg.MaxFileSize),
		unusedparam.WithLogger(s.logger),
	)
	defer a.Close()

	format := getFormat(input.Format)

	if input.Source != "" {
		name := input.Filename
		if name == "" {
			name = defaultSnippetName
		}
		result, err := a.AnalyzeSource([]byte(input.Source), name)
		if err != nil {
			return toolError(err.Error())
		}
		return toolResult(models.NewUnusedParameterAnalysis([]models.FileUnusedParameters{*result}, 0), format)
	}

	files, err := scanner.NewScanner(&cfg).ScanPaths(getPaths(input))
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no Java source files found")
	}

	analysis, err := a.Analyze(ctx, files)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(analysis, format)
}
