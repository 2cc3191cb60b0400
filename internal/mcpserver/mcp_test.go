package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/paramlint/internal/output"
	"github.com/panbanda/paramlint/internal/testutil"
	"github.com/panbanda/paramlint/pkg/config"
	"github.com/panbanda/paramlint/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return text.Text
}

func decodeAnalysis(t *testing.T, result *mcp.CallToolResult) models.UnusedParameterAnalysis {
	t.Helper()
	require.False(t, result.IsError, resultText(t, result))
	var a models.UnusedParameterAnalysis
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &a))
	return a
}

func violationNames(a models.UnusedParameterAnalysis) []string {
	names := []string{}
	for _, v := range a.Violations() {
		names = append(names, v.Name)
	}
	return names
}

func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test")
	require.NotNil(t, server)
	assert.NotNil(t, server.server)
	assert.NotNil(t, server.config)
}

func TestServerCreationEmptyVersion(t *testing.T) {
	assert.NotNil(t, NewServer(""))
}

func TestWithConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Check.IgnoreCatchParameters = false

	assert.Same(t, cfg, NewServer("test", WithConfig(cfg)).config)
	assert.NotNil(t, NewServer("test", WithConfig(nil)).config, "nil config keeps the default")
}

func TestToolDescription(t *testing.T) {
	desc := describeCheck()
	for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
		assert.Contains(t, desc, section)
	}
}

func TestGetPaths(t *testing.T) {
	assert.Equal(t, []string{"."}, getPaths(CheckInput{}))
	assert.Equal(t, []string{"."}, getPaths(CheckInput{Paths: []string{}}))
	assert.Equal(t, []string{"/a", "/b"}, getPaths(CheckInput{Paths: []string{"/a", "/b"}}))
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		format string
		want   output.Format
	}{
		{"", output.FormatTOON},
		{"  ", output.FormatTOON},
		{"toon", output.FormatTOON},
		{"json", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"yaml", output.FormatYAML},
		{"text", output.FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, getFormat(tt.format))
		})
	}
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "Error: test error message", resultText(t, result))
}

func TestHandleCheck_Source(t *testing.T) {
	s := NewServer("test")

	tests := []struct {
		name  string
		input CheckInput
		want  []string
	}{
		{
			name:  "catch parameters ignored by default",
			input: CheckInput{Source: testutil.UnusedSource, Format: "json"},
			want:  []string{"count"},
		},
		{
			name:  "check catch",
			input: CheckInput{Source: testutil.UnusedSource, Format: "json", CheckCatch: true},
			want:  []string{"count", "e"},
		},
		{
			name:  "ignore pattern",
			input: CheckInput{Source: testutil.UnusedSource, Format: "json", IgnorePattern: "^count$"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := s.handleCheck(context.Background(), nil, tt.input)
			require.NoError(t, err)
			a := decodeAnalysis(t, result)
			assert.Equal(t, tt.want, violationNames(a))
		})
	}
}

func TestHandleCheck_SourceFilename(t *testing.T) {
	s := NewServer("test")

	result, _, err := s.handleCheck(context.Background(), nil, CheckInput{Source: testutil.UnusedSource, Format: "json"})
	require.NoError(t, err)
	a := decodeAnalysis(t, result)
	require.Len(t, a.Files, 1)
	assert.Equal(t, defaultSnippetName, a.Files[0].Path)

	result, _, err = s.handleCheck(context.Background(), nil, CheckInput{Source: testutil.UnusedSource, Filename: "src/Sample.java", Format: "json"})
	require.NoError(t, err)
	a = decodeAnalysis(t, result)
	require.Len(t, a.Violations(), 1)
	v := a.Violations()[0]
	assert.Equal(t, "src/Sample.java", v.File)
	assert.Equal(t, 2, v.Line)
	assert.Equal(t, "run", v.Owner)
	assert.Equal(t, models.ParameterMethod, v.Kind)
}

func TestHandleCheck_Paths(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, map[string]string{
		"Sample.java": testutil.UnusedSource,
		"notes.txt":   "not java",
	})

	s := NewServer("test")
	result, _, err := s.handleCheck(context.Background(), nil, CheckInput{Paths: []string{dir}, Format: "json"})
	require.NoError(t, err)

	a := decodeAnalysis(t, result)
	assert.Equal(t, 1, a.Summary.TotalFiles)
	assert.Equal(t, []string{"count"}, violationNames(a))
}

func TestHandleCheck_Errors(t *testing.T) {
	s := NewServer("test")

	tests := []struct {
		name  string
		input CheckInput
		want  string
	}{
		{"no java files", CheckInput{Paths: []string{t.TempDir()}}, "no Java source files found"},
		{"missing path", CheckInput{Paths: []string{filepath.Join(t.TempDir(), "missing")}}, "Error:"},
		{"bad pattern", CheckInput{Source: testutil.UnusedSource, IgnorePattern: "(["}, "Error:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := s.handleCheck(context.Background(), nil, tt.input)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestHandleCheck_Formats(t *testing.T) {
	s := NewServer("test")

	for _, format := range []string{"", "toon", "json", "yaml", "markdown", "text"} {
		t.Run(format, func(t *testing.T) {
			result, _, err := s.handleCheck(context.Background(), nil, CheckInput{Source: testutil.UnusedSource, Format: format})
			require.NoError(t, err)
			require.False(t, result.IsError)
			assert.Contains(t, resultText(t, result), "count")
		})
	}
}

func TestParseFrontmatter(t *testing.T) {
	fm, body := parseFrontmatter([]byte("---\ndescription: Test\narguments:\n  - name: paths\n    default: \".\"\n---\nBody {{paths}}\n"))
	assert.Equal(t, "Test", fm.Description)
	require.Len(t, fm.Arguments, 1)
	assert.Equal(t, "paths", fm.Arguments[0].Name)
	assert.Equal(t, "Body {{paths}}\n", body)

	fm, body = parseFrontmatter([]byte("no frontmatter"))
	assert.Empty(t, fm.Description)
	assert.Equal(t, "no frontmatter", body)

	_, body = parseFrontmatter([]byte("---\nunterminated"))
	assert.Equal(t, "---\nunterminated", body)
}

func TestSubstituteArgs(t *testing.T) {
	declared := []promptArgument{{Name: "paths", Default: "."}}

	assert.Equal(t, "check src now", substituteArgs("check {{paths}} now", declared, map[string]string{"paths": "src"}))
	assert.Equal(t, "check . now", substituteArgs("check {{paths}} now", declared, nil))
	assert.Equal(t, "{{other}}", substituteArgs("{{other}}", declared, nil))
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	s := NewServer("test")
	serverSession, err := s.Connect(ctx, serverTransport)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	t.Run("list tools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err)
		require.Len(t, tools.Tools, 1)
		assert.Equal(t, "check_unused_parameters", tools.Tools[0].Name)
		assert.NotNil(t, tools.Tools[0].InputSchema)
	})

	t.Run("call tool", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name: "check_unused_parameters",
			Arguments: map[string]any{
				"source":      testutil.UnusedSource,
				"check_catch": true,
				"format":      "json",
			},
		})
		require.NoError(t, err)
		a := decodeAnalysis(t, result)
		assert.Equal(t, []string{"count", "e"}, violationNames(a))
	})

	t.Run("get prompt", func(t *testing.T) {
		prompts, err := session.ListPrompts(ctx, nil)
		require.NoError(t, err)
		require.NotEmpty(t, prompts.Prompts)

		prompt, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
			Name:      "unused-parameter-cleanup",
			Arguments: map[string]string{"paths": "src/main/java"},
		})
		require.NoError(t, err)
		require.Len(t, prompt.Messages, 1)
		text, ok := prompt.Messages[0].Content.(*mcp.TextContent)
		require.True(t, ok)
		assert.True(t, strings.Contains(text.Text, "Check src/main/java for unused parameters"))
	})
}
