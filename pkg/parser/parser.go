// Package parser reads Java sources into tree-sitter syntax trees.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Language identifies a source language by file extension.
type Language string

const (
	LangJava    Language = "java"
	LangUnknown Language = "unknown"
)

// ErrUnsupported is returned for files whose extension has no grammar.
var ErrUnsupported = errors.New("unsupported language")

// Parser wraps a tree-sitter parser bound to the Java grammar. A Parser is
// not safe for concurrent use; give each worker its own.
type Parser struct {
	ts *sitter.Parser
}

// ParseResult holds a syntax tree together with the bytes it indexes into.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// New creates a parser.
func New() *Parser {
	ts := sitter.NewParser()
	ts.SetLanguage(java.GetLanguage())
	return &Parser{ts: ts}
}

// ParseFile reads and parses path.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	lang := DetectLanguage(path)
	if lang == LangUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.Parse(source, lang, path)
}

// Parse parses source. path is recorded on the result only.
func (p *Parser) Parse(source []byte, lang Language, path string) (*ParseResult, error) {
	if lang != LangJava {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, lang)
	}
	tree, err := p.ts.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &ParseResult{Tree: tree, Language: lang, Source: source, Path: path}, nil
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.ts.Close()
}

// DetectLanguage maps a file extension to a Language.
func DetectLanguage(path string) Language {
	if strings.EqualFold(filepath.Ext(path), ".java") {
		return LangJava
	}
	return LangUnknown
}

// GetNodeText returns the source slice covered by node, or "" when node is
// nil or its offsets fall outside source.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
