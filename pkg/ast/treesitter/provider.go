package treesitter

import (
	"fmt"

	"github.com/panbanda/paramlint/pkg/ast"
	"github.com/panbanda/paramlint/pkg/parser"
)

// Provider implements ast.Provider using tree-sitter.
type Provider struct {
	parser *parser.Parser
}

// Compile-time check that Provider implements ast.Provider.
var _ ast.Provider = (*Provider)(nil)

// New creates a new tree-sitter based provider.
func New() *Provider {
	return &Provider{
		parser: parser.New(),
	}
}

// Parse reads and parses a file.
func (p *Provider) Parse(path string) (*ast.Tree, error) {
	if parser.DetectLanguage(path) == parser.LangUnknown {
		return nil, fmt.Errorf("%w: %s", ast.ErrUnsupportedLanguage, path)
	}
	result, err := p.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Convert(result), nil
}

// ParseSource parses in-memory source attributed to path.
func (p *Provider) ParseSource(source []byte, path string) (*ast.Tree, error) {
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return nil, fmt.Errorf("%w: %s", ast.ErrUnsupportedLanguage, path)
	}
	result, err := p.parser.Parse(source, lang, path)
	if err != nil {
		return nil, err
	}
	return Convert(result), nil
}

// Language returns the detected language for a file path.
func (p *Provider) Language(path string) ast.Language {
	return ast.Language(parser.DetectLanguage(path))
}

// Close releases parser resources.
func (p *Provider) Close() {
	p.parser.Close()
}
