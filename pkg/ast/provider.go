package ast

import (
	"errors"
)

// ErrUnsupportedLanguage is returned when parsing a file with an unsupported language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language represents a programming language.
type Language string

const (
	LangJava    Language = "java"
	LangUnknown Language = "unknown"
)

// Position represents a location in source code.
// Line and Column are 1-based.
type Position struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
}

// Provider abstracts the construction of syntax trees.
type Provider interface {
	// Parse reads and parses a file.
	Parse(path string) (*Tree, error)

	// ParseSource parses in-memory source attributed to path.
	ParseSource(source []byte, path string) (*Tree, error)

	// Language returns the detected language for a file path.
	Language(path string) Language

	// Close releases provider resources.
	Close()
}
