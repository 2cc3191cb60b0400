// Package analyzer defines the contract shared by file analyzers and the
// progress tracker the parallel file pool reports to.
package analyzer

import "context"

// FileAnalyzer checks a batch of files into a result of type T, or a single
// file into a result of type F.
type FileAnalyzer[T, F any] interface {
	// Analyze processes files concurrently. The context carries cancellation
	// and an optional Tracker.
	Analyze(ctx context.Context, files []string) (T, error)

	// AnalyzeFile processes one file synchronously.
	AnalyzeFile(path string) (F, error)

	// Close releases any resources held by the analyzer.
	Close()
}
