// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/panbanda/paramlint/pkg/analyzer"
	"github.com/panbanda/paramlint/pkg/ast"
	"github.com/panbanda/paramlint/pkg/ast/treesitter"
	"github.com/sourcegraph/conc/pool"
)

// ErrFileTooLarge is recorded for files above the configured size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Len returns the number of collected errors.
func (e *ProcessingErrors) Len() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors)
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap exposes the individual file errors to errors.Is and errors.As.
func (e *ProcessingErrors) Unwrap() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}

func (e *ProcessingErrors) sortByPath() {
	sort.Slice(e.Errors, func(i, j int) bool { return e.Errors[i].Path < e.Errors[j].Path })
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// Options tunes MapFilesN.
type Options struct {
	// Workers caps concurrency. Zero or less means DefaultWorkers.
	Workers int
	// MaxFileSize skips files larger than this many bytes. Zero means no limit.
	MaxFileSize int64
}

// newProvider creates the AST provider a worker parses with.
var newProvider = func() ast.Provider { return treesitter.New() }

// MapFilesN processes files in parallel, calling fn for each file. Each
// worker owns one AST provider and reuses it for every file it handles, so
// at most opts.Workers providers exist at once. Results are returned in
// arbitrary order. Progress is reported to the analyzer.Tracker carried by
// ctx, if any; failed files are reported as skipped.
//
// A failing file never stops the pool; its error is collected and the
// remaining files are still processed. Cancellation records ctx.Err() for
// every file not yet started.
func MapFilesN[T any](ctx context.Context, files []string, opts Options, fn func(ast.Provider, string) (T, error)) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}
	done := func(path string, ok *bool) {
		if tracker == nil {
			return
		}
		if *ok {
			tracker.Tick(path)
		} else {
			tracker.Skip(path)
		}
	}

	// Idle providers wait here between files. A worker takes one or creates
	// one, and returns it when done; the pool never runs more than workers
	// goroutines, so the channel never fills.
	idle := make(chan ast.Provider, workers)
	acquire := func() ast.Provider {
		select {
		case p := <-idle:
			return p
		default:
			return newProvider()
		}
	}
	defer func() {
		close(idle)
		for p := range idle {
			p.Close()
		}
	}()

	results := make([]T, 0, len(files))
	errs := &ProcessingErrors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for _, path := range files {
		p.Go(func(ctx context.Context) error {
			ok := false
			defer done(path, &ok)

			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				return nil
			default:
			}

			if opts.MaxFileSize > 0 {
				info, err := os.Stat(path)
				if err != nil {
					errs.Add(path, err)
					return nil
				}
				if info.Size() > opts.MaxFileSize {
					errs.Add(path, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size()))
					return nil
				}
			}

			provider := acquire()
			defer func() { idle <- provider }()

			result, err := fn(provider, path)
			if err != nil {
				errs.Add(path, err)
				return nil // Don't stop pool on individual file errors
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			ok = true
			return nil
		})
	}
	_ = p.Wait() // Context errors are already captured in errs

	if !errs.HasErrors() {
		return results, nil
	}
	errs.sortByPath()
	return results, errs
}
