package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/panbanda/paramlint/pkg/analyzer"
	"github.com/panbanda/paramlint/pkg/ast"
)

func TestMapFiles(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "File1.java", "class File1 {}"),
		createTestFile(t, tmpDir, "File2.java", "class File2 {}"),
		createTestFile(t, tmpDir, "File3.java", "class File3 {}"),
	}

	ctx := context.Background()
	results, errs := MapFilesN(ctx, files, Options{}, func(p ast.Provider, path string) (string, error) {
		return filepath.Base(path), nil
	})

	if errs != nil {
		t.Errorf("Unexpected errors: %v", errs)
	}

	if len(results) != len(files) {
		t.Errorf("Expected %d results, got %d", len(files), len(results))
	}

	resultMap := make(map[string]bool)
	for _, r := range results {
		resultMap[r] = true
	}

	for _, expected := range []string{"File1.java", "File2.java", "File3.java"} {
		if !resultMap[expected] {
			t.Errorf("Missing expected result: %s", expected)
		}
	}
}

func TestMapFiles_EmptyFileList(t *testing.T) {
	results, errs := MapFilesN(context.Background(), []string{}, Options{}, func(p ast.Provider, path string) (string, error) {
		return path, nil
	})

	if results != nil {
		t.Errorf("Expected nil for empty file list, got %v", results)
	}
	if errs != nil {
		t.Errorf("Expected nil errors for empty file list, got %v", errs)
	}
}

func TestMapFiles_WithErrors(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "Good1.java", "class Good1 {}"),
		createTestFile(t, tmpDir, "Bad.java", "class Bad {}"),
		createTestFile(t, tmpDir, "Good2.java", "class Good2 {}"),
	}

	processedCount := atomic.Int32{}
	results, errs := MapFilesN(context.Background(), files, Options{}, func(p ast.Provider, path string) (string, error) {
		processedCount.Add(1)
		if filepath.Base(path) == "Bad.java" {
			return "", fmt.Errorf("simulated error")
		}
		return filepath.Base(path), nil
	})

	if int(processedCount.Load()) != 3 {
		t.Errorf("Expected all 3 files to be processed, got %d", processedCount.Load())
	}

	if len(results) != 2 {
		t.Errorf("Expected 2 successful results (errors skipped), got %d", len(results))
	}

	if errs == nil {
		t.Fatal("Expected errors to be returned")
	}
	if errs.Len() != 1 {
		t.Errorf("Expected 1 error, got %d", errs.Len())
	}
}

func TestMapFiles_ProviderParses(t *testing.T) {
	tmpDir := t.TempDir()
	file := createTestFile(t, tmpDir, "Test.java", "class Test { void f(int x) {} }")

	results, errs := MapFilesN(context.Background(), []string{file}, Options{}, func(p ast.Provider, path string) (int, error) {
		if p == nil {
			return 0, fmt.Errorf("provider should not be nil")
		}
		tree, err := p.Parse(path)
		if err != nil {
			return 0, err
		}
		return len(tree.FindAll(ast.KindParameter)), nil
	})

	if errs != nil {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(results) != 1 || results[0] != 1 {
		t.Errorf("Expected one file with 1 parameter, got %v", results)
	}
}

func TestMapFiles_WithProgress(t *testing.T) {
	tmpDir := t.TempDir()

	var files []string
	for i := 0; i < 5; i++ {
		files = append(files, createTestFile(t, tmpDir, fmt.Sprintf("F%d.java", i), "class F {}"))
	}

	progressCount := atomic.Int32{}
	tracker := analyzer.NewTracker(func(current, total int, path string) {
		progressCount.Add(1)
	})

	ctx := analyzer.WithTracker(context.Background(), tracker)
	results, errs := MapFilesN(ctx, files, Options{}, func(p ast.Provider, path string) (int, error) {
		if strings.HasSuffix(path, "F0.java") {
			return 0, fmt.Errorf("failed")
		}
		return 1, nil
	})

	if errs == nil || errs.Len() != 1 {
		t.Errorf("Expected 1 error, got %v", errs)
	}
	if len(results) != len(files)-1 {
		t.Errorf("Expected %d results, got %d", len(files)-1, len(results))
	}
	if int(progressCount.Load()) != len(files) {
		t.Errorf("Expected progress callback %d times (errors included), got %d", len(files), progressCount.Load())
	}
	if tracker.Total() != len(files) {
		t.Errorf("Expected tracker total %d, got %d", len(files), tracker.Total())
	}
	if tracker.Skipped() != 1 {
		t.Errorf("Expected 1 skipped file, got %d", tracker.Skipped())
	}
}

func TestMapFiles_Cancelled(t *testing.T) {
	tmpDir := t.TempDir()

	var files []string
	for i := 0; i < 20; i++ {
		files = append(files, createTestFile(t, tmpDir, fmt.Sprintf("F%d.java", i), "class F {}"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var processed atomic.Int32
	results, errs := MapFilesN(ctx, files, Options{}, func(p ast.Provider, path string) (string, error) {
		processed.Add(1)
		return path, nil
	})

	errorCount := errs.Len()
	if len(results)+errorCount != len(files) {
		t.Errorf("Results (%d) + errors (%d) should equal file count (%d)", len(results), errorCount, len(files))
	}
	if errs == nil {
		t.Fatal("Expected cancellation errors")
	}
	if !errors.Is(errs, context.Canceled) {
		t.Errorf("Expected errors to wrap context.Canceled, got %v", errs)
	}
}

func TestMapFilesN_SizeLimit(t *testing.T) {
	tmpDir := t.TempDir()

	smallFile := createTestFile(t, tmpDir, "Small.java", "class Small {}")
	largeFile := createTestFile(t, tmpDir, "Large.java", "class Large {"+strings.Repeat(" ", 1024)+"}")

	t.Run("with size limit", func(t *testing.T) {
		results, errs := MapFilesN(context.Background(), []string{smallFile, largeFile}, Options{MaxFileSize: 100},
			func(p ast.Provider, path string) (string, error) {
				return filepath.Base(path), nil
			})

		if len(results) != 1 {
			t.Errorf("Expected 1 result (small file only), got %d", len(results))
		}
		if errs == nil || errs.Len() != 1 {
			t.Fatalf("Expected 1 error for large file, got %v", errs)
		}
		if !errors.Is(errs.Errors[0], ErrFileTooLarge) {
			t.Errorf("Expected ErrFileTooLarge, got %v", errs.Errors[0])
		}
	})

	t.Run("no size limit", func(t *testing.T) {
		results, errs := MapFilesN(context.Background(), []string{smallFile, largeFile}, Options{Workers: 1},
			func(p ast.Provider, path string) (string, error) {
				return filepath.Base(path), nil
			})

		if errs != nil {
			t.Errorf("Unexpected errors: %v", errs)
		}
		if len(results) != 2 {
			t.Errorf("Expected 2 results with no limit, got %d", len(results))
		}
	})

	t.Run("stat error handling", func(t *testing.T) {
		nonExistent := filepath.Join(tmpDir, "Missing.java")
		results, errs := MapFilesN(context.Background(), []string{nonExistent}, Options{MaxFileSize: 100},
			func(p ast.Provider, path string) (string, error) {
				return filepath.Base(path), nil
			})

		if len(results) != 0 {
			t.Errorf("Expected 0 results, got %d", len(results))
		}
		if errs == nil || errs.Len() != 1 {
			t.Errorf("Expected 1 error, got %v", errs)
		}
	})
}

func TestProcessingError(t *testing.T) {
	cause := fmt.Errorf("parse failed")
	err := ProcessingError{Path: "/path/to/File.java", Err: cause}
	expected := "/path/to/File.java: parse failed"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, cause) {
		t.Error("ProcessingError should unwrap to its cause")
	}
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}

	if errs.HasErrors() {
		t.Error("Empty ProcessingErrors should not have errors")
	}
	if errs.Error() != "no errors" {
		t.Errorf("Empty error message = %q, want 'no errors'", errs.Error())
	}

	errs.Add("/File1.java", fmt.Errorf("error1"))
	if !errs.HasErrors() {
		t.Error("ProcessingErrors with one error should have errors")
	}
	if errs.Error() != "/File1.java: error1" {
		t.Errorf("Single error message = %q", errs.Error())
	}

	errs.Add("/File2.java", fmt.Errorf("error2"))
	if errs.Len() != 2 {
		t.Errorf("Expected 2 errors, got %d", errs.Len())
	}
	if msg := errs.Error(); msg != "2 files failed to process (first: /File1.java: error1)" {
		t.Errorf("Multiple error message = %q", msg)
	}
	if len(errs.Unwrap()) != 2 {
		t.Errorf("Unwrap() returned %d errors, want 2", len(errs.Unwrap()))
	}
}

func TestProcessingErrors_Nil(t *testing.T) {
	var errs *ProcessingErrors
	if errs.HasErrors() {
		t.Error("nil ProcessingErrors should not have errors")
	}
	if errs.Len() != 0 {
		t.Error("nil ProcessingErrors should have zero length")
	}
}

func TestProcessingErrors_ThreadSafe(t *testing.T) {
	errs := &ProcessingErrors{}
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs.Add(fmt.Sprintf("/File%d.java", n), fmt.Errorf("error %d", n))
		}(i)
	}
	wg.Wait()

	if errs.Len() != 100 {
		t.Errorf("Expected 100 errors, got %d", errs.Len())
	}
}

type countingProvider struct {
	ast.Provider
	closed *atomic.Int32
}

func (p countingProvider) Close() {
	p.closed.Add(1)
	p.Provider.Close()
}

func TestMapFilesN_ReusesProviderPerWorker(t *testing.T) {
	var created, closed atomic.Int32
	orig := newProvider
	newProvider = func() ast.Provider {
		created.Add(1)
		return countingProvider{Provider: orig(), closed: &closed}
	}
	t.Cleanup(func() { newProvider = orig })

	tmpDir := t.TempDir()
	files := make([]string, 40)
	for i := range files {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("F%d.java", i), fmt.Sprintf("class F%d { void f(int x) {} }", i))
	}

	const workers = 2
	results, errs := MapFilesN(context.Background(), files, Options{Workers: workers}, func(p ast.Provider, path string) (int, error) {
		tree, err := p.Parse(path)
		if err != nil {
			return 0, err
		}
		return len(tree.FindAll(ast.KindParameter)), nil
	})

	if errs != nil {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(results) != len(files) {
		t.Fatalf("Expected %d results, got %d", len(files), len(results))
	}
	if n := created.Load(); n < 1 || n > workers {
		t.Errorf("created %d providers, want between 1 and %d", n, workers)
	}
	if closed.Load() != created.Load() {
		t.Errorf("closed %d of %d providers", closed.Load(), created.Load())
	}
}

func TestDefaultWorkers(t *testing.T) {
	if DefaultWorkers() < DefaultWorkerMultiplier {
		t.Errorf("DefaultWorkers() = %d, want at least %d", DefaultWorkers(), DefaultWorkerMultiplier)
	}
}

func BenchmarkMapFiles(b *testing.B) {
	tmpDir := b.TempDir()

	files := make([]string, 50)
	for i := range files {
		files[i] = createTestFile(b, tmpDir, fmt.Sprintf("F%d.java", i), fmt.Sprintf("class F%d { void f(int x) { use(x); } }", i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		results, _ := MapFilesN(context.Background(), files, Options{}, func(p ast.Provider, path string) (*ast.Tree, error) {
			return p.Parse(path)
		})
		if len(results) != len(files) {
			b.Fatalf("Expected %d results, got %d", len(files), len(results))
		}
	}
}

func createTestFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file %s: %v", name, err)
	}
	return path
}
