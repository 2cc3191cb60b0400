// Package testutil holds fixtures shared by package tests: file trees, git
// repositories and Java sources.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// UnusedSource declares run(count, label) where only label is read, and a
// catch clause whose parameter e is never read.
const UnusedSource = `public class Sample {
    void run(int count, String label) {
        System.out.println(label);
    }

    void safe() {
        try {
            run(1, "a");
        } catch (RuntimeException e) {
        }
    }
}
`

// CleanSource uses every parameter it declares.
const CleanSource = `public class Clean {
    int twice(int n) {
        return n * 2;
    }
}
`

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// ReadFile reads content from a file.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// CreateFileTree creates multiple files from a map of slash-separated
// path -> content.
func CreateFileTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
}

// RelSet returns files as slash-separated paths relative to root.
func RelSet(t testing.TB, root string, files []string) map[string]bool {
	t.Helper()
	found := make(map[string]bool, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("Rel(%s) error: %v", f, err)
		}
		found[filepath.ToSlash(rel)] = true
	}
	return found
}

// InitRepo creates an empty git repository in dir.
func InitRepo(t testing.TB, dir string) *git.Repository {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit(%s) error: %v", dir, err)
	}
	return repo
}

// Commit writes files under root, stages them and commits.
func Commit(t testing.TB, repo *git.Repository, root string, files map[string]string) plumbing.Hash {
	t.Helper()
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() error: %v", err)
	}
	for name, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
		if _, err := w.Add(name); err != nil {
			t.Fatalf("Add(%s) error: %v", name, err)
		}
	}
	hash, err := w.Commit("update", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	return hash
}
