package vcs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/panbanda/paramlint/pkg/parser"
)

// ChangedFiles returns the absolute paths of Java sources that differ from
// rev: files changed by commits between rev and HEAD plus staged, modified
// and untracked files in the working tree. Deleted files are left out.
func ChangedFiles(opener Opener, path, rev string) ([]string, error) {
	repo, err := opener.PlainOpenWithDetect(path)
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", path, err)
	}

	names, err := committedChanges(repo, rev)
	if err != nil {
		return nil, err
	}

	status, err := repo.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}
	for name, s := range status {
		if s.Worktree == Deleted || (s.Staging == Deleted && s.Worktree != Untracked) {
			continue
		}
		if s.Staging == Unmodified && s.Worktree == Unmodified {
			continue
		}
		names[name] = true
	}

	root := repo.RepoPath()
	files := make([]string, 0, len(names))
	for name := range names {
		if parser.DetectLanguage(name) == parser.LangUnknown {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			continue
		}
		files = append(files, abs)
	}
	sort.Strings(files)
	return files, nil
}

// committedChanges collects the destination names of every change between
// the rev tree and the HEAD tree.
func committedChanges(repo Repository, rev string) (map[string]bool, error) {
	baseHash, err := repo.ResolveRevision(rev)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", rev, err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	baseTree, err := treeOf(repo, rev, baseHash)
	if err != nil {
		return nil, err
	}
	headTree, err := treeOf(repo, "HEAD", head.Hash())
	if err != nil {
		return nil, err
	}

	changes, err := baseTree.Diff(headTree)
	if err != nil {
		return nil, fmt.Errorf("diff %s..HEAD: %w", rev, err)
	}

	names := make(map[string]bool, len(changes))
	for _, c := range changes {
		if to := c.ToName(); to != "" {
			names[to] = true
		}
	}
	return names, nil
}

func treeOf(repo Repository, label string, hash plumbing.Hash) (Tree, error) {
	commit, err := repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", label, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("load tree of %s: %w", label, err)
	}
	return tree, nil
}

// Filter keeps the files whose absolute path is in changed, preserving the
// order of files.
func Filter(files, changed []string) []string {
	set := make(map[string]bool, len(changed))
	for _, c := range changed {
		set[filepath.Clean(c)] = true
	}

	var result []string
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		if set[abs] {
			result = append(result, f)
		}
	}
	return result
}
