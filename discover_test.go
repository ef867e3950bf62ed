package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindBareRoot_BareFolderLayout(t *testing.T) {
	tmp := t.TempDir()
	barePath := filepath.Join(tmp, "proj", ".bare")
	nested := filepath.Join(tmp, "proj", "main", "src", "deep")
	if err := os.MkdirAll(barePath, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	runner := newFakeRunner()
	runner.scriptInDir(barePath, "git rev-parse --is-bare-repository", "true\n")

	got, err := findBareRoot(runner, nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != barePath {
		t.Fatalf("expected %s, got %s", barePath, got)
	}
}

func TestFindBareRoot_CommonDirFallback(t *testing.T) {
	tmp := t.TempDir()
	runner := newFakeRunner()
	runner.scriptInDir(tmp, "git rev-parse --git-dir", ".git\n")
	runner.scriptInDir(tmp, "git rev-parse --git-common-dir", "/repo/.bare\n")
	runner.scriptInDir("/repo/.bare", "git rev-parse --is-bare-repository", "true\n")

	got, err := findBareRoot(runner, tmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/repo/.bare" {
		t.Fatalf("expected /repo/.bare, got %s", got)
	}
}

func TestFindBareRoot_NonBareCommonDir(t *testing.T) {
	tmp := t.TempDir()
	runner := newFakeRunner()
	runner.scriptInDir(tmp, "git rev-parse --git-dir", ".git\n")
	runner.scriptInDir(tmp, "git rev-parse --git-common-dir", "/repo/.git\n")
	runner.scriptInDir("/repo/.git", "git rev-parse --is-bare-repository", "false\n")

	_, err := findBareRoot(runner, tmp)
	if !errors.Is(err, errNotBareLayout) {
		t.Fatalf("expected errNotBareLayout, got %v", err)
	}
}

func TestFindBareRoot_OutsideRepository(t *testing.T) {
	tmp := t.TempDir()
	_, err := findBareRoot(newFakeRunner(), tmp)
	if !errors.Is(err, errNotInGitRepository) {
		t.Fatalf("expected errNotInGitRepository, got %v", err)
	}
}

func TestResolveCurrentWorktree_LongestPrefixWins(t *testing.T) {
	records := []WorktreeRecord{
		{Path: "/repo/main"},
		{Path: "/repo/main-v2"},
		{Path: "/repo/.bare", IsBare: true},
	}
	if got := resolveCurrentWorktree("/repo/main-v2/src", records); got != "/repo/main-v2" {
		t.Fatalf("expected /repo/main-v2, got %q", got)
	}
	if got := resolveCurrentWorktree("/repo/main", records); got != "/repo/main" {
		t.Fatalf("expected exact match, got %q", got)
	}
	if got := resolveCurrentWorktree("/elsewhere", records); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
	// The bare record never counts as the current worktree.
	if got := resolveCurrentWorktree("/repo/.bare", records); got != "" {
		t.Fatalf("bare must not match, got %q", got)
	}
}
