package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProjectDirFromURL(t *testing.T) {
	cases := map[string]string{
		"https://example.com/team/widget.git": "widget",
		"git@example.com:team/widget.git":     "widget",
		"https://example.com/team/widget/":    "widget",
		"widget":                              "widget",
		"  ":                                  "",
	}
	for url, want := range cases {
		if got := projectDirFromURL(url); got != want {
			t.Fatalf("projectDirFromURL(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestInitBare_CreatesLayout(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "widget")
	barePath := filepath.Join(dir, ".bare")

	runner := newFakeRunner()
	runner.script("git init --bare "+barePath, "")

	got, err := InitBare(runner, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != barePath {
		t.Fatalf("expected %s, got %s", barePath, got)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".git"))
	if err != nil {
		t.Fatalf("gitdir file missing: %v", err)
	}
	if strings.TrimSpace(string(data)) != "gitdir: ./.bare" {
		t.Fatalf("unexpected gitdir file content: %q", data)
	}
}

func TestInitBare_RefusesExisting(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "widget")
	if err := os.MkdirAll(filepath.Join(dir, ".bare"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := InitBare(newFakeRunner(), dir); err == nil {
		t.Fatalf("expected error for existing .bare")
	}
}

func TestCloneBare_RequiresURL(t *testing.T) {
	if _, err := CloneBare(newFakeRunner(), "  ", ""); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestCloneBare_RefusesExistingDirectory(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "widget")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := CloneBare(newFakeRunner(), "https://example.com/widget.git", dir); err == nil {
		t.Fatalf("expected error for existing directory")
	}
}

func TestConvertToBareLayout_RequiresGitDirectory(t *testing.T) {
	tmp := t.TempDir()
	if _, err := ConvertToBareLayout(newFakeRunner(), tmp); err == nil {
		t.Fatalf("expected error outside a repository")
	}

	// A gitdir file means the layout is already converted.
	if err := os.WriteFile(filepath.Join(tmp, ".git"), []byte("gitdir: ./.bare\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ConvertToBareLayout(newFakeRunner(), tmp); err == nil {
		t.Fatalf("expected error for already converted repository")
	}
}
