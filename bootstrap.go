package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// bareFolderName is the bare repository directory inside the project
// container.
const bareFolderName = ".bare"

// CloneBare clones a repository into the managed layout: a container
// directory holding the bare repository plus one directory per worktree. It
// returns the path of the initial worktree for the default branch.
func CloneBare(runner CommandRunner, url string, dir string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("repository url is required")
	}
	if dir == "" {
		dir = projectDirFromURL(url)
	}
	if dir == "" {
		return "", fmt.Errorf("cannot derive a directory name from %q, pass one explicitly", url)
	}
	if _, err := os.Stat(dir); err == nil {
		return "", fmt.Errorf("directory %s already exists", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	barePath := filepath.Join(dir, bareFolderName)
	if err := gitRun(runner, ".", "clone", "--bare", url, barePath); err != nil {
		return "", err
	}
	if err := writeGitdirFile(dir); err != nil {
		return "", err
	}
	// A bare clone records no fetch refspec; without one, fetch never
	// updates remote-tracking refs and ahead/behind stays blank.
	if err := gitRun(runner, dir, "config", "remote.origin.fetch", "+refs/heads/*:refs/remotes/origin/*"); err != nil {
		return "", err
	}
	if err := gitRun(runner, dir, "fetch", "origin"); err != nil {
		return "", err
	}

	branches := newBranchQuerier(runner, barePath)
	branch := branches.DefaultBranch()
	target := filepath.Join(dir, branch)
	if err := gitRun(runner, dir, "worktree", "add", target, branch); err != nil {
		return "", err
	}
	return target, nil
}

// InitBare creates an empty repository in the managed layout.
func InitBare(runner CommandRunner, dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("directory name is required")
	}
	barePath := filepath.Join(dir, bareFolderName)
	if _, err := os.Stat(barePath); err == nil {
		return "", fmt.Errorf("%s already exists", barePath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := gitRun(runner, ".", "init", "--bare", barePath); err != nil {
		return "", err
	}
	if err := writeGitdirFile(dir); err != nil {
		return "", err
	}
	return barePath, nil
}

// ConvertToBareLayout rewires an existing standard clone in place: the .git
// directory becomes the bare repository and the default branch gets a fresh
// worktree directory. Working files of the old checkout are left where they
// are for the user to move or delete.
func ConvertToBareLayout(runner CommandRunner, repoDir string) (string, error) {
	gitDir := filepath.Join(repoDir, ".git")
	info, err := os.Stat(gitDir)
	if err != nil {
		return "", fmt.Errorf("%s is not a git repository", repoDir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s already uses a gitdir file", repoDir)
	}

	barePath := filepath.Join(repoDir, bareFolderName)
	if _, err := os.Stat(barePath); err == nil {
		return "", fmt.Errorf("%s already exists", barePath)
	}
	if err := os.Rename(gitDir, barePath); err != nil {
		return "", err
	}
	if err := gitRun(runner, barePath, "config", "core.bare", "true"); err != nil {
		return "", err
	}
	if err := writeGitdirFile(repoDir); err != nil {
		return "", err
	}

	branches := newBranchQuerier(runner, barePath)
	branch := branches.DefaultBranch()
	target := filepath.Join(repoDir, branch)
	if err := gitRun(runner, repoDir, "worktree", "add", target, branch); err != nil {
		return "", err
	}
	return target, nil
}

func writeGitdirFile(dir string) error {
	content := "gitdir: ./" + bareFolderName + "\n"
	return os.WriteFile(filepath.Join(dir, ".git"), []byte(content), 0o644)
}

// projectDirFromURL derives a directory name from a clone URL, mirroring
// what git itself would pick.
func projectDirFromURL(url string) string {
	url = strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(url), "/"), ".git")
	if url == "" {
		return ""
	}
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}
	return url
}
