package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// findBareRoot locates the bare repository that owns the given directory.
// Two layouts are recognized: a `.bare` folder in the directory (or one of
// its parents), and a linked worktree whose common git dir is a bare repo.
func findBareRoot(runner CommandRunner, startPath string) (string, error) {
	if root, ok := findBareFolder(runner, startPath); ok {
		return root, nil
	}
	if !isGitRepo(runner, startPath) {
		return "", errNotInGitRepository
	}
	commonDir, err := gitCommonDir(runner, startPath)
	if err != nil {
		return "", err
	}
	bare, err := isBareRepo(runner, commonDir)
	if err != nil {
		return "", err
	}
	if !bare {
		return "", errNotBareLayout
	}
	return commonDir, nil
}

// findBareFolder walks up from path looking for the `<dir>/.bare` layout.
func findBareFolder(runner CommandRunner, path string) (string, bool) {
	dir := filepath.Clean(path)
	for {
		candidate := filepath.Join(dir, ".bare")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			if bare, err := isBareRepo(runner, candidate); err == nil && bare {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func isBareRepo(runner CommandRunner, path string) (bool, error) {
	out, err := gitOutput(runner, path, "rev-parse", "--is-bare-repository")
	if err != nil {
		return false, err
	}
	return out == "true", nil
}

func isGitRepo(runner CommandRunner, path string) bool {
	_, err := gitOutput(runner, path, "rev-parse", "--git-dir")
	return err == nil
}

func gitCommonDir(runner CommandRunner, path string) (string, error) {
	out, err := gitOutput(runner, path, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", errNotInGitRepository
	}
	if filepath.IsAbs(out) {
		return filepath.Clean(out), nil
	}
	abs, err := filepath.Abs(filepath.Join(path, out))
	if err != nil {
		return "", err
	}
	return abs, nil
}

// resolveCurrentWorktree maps the launch directory to the worktree that
// contains it, if any. Used for the jump-back gesture; failure is not an
// error, the shortcut is simply unavailable.
func resolveCurrentWorktree(launchPath string, records []WorktreeRecord) string {
	abs, err := filepath.Abs(launchPath)
	if err != nil {
		return ""
	}
	best := ""
	for _, rec := range records {
		if rec.IsBare {
			continue
		}
		if abs == rec.Path || strings.HasPrefix(abs, rec.Path+string(filepath.Separator)) {
			if len(rec.Path) > len(best) {
				best = rec.Path
			}
		}
	}
	return best
}

var errNotBareLayout = errors.New("repository is not a bare + worktrees layout")
