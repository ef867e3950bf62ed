package main

import (
	"fmt"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// branchQuerier answers read-side branch questions against the bare root.
// It opens the repository in-process with go-git and falls back to the
// command runner when the repository cannot be opened that way (go-git's
// linked-worktree support is incomplete, but the bare root itself is fine).
type branchQuerier struct {
	runner CommandRunner
	root   string
}

func newBranchQuerier(runner CommandRunner, bareRoot string) *branchQuerier {
	return &branchQuerier{runner: runner, root: bareRoot}
}

func (q *branchQuerier) open() (*git.Repository, error) {
	return git.PlainOpenWithOptions(q.root, &git.PlainOpenOptions{DetectDotGit: true})
}

func (q *branchQuerier) refExists(name string) bool {
	repo, err := q.open()
	if err != nil {
		_, err := gitOutput(q.runner, q.root, "show-ref", "--verify", "--quiet", name)
		return err == nil
	}
	_, err = repo.Reference(plumbing.ReferenceName(name), true)
	return err == nil
}

func (q *branchQuerier) LocalBranchExists(branch string) bool {
	return q.refExists("refs/heads/" + branch)
}

func (q *branchQuerier) RemoteBranchExists(branch string) bool {
	return q.refExists("refs/remotes/origin/" + branch)
}

// ListLocalBranches returns local branch short names, sorted.
func (q *branchQuerier) ListLocalBranches() ([]string, error) {
	repo, err := q.open()
	if err != nil {
		return q.listLocalBranchesViaGit()
	}
	iter, err := repo.Branches()
	if err != nil {
		return q.listLocalBranchesViaGit()
	}
	defer iter.Close()

	var branches []string
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		branches = append(branches, ref.Name().Short())
		return nil
	})
	sort.Strings(branches)
	return branches, nil
}

func (q *branchQuerier) listLocalBranchesViaGit() ([]string, error) {
	out, err := gitOutput(q.runner, q.root, "for-each-ref", "--format=%(refname:short)", "refs/heads/")
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(line)
		if name != "" {
			branches = append(branches, name)
		}
	}
	sort.Strings(branches)
	return branches, nil
}

// DefaultBranch resolves the branch HEAD points at, falling back to common
// names and finally "main".
func (q *branchQuerier) DefaultBranch() string {
	if repo, err := q.open(); err == nil {
		if head, err := repo.Reference(plumbing.HEAD, false); err == nil {
			if head.Type() == plumbing.SymbolicReference {
				target := head.Target()
				if target.IsBranch() {
					return target.Short()
				}
			}
		}
	}
	if ref, err := gitOutput(q.runner, q.root, "symbolic-ref", "--short", "HEAD"); err == nil && ref != "" {
		return ref
	}
	for _, name := range []string{"main", "master"} {
		if q.LocalBranchExists(name) {
			return name
		}
	}
	return "main"
}

// resolveBaseRef picks the base for a new branch: an explicit base wins,
// remote-qualified if origin has it, else the repository default branch.
func (q *branchQuerier) resolveBaseRef(explicit string) string {
	base := strings.TrimSpace(explicit)
	if base == "" {
		base = q.DefaultBranch()
	}
	if strings.Contains(base, "/") {
		return base
	}
	if q.RemoteBranchExists(base) {
		return fmt.Sprintf("origin/%s", base)
	}
	return base
}
