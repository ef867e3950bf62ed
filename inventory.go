package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// BuildInventory produces the full worktree list for a bare root. A failure
// to list worktrees at all is a hard error; failures while enriching a
// single worktree (status, commit age, ahead/behind) degrade only that
// record, so one broken checkout never hides the rest.
func BuildInventory(runner CommandRunner, bareRoot string) ([]WorktreeRecord, error) {
	out, err := gitOutput(runner, bareRoot, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("list worktrees: %w", err)
	}

	records := parseWorktreeList(out)
	for i := range records {
		if records[i].IsBare {
			continue
		}
		enrichRecord(runner, &records[i])
	}
	return records, nil
}

// parseWorktreeList parses `git worktree list --porcelain`: blocks delimited
// by a `worktree <path>` line, optionally followed by `branch <ref>`, a
// `bare` marker, or a `detached` marker, until the next block or EOF.
func parseWorktreeList(output string) []WorktreeRecord {
	var records []WorktreeRecord
	var current *WorktreeRecord

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "worktree "):
			records = append(records, WorktreeRecord{
				Path:        strings.TrimPrefix(line, "worktree "),
				FilterMatch: true,
			})
			current = &records[len(records)-1]
		case current == nil:
			// Stray line before any worktree block; ignore.
		case strings.HasPrefix(line, "branch "):
			ref := strings.TrimPrefix(line, "branch ")
			current.Branch = strings.TrimPrefix(ref, "refs/heads/")
		case line == "bare":
			current.IsBare = true
		case line == "detached":
			// No branch; BranchDisplay renders the placeholder.
		}
	}
	return records
}

func enrichRecord(runner CommandRunner, rec *WorktreeRecord) {
	// The porcelain report is column-positional; a leading space on the
	// first line is significant, so the output must not be trimmed.
	if report, _, err := runner.Run(rec.Path, "git", "status", "--porcelain"); err == nil {
		rec.Status = classifyStatus(report)
	} else {
		rec.Status = StatusClean
	}

	if unix, err := lastCommitUnix(runner, rec.Path); err == nil {
		rec.LastCommitUnix = unix
		rec.LastCommitAge = humanize.Time(time.Unix(unix, 0))
	}

	rec.AheadBehind = aheadBehind(runner, rec.Path)
}

func lastCommitUnix(runner CommandRunner, path string) (int64, error) {
	out, err := gitOutput(runner, path, "log", "-1", "--format=%ct")
	if err != nil {
		return 0, err
	}
	unix, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse commit time %q: %w", out, err)
	}
	return unix, nil
}

// aheadBehind computes two-sided commit counts against the configured
// upstream. A missing upstream is not an error; the counts are omitted.
func aheadBehind(runner CommandRunner, path string) *AheadBehind {
	out, err := gitOutput(runner, path, "rev-list", "--left-right", "--count", "@{upstream}...HEAD")
	if err != nil {
		return nil
	}
	parts := strings.Split(strings.TrimSpace(out), "\t")
	if len(parts) != 2 {
		return nil
	}
	behind, err1 := strconv.Atoi(parts[0])
	ahead, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil
	}
	return &AheadBehind{Ahead: ahead, Behind: behind}
}
