package main

import "path/filepath"

// WorktreeStatus summarizes the working-directory state of a single worktree.
type WorktreeStatus int

const (
	StatusClean WorktreeStatus = iota
	StatusStaged
	StatusUnstaged
	StatusMixed
	StatusConflict
)

func (s WorktreeStatus) String() string {
	switch s {
	case StatusStaged:
		return "staged"
	case StatusUnstaged:
		return "unstaged"
	case StatusMixed:
		return "mixed"
	case StatusConflict:
		return "conflict"
	default:
		return "clean"
	}
}

func (s WorktreeStatus) Symbol() string {
	switch s {
	case StatusStaged:
		return "+"
	case StatusUnstaged:
		return "~"
	case StatusMixed:
		return "*"
	case StatusConflict:
		return "!"
	default:
		return "✓"
	}
}

// severityRank orders statuses for the ByStatus sort mode. Lower sorts first.
func (s WorktreeStatus) severityRank() int {
	switch s {
	case StatusConflict:
		return 0
	case StatusMixed:
		return 1
	case StatusUnstaged:
		return 2
	case StatusStaged:
		return 3
	default:
		return 4
	}
}

// AheadBehind holds commit counts relative to the configured upstream.
type AheadBehind struct {
	Ahead  int
	Behind int
}

// WorktreeRecord is one entry of the session inventory: a linked worktree,
// or the single bare root.
type WorktreeRecord struct {
	Path           string
	Branch         string // empty for bare or detached HEAD
	IsBare         bool
	Status         WorktreeStatus
	LastCommitAge  string       // relative display, empty for the bare record
	LastCommitUnix int64        // 0 when unknown
	AheadBehind    *AheadBehind // nil when no upstream is configured

	// FilterMatch is a presentation hint maintained by the session filter;
	// non-matching rows stay in the list and render dimmed.
	FilterMatch bool
}

func (w WorktreeRecord) DisplayName() string {
	if w.IsBare {
		return "(bare)"
	}
	name := filepath.Base(w.Path)
	if name == "." || name == string(filepath.Separator) {
		return w.Path
	}
	return name
}

func (w WorktreeRecord) BranchDisplay() string {
	if w.Branch == "" {
		return "-"
	}
	return w.Branch
}
