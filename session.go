package main

import (
	"sort"
	"strings"
)

// SortMode selects the ordering of the worktree list. The bare record always
// sorts first regardless of mode.
type SortMode int

const (
	SortByName SortMode = iota
	SortByRecency
	SortByStatus
)

func (s SortMode) Next() SortMode {
	switch s {
	case SortByName:
		return SortByRecency
	case SortByRecency:
		return SortByStatus
	default:
		return SortByName
	}
}

func (s SortMode) Label() string {
	switch s {
	case SortByRecency:
		return "sort: recent"
	case SortByStatus:
		return "sort: status"
	default:
		return "sort: name"
	}
}

// SessionState is the in-memory model of the worktree list. It is owned
// exclusively by the program loop; background work only ever receives copies
// of paths and flags, and reports back through messages.
type SessionState struct {
	Worktrees           []WorktreeRecord
	SelectedIndex       int
	SortMode            SortMode
	FilterText          string
	CurrentWorktreePath string
}

// NewSessionState builds the initial session, sorted by name, with selection
// on the first non-bare record.
func NewSessionState(records []WorktreeRecord, currentPath string) *SessionState {
	s := &SessionState{
		Worktrees:           records,
		SortMode:            SortByName,
		CurrentWorktreePath: currentPath,
	}
	s.applySort()
	s.SelectedIndex = s.defaultSelection()
	s.reapplyFilter()
	return s
}

func (s *SessionState) defaultSelection() int {
	for i, wt := range s.Worktrees {
		if !wt.IsBare {
			return i
		}
	}
	return 0
}

func (s *SessionState) Selected() (WorktreeRecord, bool) {
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Worktrees) {
		return WorktreeRecord{}, false
	}
	return s.Worktrees[s.SelectedIndex], true
}

// Replace swaps in a freshly built inventory, re-applies the sort mode and
// filter, and preserves the selected worktree by path where possible.
func (s *SessionState) Replace(records []WorktreeRecord) {
	selectedPath := ""
	if wt, ok := s.Selected(); ok {
		selectedPath = wt.Path
	}
	s.Worktrees = records
	s.applySort()
	s.reapplyFilter()
	if !s.selectPath(selectedPath) {
		s.clampSelection()
	}
}

// RemovePath prunes one record in place, without a full inventory rebuild.
// Used after a successful delete for latency.
func (s *SessionState) RemovePath(path string) {
	selectedPath := ""
	if wt, ok := s.Selected(); ok {
		selectedPath = wt.Path
	}
	kept := s.Worktrees[:0]
	for _, wt := range s.Worktrees {
		if wt.Path != path {
			kept = append(kept, wt)
		}
	}
	s.Worktrees = kept
	if selectedPath != path && s.selectPath(selectedPath) {
		return
	}
	s.clampSelection()
}

// CycleSort advances to the next sort mode, keeping the selected record.
func (s *SessionState) CycleSort() {
	s.SetSort(s.SortMode.Next())
}

func (s *SessionState) SetSort(mode SortMode) {
	selectedPath := ""
	if wt, ok := s.Selected(); ok {
		selectedPath = wt.Path
	}
	s.SortMode = mode
	s.applySort()
	if !s.selectPath(selectedPath) {
		s.clampSelection()
	}
}

func (s *SessionState) applySort() {
	mode := s.SortMode
	sort.SliceStable(s.Worktrees, func(i, j int) bool {
		a, b := s.Worktrees[i], s.Worktrees[j]
		if a.IsBare != b.IsBare {
			return a.IsBare
		}
		switch mode {
		case SortByRecency:
			if a.LastCommitUnix != b.LastCommitUnix {
				return a.LastCommitUnix > b.LastCommitUnix
			}
		case SortByStatus:
			if a.Status.severityRank() != b.Status.severityRank() {
				return a.Status.severityRank() < b.Status.severityRank()
			}
		}
		return strings.ToLower(a.DisplayName()) < strings.ToLower(b.DisplayName())
	})
}

// SetFilter records the filter text, marks matching rows, and jumps the
// selection to the first match in the current order. Matching is always
// evaluated against the full record list, never a previous filter pass.
func (s *SessionState) SetFilter(text string) {
	s.FilterText = text
	s.reapplyFilter()
	if strings.TrimSpace(text) == "" {
		return
	}
	for i, wt := range s.Worktrees {
		if wt.FilterMatch {
			s.SelectedIndex = i
			return
		}
	}
}

func (s *SessionState) ClearFilter() {
	s.FilterText = ""
	s.reapplyFilter()
}

func (s *SessionState) reapplyFilter() {
	query := strings.ToLower(strings.TrimSpace(s.FilterText))
	for i := range s.Worktrees {
		if query == "" {
			s.Worktrees[i].FilterMatch = true
			continue
		}
		name := strings.ToLower(s.Worktrees[i].DisplayName())
		branch := strings.ToLower(s.Worktrees[i].Branch)
		s.Worktrees[i].FilterMatch = strings.Contains(name, query) || strings.Contains(branch, query)
	}
}

func (s *SessionState) MoveUp()   { s.moveBy(-1) }
func (s *SessionState) MoveDown() { s.moveBy(1) }

func (s *SessionState) MoveTop() {
	if len(s.Worktrees) > 0 {
		s.SelectedIndex = 0
	}
}

func (s *SessionState) MoveBottom() {
	if len(s.Worktrees) > 0 {
		s.SelectedIndex = len(s.Worktrees) - 1
	}
}

// MoveHalfPage moves by half the visible height, negative for up.
func (s *SessionState) MoveHalfPage(visible int, up bool) {
	step := visible / 2
	if step < 1 {
		step = 1
	}
	if up {
		step = -step
	}
	s.moveBy(step)
}

func (s *SessionState) moveBy(delta int) {
	if len(s.Worktrees) == 0 {
		return
	}
	s.SelectedIndex = clamp(s.SelectedIndex+delta, 0, len(s.Worktrees)-1)
}

// JumpToCurrent selects the worktree the session was launched from.
func (s *SessionState) JumpToCurrent() bool {
	if s.CurrentWorktreePath == "" {
		return false
	}
	return s.selectPath(s.CurrentWorktreePath)
}

func (s *SessionState) selectPath(path string) bool {
	if path == "" {
		return false
	}
	for i, wt := range s.Worktrees {
		if wt.Path == path {
			s.SelectedIndex = i
			return true
		}
	}
	return false
}

func (s *SessionState) clampSelection() {
	if len(s.Worktrees) == 0 {
		s.SelectedIndex = 0
		return
	}
	s.SelectedIndex = clamp(s.SelectedIndex, 0, len(s.Worktrees)-1)
}

func clamp(v int, lo int, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
