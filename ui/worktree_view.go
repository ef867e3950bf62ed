package ui

import (
	"fmt"
	"strings"
)

// StatusKind mirrors the severity of a worktree status for coloring.
type StatusKind int

const (
	StatusKindClean StatusKind = iota
	StatusKindDirty
	StatusKindConflict
)

// WorktreeRow is the plain display data for one table row.
type WorktreeRow struct {
	Name        string
	Branch      string
	StatusLabel string
	Status      StatusKind
	Commit      string
	Selected    bool
	Current     bool
	Bare        bool
	Dimmed      bool
	BusyLabel   string
}

const (
	cursorWidth = 2
	nameWidth   = 24
	branchWidth = 28
	statusWidth = 20
	commitWidth = 22
)

// RenderWorktreeTable renders the worktree list. Dimming is how filtered-out
// rows are shown; they are never removed from the table.
func RenderWorktreeTable(rows []WorktreeRow, styles Styles) string {
	var b strings.Builder
	header := formatRow("", "Name", "Branch", "Status", "Commit")
	b.WriteString(styles.Header.Render(header))
	b.WriteString("\n")

	for _, row := range rows {
		cursor := "  "
		switch {
		case row.Selected && row.Current:
			cursor = "● "
		case row.Selected:
			cursor = "› "
		case row.Current:
			cursor = "◦ "
		}

		status := row.StatusLabel
		if row.BusyLabel != "" {
			status = row.BusyLabel
		}

		line := formatRow(cursor, row.Name, row.Branch, status, row.Commit)
		switch {
		case row.Dimmed:
			b.WriteString(styles.Dimmed.Render(line))
		case row.Selected:
			b.WriteString(styles.Selected.Render(line))
		case row.Bare:
			b.WriteString(styles.Bare.Render(line))
		case row.Status == StatusKindConflict:
			b.WriteString(styles.StatusConflict.Render(line))
		case row.Status == StatusKindDirty:
			b.WriteString(styles.StatusDirty.Render(line))
		default:
			b.WriteString(styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatRow(cursor string, name string, branch string, status string, commit string) string {
	return PadOrTrim(cursor, cursorWidth) +
		PadOrTrim(name, nameWidth) + " " +
		PadOrTrim(branch, branchWidth) + " " +
		PadOrTrim(status, statusWidth) + " " +
		PadOrTrim(commit, commitWidth)
}

// PadOrTrim fits a string to an exact display width.
func PadOrTrim(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width <= 1 {
			return string(runes[:width])
		}
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(runes))
}

// HelpBar renders key/action pairs in a single line.
func HelpBar(styles Styles, pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, styles.HelpKey.Render(pairs[i])+" "+styles.HelpText.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}

// Checkbox renders a toggle line for confirmation modals.
func Checkbox(styles Styles, label string, checked bool) string {
	box := "[ ]"
	style := styles.Subtle
	if checked {
		box = "[x]"
		style = styles.Warning
	}
	return style.Render(box) + " " + styles.Normal.Render(label)
}

// CountLabel formats the non-bare worktree count for the header.
func CountLabel(n int) string {
	if n == 1 {
		return "1 worktree"
	}
	return fmt.Sprintf("%d worktrees", n)
}
