package main

import (
	"fmt"
	"path/filepath"
	"strings"

	uiview "github.com/owtui/owt/ui"
)

func (m model) View() string {
	switch m.mode {
	case modeAddTypeSelect:
		return m.overlay(m.viewAddTypeSelect())
	case modeAddInput:
		return m.overlay(m.viewAddInput())
	case modeConfirmDelete:
		return m.overlay(m.viewConfirmDelete())
	case modeMergePicker:
		return m.overlay(m.viewMergePicker())
	case modeConfigEditor:
		return m.overlay(m.viewConfigEditor())
	case modeBranchTypeEditor:
		return m.overlay(m.viewBranchTypeEditor())
	case modeHelp:
		return m.overlay(m.viewHelp())
	}
	return m.viewList()
}

func (m model) overlay(modal string) string {
	return uiview.Center(modal, m.width, m.height)
}

func (m model) viewList() string {
	var b strings.Builder

	project := filepath.Base(filepath.Dir(m.bareRoot))
	title := m.styles.Title.Render("owt") + " " + m.styles.Subtle.Render(project)
	count := 0
	for _, rec := range m.session.Worktrees {
		if !rec.IsBare {
			count++
		}
	}
	meta := fmt.Sprintf("%s  %s", uiview.CountLabel(count), m.session.SortMode.Label())
	b.WriteString(title + "  " + m.styles.Subtle.Render(meta) + "\n\n")

	b.WriteString(uiview.RenderWorktreeTable(m.tableRows(), m.styles))
	b.WriteString("\n")

	switch {
	case m.filtering:
		b.WriteString(m.filterInput.View() + "\n")
	case m.message != nil && m.message.isError:
		b.WriteString(m.styles.Error.Render(m.message.text) + "\n")
	case m.message != nil:
		b.WriteString(m.styles.Message.Render(m.message.text) + "\n")
	case m.busy != nil:
		b.WriteString(m.styles.Accent.Render(m.spinner.View()+busyVerb(m.busy.Kind)) + "\n")
	default:
		b.WriteString("\n")
	}

	if m.verbose && m.lastVerbose != "" {
		b.WriteString(m.styles.Subtle.Render("$ "+m.lastVerbose) + "\n")
	}

	b.WriteString(uiview.HelpBar(m.styles,
		"enter", "open",
		"a", "add",
		"d", "delete",
		"f", "fetch",
		"p", "pull",
		"/", "filter",
		"s", "sort",
		"?", "help",
		"q", "quit",
	))
	return b.String()
}

func (m model) tableRows() []uiview.WorktreeRow {
	filtered := m.session.FilterText != ""
	rows := make([]uiview.WorktreeRow, 0, len(m.session.Worktrees))
	for i, rec := range m.session.Worktrees {
		row := uiview.WorktreeRow{
			Name:        rec.DisplayName(),
			Branch:      rec.BranchDisplay(),
			StatusLabel: statusLabel(rec),
			Status:      statusKind(rec.Status),
			Commit:      commitLabel(rec),
			Selected:    i == m.session.SelectedIndex,
			Current:     rec.Path != "" && rec.Path == m.session.CurrentWorktreePath,
			Bare:        rec.IsBare,
			Dimmed:      filtered && !rec.FilterMatch,
		}
		if m.busy != nil && m.busy.TargetPath != "" && m.busy.TargetPath == rec.Path {
			row.BusyLabel = m.spinner.View() + busyVerb(m.busy.Kind)
		}
		rows = append(rows, row)
	}
	return rows
}

func statusLabel(rec WorktreeRecord) string {
	if rec.IsBare {
		return ""
	}
	label := rec.Status.Symbol() + " " + rec.Status.String()
	if rec.AheadBehind != nil && (rec.AheadBehind.Ahead > 0 || rec.AheadBehind.Behind > 0) {
		label += fmt.Sprintf(" ↑%d↓%d", rec.AheadBehind.Ahead, rec.AheadBehind.Behind)
	}
	return label
}

func statusKind(s WorktreeStatus) uiview.StatusKind {
	switch s {
	case StatusConflict:
		return uiview.StatusKindConflict
	case StatusClean:
		return uiview.StatusKindClean
	default:
		return uiview.StatusKindDirty
	}
}

func commitLabel(rec WorktreeRecord) string {
	if rec.IsBare {
		return ""
	}
	return rec.LastCommitAge
}

func busyVerb(kind opKind) string {
	switch kind {
	case opAdd:
		return "Creating worktree..."
	case opDelete:
		return "Deleting..."
	case opFetch:
		return "Fetching..."
	case opPull:
		return "Pulling..."
	case opPush:
		return "Pushing..."
	case opMerge:
		return "Merging..."
	case opPrune:
		return "Pruning..."
	default:
		return "Working..."
	}
}

func (m model) viewAddTypeSelect() string {
	var b strings.Builder
	for i, bt := range m.cfg.BranchTypes {
		line := bt.Name
		if bt.Prefix != "" {
			line += m.styles.Subtle.Render(" (" + bt.Prefix + "...)")
		}
		if bt.Shortcut != "" {
			line = m.styles.HelpKey.Render(bt.Shortcut) + " " + line
		} else {
			line = "  " + line
		}
		b.WriteString(m.selectLine(line, i == m.addTypeIndex) + "\n")
	}
	b.WriteString(m.selectLine("  no preset", m.addTypeIndex == len(m.cfg.BranchTypes)) + "\n")
	b.WriteString("\n" + uiview.HelpBar(m.styles, "enter", "select", "esc", "cancel"))
	return uiview.Modal(m.styles, "Branch type", b.String())
}

func (m model) selectLine(line string, selected bool) string {
	if selected {
		return m.styles.Selected.Render("› ") + line
	}
	return "  " + line
}

func (m model) viewAddInput() string {
	var b strings.Builder
	if m.addHasType && m.addType.Prefix != "" {
		b.WriteString(m.styles.Subtle.Render("prefix: "+m.addType.Prefix) + "\n")
	}
	b.WriteString(m.addInput.View() + "\n\n")
	b.WriteString(uiview.HelpBar(m.styles, "enter", "create", "esc", "cancel"))
	return uiview.Modal(m.styles, "New worktree", b.String())
}

func (m model) viewConfirmDelete() string {
	selected, _ := m.session.Selected()
	var b strings.Builder
	b.WriteString(m.styles.Normal.Render("Delete worktree "+selected.DisplayName()+"?") + "\n\n")
	b.WriteString(uiview.Checkbox(m.styles, "also delete branch "+selected.BranchDisplay()+" (b)", m.confirmDeleteBranch) + "\n")
	b.WriteString(uiview.Checkbox(m.styles, "force, discard local changes (f)", m.confirmForce) + "\n")
	if selected.Status != StatusClean && !m.confirmForce {
		b.WriteString("\n" + m.styles.Warning.Render("worktree has uncommitted changes") + "\n")
	}
	b.WriteString("\n" + uiview.HelpBar(m.styles, "y", "delete", "n", "cancel"))
	return uiview.DangerModal(m.styles, "Delete", b.String())
}

func (m model) viewMergePicker() string {
	var b strings.Builder
	for i, branch := range m.mergeBranches {
		b.WriteString(m.selectLine(m.styles.Branch.Render(branch), i == m.mergeIndex) + "\n")
	}
	b.WriteString("\n" + uiview.HelpBar(m.styles, "enter", "merge", "esc", "cancel"))
	return uiview.Modal(m.styles, "Merge branch", b.String())
}

func (m model) viewConfigEditor() string {
	var b strings.Builder
	for i, field := range configFields {
		value := m.configFieldValue(i)
		if value == "" {
			value = m.styles.Subtle.Render("(unset)")
		}
		line := uiview.PadOrTrim(field, 16) + value
		if i == m.cfgFieldIndex && m.cfgEditing {
			line = uiview.PadOrTrim(field, 16) + m.cfgInput.View()
		}
		b.WriteString(m.selectLine(line, i == m.cfgFieldIndex) + "\n")
	}
	b.WriteString("\n" + uiview.HelpBar(m.styles, "enter", "edit", "esc", "back"))
	return uiview.Modal(m.styles, "Settings", b.String())
}

func (m model) viewBranchTypeEditor() string {
	var b strings.Builder
	if len(m.cfg.BranchTypes) == 0 {
		b.WriteString(m.styles.Subtle.Render("no branch types, press n to add one") + "\n")
	}
	for i, bt := range m.cfg.BranchTypes {
		values := []string{bt.Name, bt.Prefix, bt.Base, bt.Shortcut}
		var cells []string
		for f, v := range values {
			if v == "" {
				v = "·"
			}
			cell := uiview.PadOrTrim(v, 14)
			if i == m.btIndex && f == m.btField {
				if m.btEditing {
					cell = m.btInput.View()
				} else {
					cell = m.styles.Accent.Render(cell)
				}
			}
			cells = append(cells, cell)
		}
		b.WriteString(m.selectLine(strings.Join(cells, " "), i == m.btIndex) + "\n")
	}
	b.WriteString("\n" + m.styles.Subtle.Render(uiview.PadOrTrim("  name", 17)+uiview.PadOrTrim("prefix", 15)+uiview.PadOrTrim("base", 15)+"shortcut") + "\n")
	b.WriteString(uiview.HelpBar(m.styles, "enter", "edit", "n", "new", "D", "remove", "esc", "back"))
	return uiview.Modal(m.styles, "Branch types", b.String())
}

func (m model) viewHelp() string {
	rows := [][2]string{
		{"j/k", "move"},
		{"gg/G", "top / bottom"},
		{"ctrl+d/u", "half page"},
		{"gc", "jump to current worktree"},
		{"/", "filter"},
		{"s", "cycle sort"},
		{"enter", "open worktree"},
		{"a", "add worktree"},
		{"d", "delete worktree"},
		{"r", "refresh"},
		{"f", "fetch"},
		{"p / P", "pull / push"},
		{"m / M", "merge upstream / branch"},
		{"x", "prune stale records"},
		{"o", "open in editor"},
		{"t", "open terminal"},
		{"y", "copy path"},
		{"v", "toggle command echo"},
		{"c", "settings"},
		{"b", "branch types"},
		{"q", "quit"},
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(m.styles.HelpKey.Render(uiview.PadOrTrim(row[0], 10)) + m.styles.HelpText.Render(row[1]) + "\n")
	}
	return uiview.Modal(m.styles, "Keys", b.String())
}
