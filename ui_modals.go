package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) handleAddTypeSelectKey(key string) (tea.Model, tea.Cmd) {
	// index len(BranchTypes) is the "no preset" entry
	total := len(m.cfg.BranchTypes) + 1
	switch key {
	case "esc":
		m.mode = modeList
		return m, nil
	case "j", "down":
		m.addTypeIndex = clamp(m.addTypeIndex+1, 0, total-1)
		return m, nil
	case "k", "up":
		m.addTypeIndex = clamp(m.addTypeIndex-1, 0, total-1)
		return m, nil
	case "enter":
		if m.addTypeIndex < len(m.cfg.BranchTypes) {
			m.addType = m.cfg.BranchTypes[m.addTypeIndex]
			m.addHasType = true
		}
		return m.enterAddInput()
	}
	if bt, ok := m.cfg.BranchTypeByShortcut(key); ok {
		m.addType = bt
		m.addHasType = true
		return m.enterAddInput()
	}
	return m, nil
}

func (m model) enterAddInput() (tea.Model, tea.Cmd) {
	m.mode = modeAddInput
	m.addInput.SetValue("")
	m.addInput.Focus()
	return m, textinput.Blink
}

func (m model) handleAddInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.addInput.SetValue("")
		m.addInput.Blur()
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.addInput.Value())
		if name == "" {
			m.message = errorMessage("Branch name cannot be empty")
			return m, nil
		}
		branch := name
		base := ""
		if m.addHasType {
			branch = m.addType.Prefix + name
			base = m.addType.Base
		}
		cmd, err := m.orchestrator.RequestAdd(branch, base)
		if err != nil {
			m.message = errorMessage(err.Error())
			return m, nil
		}
		m.mode = modeList
		m.addInput.SetValue("")
		m.addInput.Blur()
		return m.markBusy(opAdd, cmd)
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m model) handleConfirmDeleteKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "n":
		m.mode = modeList
		return m, nil
	case "b":
		m.confirmDeleteBranch = !m.confirmDeleteBranch
		return m, nil
	case "f":
		m.confirmForce = !m.confirmForce
		return m, nil
	case "y", "enter":
		selected, ok := m.session.Selected()
		if !ok {
			m.mode = modeList
			return m, nil
		}
		cmd, err := m.orchestrator.RequestDelete(selected, m.confirmDeleteBranch, m.confirmForce)
		if err != nil {
			m.mode = modeList
			m.message = errorMessage(err.Error())
			return m, nil
		}
		m.mode = modeList
		return m.markBusy(opDelete, cmd)
	}
	return m, nil
}

func (m model) handleMergePickerKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = modeList
		return m, nil
	case "j", "down":
		m.mergeIndex = clamp(m.mergeIndex+1, 0, len(m.mergeBranches)-1)
		return m, nil
	case "k", "up":
		m.mergeIndex = clamp(m.mergeIndex-1, 0, len(m.mergeBranches)-1)
		return m, nil
	case "enter":
		selected, ok := m.session.Selected()
		if !ok || len(m.mergeBranches) == 0 {
			m.mode = modeList
			return m, nil
		}
		cmd, err := m.orchestrator.RequestMergeBranch(selected, m.mergeBranches[m.mergeIndex])
		if err != nil {
			m.mode = modeList
			m.message = errorMessage(err.Error())
			return m, nil
		}
		m.mode = modeList
		return m.markBusy(opMerge, cmd)
	}
	return m, nil
}

// configFields lists the editable settings in display order.
var configFields = []string{"editor", "terminal", "copy_files", "post_add_script"}

func (m model) configFieldValue(i int) string {
	switch configFields[i] {
	case "editor":
		return m.cfg.Editor
	case "terminal":
		return m.cfg.Terminal
	case "copy_files":
		return strings.Join(m.cfg.CopyFiles, ", ")
	case "post_add_script":
		return m.cfg.PostAddScript
	}
	return ""
}

func (m *model) setConfigFieldValue(i int, value string) {
	value = strings.TrimSpace(value)
	switch configFields[i] {
	case "editor":
		m.cfg.Editor = value
	case "terminal":
		m.cfg.Terminal = value
	case "copy_files":
		m.cfg.CopyFiles = splitCommaList(value)
	case "post_add_script":
		m.cfg.PostAddScript = value
	}
}

func splitCommaList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (m model) handleConfigEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.cfgEditing {
		switch key {
		case "esc":
			m.cfgEditing = false
			m.cfgInput.SetValue("")
			m.cfgInput.Blur()
			return m, nil
		case "enter":
			m.setConfigFieldValue(m.cfgFieldIndex, m.cfgInput.Value())
			m.cfgEditing = false
			m.cfgInput.SetValue("")
			m.cfgInput.Blur()
			return m.saveProjectConfig()
		}
		var cmd tea.Cmd
		m.cfgInput, cmd = m.cfgInput.Update(msg)
		return m, cmd
	}

	switch key {
	case "esc", "q":
		m.mode = modeList
	case "j", "down":
		m.cfgFieldIndex = clamp(m.cfgFieldIndex+1, 0, len(configFields)-1)
	case "k", "up":
		m.cfgFieldIndex = clamp(m.cfgFieldIndex-1, 0, len(configFields)-1)
	case "enter":
		m.cfgEditing = true
		m.cfgInput.SetValue(m.configFieldValue(m.cfgFieldIndex))
		m.cfgInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// saveProjectConfig persists edits beside the bare repository so they travel
// with the project, then re-resolves environment fallbacks.
func (m model) saveProjectConfig() (tea.Model, tea.Cmd) {
	if err := m.cfg.SaveProject(m.bareRoot); err != nil {
		m.message = errorMessage(fmt.Sprintf("Save failed: %v", err))
		return m, nil
	}
	m.cfg.refreshResolved()
	m.message = infoMessage("Settings saved")
	return m, nil
}

var branchTypeFields = []string{"name", "prefix", "base", "shortcut"}

func (m model) branchTypeFieldValue() string {
	if m.btIndex >= len(m.cfg.BranchTypes) {
		return ""
	}
	bt := m.cfg.BranchTypes[m.btIndex]
	switch branchTypeFields[m.btField] {
	case "name":
		return bt.Name
	case "prefix":
		return bt.Prefix
	case "base":
		return bt.Base
	case "shortcut":
		return bt.Shortcut
	}
	return ""
}

func (m *model) setBranchTypeFieldValue(value string) {
	if m.btIndex >= len(m.cfg.BranchTypes) {
		return
	}
	value = strings.TrimSpace(value)
	bt := &m.cfg.BranchTypes[m.btIndex]
	switch branchTypeFields[m.btField] {
	case "name":
		bt.Name = value
	case "prefix":
		bt.Prefix = value
	case "base":
		bt.Base = value
	case "shortcut":
		bt.Shortcut = value
	}
}

func (m model) handleBranchTypeEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.btEditing {
		switch key {
		case "esc":
			m.btEditing = false
			m.btInput.SetValue("")
			m.btInput.Blur()
			return m, nil
		case "enter":
			m.setBranchTypeFieldValue(m.btInput.Value())
			m.btEditing = false
			m.btInput.SetValue("")
			m.btInput.Blur()
			return m.saveProjectConfig()
		}
		var cmd tea.Cmd
		m.btInput, cmd = m.btInput.Update(msg)
		return m, cmd
	}

	switch key {
	case "esc", "q":
		m.mode = modeList
	case "j", "down":
		m.btIndex = clamp(m.btIndex+1, 0, max(len(m.cfg.BranchTypes)-1, 0))
	case "k", "up":
		m.btIndex = clamp(m.btIndex-1, 0, max(len(m.cfg.BranchTypes)-1, 0))
	case "h", "left":
		m.btField = clamp(m.btField-1, 0, len(branchTypeFields)-1)
	case "l", "right", "tab":
		m.btField = clamp(m.btField+1, 0, len(branchTypeFields)-1)
	case "n":
		m.cfg.BranchTypes = append(m.cfg.BranchTypes, BranchType{})
		m.btIndex = len(m.cfg.BranchTypes) - 1
		m.btField = 0
	case "D":
		if m.btIndex < len(m.cfg.BranchTypes) {
			m.cfg.BranchTypes = append(m.cfg.BranchTypes[:m.btIndex], m.cfg.BranchTypes[m.btIndex+1:]...)
			m.btIndex = clamp(m.btIndex, 0, max(len(m.cfg.BranchTypes)-1, 0))
			return m.saveProjectConfig()
		}
	case "enter":
		if m.btIndex < len(m.cfg.BranchTypes) {
			m.btEditing = true
			m.btInput.SetValue(m.branchTypeFieldValue())
			m.btInput.Focus()
			return m, textinput.Blink
		}
	}
	return m, nil
}
