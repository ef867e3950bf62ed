package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	uiview "github.com/owtui/owt/ui"
)

// uiMode is the modal state of the interaction machine. Exactly one mode is
// active at a time; a busy operation is a sub-state that suppresses input
// rather than a mode of its own, so "adding while deleting" is
// unrepresentable.
type uiMode int

const (
	modeList uiMode = iota
	modeAddTypeSelect
	modeAddInput
	modeConfirmDelete
	modeConfigEditor
	modeBranchTypeEditor
	modeMergePicker
	modeHelp
)

type appMessage struct {
	text    string
	isError bool
}

func infoMessage(text string) *appMessage  { return &appMessage{text: text} }
func errorMessage(text string) *appMessage { return &appMessage{text: text, isError: true} }

type model struct {
	runner       CommandRunner
	orchestrator *Orchestrator
	session      *SessionState
	cfg          Config
	styles       uiview.Styles
	bareRoot     string

	mode        uiMode
	busy        *PendingOperation
	message     *appMessage
	verbose     bool
	lastVerbose string
	refreshing  bool

	// List sub-state.
	filtering   bool
	filterInput textinput.Model
	chordG      bool

	// Add flow.
	addInput     textinput.Model
	addType      BranchType
	addHasType   bool
	addTypeIndex int

	// Delete confirmation. Toggles always start false.
	confirmDeleteBranch bool
	confirmForce        bool

	// Merge branch picker.
	mergeBranches []string
	mergeIndex    int

	// Config editor.
	cfgFieldIndex int
	cfgEditing    bool
	cfgInput      textinput.Model

	// Branch type editor.
	btIndex   int
	btField   int
	btEditing bool
	btInput   textinput.Model

	spinner   spinner.Model
	width     int
	height    int
	exitPath  string
	clipboard func(string) error
}

type inventoryMsg struct {
	records []WorktreeRecord
	err     error
	note    string
}

type mergeBranchesMsg struct {
	branches []string
	err      error
}

type editorDoneMsg struct{ err error }

type refreshTickMsg time.Time

const refreshInterval = 2 * time.Second

func newModel(runner CommandRunner, bareRoot string, cfg Config, session *SessionState, styles uiview.Styles, clipboard func(string) error) model {
	m := model{
		runner:       runner,
		orchestrator: NewOrchestrator(runner, bareRoot),
		session:      session,
		cfg:          cfg,
		styles:       styles,
		bareRoot:     bareRoot,
		clipboard:    clipboard,
	}
	m.filterInput = newPromptInput("/", "")
	m.addInput = newPromptInput("> ", "TASK-123-description")
	m.cfgInput = newPromptInput("> ", "")
	m.btInput = newPromptInput("> ", "")
	m.spinner = newSpinner()
	return m
}

func newPromptInput(prompt string, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 48
	return ti
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return s
}

// ExitPath is the worktree the shell wrapper should cd into, empty for a
// plain quit.
func (m model) ExitPath() string {
	return m.exitPath
}

func (m model) Init() tea.Cmd {
	return refreshTickCmd()
}

func refreshTickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func refreshCmd(runner CommandRunner, bareRoot string, note string) tea.Cmd {
	return func() tea.Msg {
		records, err := BuildInventory(runner, bareRoot)
		return inventoryMsg{records: records, err: err, note: note}
	}
}

func loadMergeBranchesCmd(branches *branchQuerier) tea.Cmd {
	return func() tea.Msg {
		list, err := branches.ListLocalBranches()
		return mergeBranchesMsg{branches: list, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case inventoryMsg:
		m.refreshing = false
		if msg.err != nil {
			m.message = errorMessage(fmt.Sprintf("Refresh failed: %v", msg.err))
			return m, nil
		}
		m.session.Replace(msg.records)
		if msg.note != "" {
			m.message = infoMessage(msg.note)
		}
		return m, nil

	case refreshTickMsg:
		_, opRunning := m.orchestrator.AnyInFlight()
		if m.mode == modeList && m.busy == nil && !opRunning && !m.refreshing && !m.filtering {
			m.refreshing = true
			return m, tea.Batch(refreshCmd(m.runner, m.bareRoot, ""), refreshTickCmd())
		}
		return m, refreshTickCmd()

	case opDoneMsg:
		return m.handleOpDone(msg)

	case followUpDoneMsg:
		m.orchestrator.ObserveFollowUp()
		if msg.err != nil {
			m.message = errorMessage(fmt.Sprintf("post-add: %v", msg.err))
		} else if msg.message != "" {
			m.message = infoMessage(msg.message)
		}
		return m, nil

	case mergeBranchesMsg:
		if msg.err != nil {
			m.mode = modeList
			m.message = errorMessage(fmt.Sprintf("List branches failed: %v", msg.err))
			return m, nil
		}
		choices := make([]string, 0, len(msg.branches))
		selected, _ := m.session.Selected()
		for _, b := range msg.branches {
			if b != selected.Branch {
				choices = append(choices, b)
			}
		}
		if len(choices) == 0 {
			m.mode = modeList
			m.message = errorMessage("No other local branches to merge")
			return m, nil
		}
		m.mergeBranches = choices
		m.mergeIndex = 0
		m.mode = modeMergePicker
		return m, nil

	case editorDoneMsg:
		if msg.err != nil {
			m.message = errorMessage(fmt.Sprintf("Editor failed: %v", msg.err))
			return m, nil
		}
		m.refreshing = true
		return m, refreshCmd(m.runner, m.bareRoot, "")

	case spinner.TickMsg:
		if m.busy == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	m.orchestrator.Observe(msg)
	m.busy = nil
	if msg.verbose != "" {
		m.lastVerbose = msg.verbose
	}
	if msg.err != nil {
		m.message = errorMessage(fmt.Sprintf("%s failed: %v", msg.kind, msg.err))
		return m, nil
	}
	m.message = infoMessage(msg.message)

	var cmds []tea.Cmd
	switch msg.kind {
	case opDelete:
		// Prune in place; the periodic refresh reconciles the rest.
		if msg.removedPath != "" {
			m.session.RemovePath(msg.removedPath)
		}
	case opAdd:
		selected, _ := m.session.Selected()
		source := m.session.CurrentWorktreePath
		if source == "" {
			source = selected.Path
		}
		if follow := m.orchestrator.FollowUpCmd(m.cfg, msg.targetPath, source); follow != nil {
			cmds = append(cmds, follow)
		}
		m.refreshing = true
		cmds = append(cmds, refreshCmd(m.runner, m.bareRoot, ""))
	default:
		m.refreshing = true
		cmds = append(cmds, refreshCmd(m.runner, m.bareRoot, ""))
	}
	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// A failure notice lives until the next keypress, never longer.
	m.message = nil

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// A busy operation suppresses everything except quit; results keep
	// arriving through completion messages.
	if m.busy != nil {
		return m, nil
	}

	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeAddTypeSelect:
		return m.handleAddTypeSelectKey(key)
	case modeAddInput:
		return m.handleAddInputKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmDeleteKey(key)
	case modeConfigEditor:
		return m.handleConfigEditorKey(msg)
	case modeBranchTypeEditor:
		return m.handleBranchTypeEditorKey(msg)
	case modeMergePicker:
		return m.handleMergePickerKey(key)
	case modeHelp:
		m.mode = modeList
		return m, nil
	}
	return m, nil
}

func (m model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.filtering {
		return m.handleFilterKey(msg)
	}

	// Two-key chords scoped to the list: gg jumps to the top, gc jumps to
	// the worktree the session was launched from. Any other key disarms.
	if m.chordG {
		m.chordG = false
		switch key {
		case "g":
			m.session.MoveTop()
			return m, nil
		case "c":
			if !m.session.JumpToCurrent() {
				m.message = errorMessage("Launch worktree not in list")
			}
			return m, nil
		}
		// fall through and process the key normally
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "enter":
		selected, ok := m.session.Selected()
		if !ok {
			return m, nil
		}
		if selected.IsBare {
			m.message = errorMessage("Cannot enter the bare repository")
			return m, nil
		}
		m.exitPath = selected.Path
		return m, tea.Quit
	case "j", "down":
		m.session.MoveDown()
	case "k", "up":
		m.session.MoveUp()
	case "G", "end":
		m.session.MoveBottom()
	case "home":
		m.session.MoveTop()
	case "ctrl+d":
		m.session.MoveHalfPage(m.listHeight(), false)
	case "ctrl+u":
		m.session.MoveHalfPage(m.listHeight(), true)
	case "g":
		m.chordG = true
	case "/":
		m.filtering = true
		m.filterInput.SetValue(m.session.FilterText)
		m.filterInput.Focus()
	case "s":
		m.session.CycleSort()
	case "r":
		m.refreshing = true
		return m, refreshCmd(m.runner, m.bareRoot, "Refreshed")
	case "a":
		return m.enterAddFlow()
	case "d":
		selected, ok := m.session.Selected()
		if !ok {
			return m, nil
		}
		if selected.IsBare {
			m.message = errorMessage("Cannot delete the bare repository")
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.confirmDeleteBranch = false
		m.confirmForce = false
	case "f":
		return m.startOperation(opFetch, m.orchestrator.RequestFetch)
	case "p":
		return m.startOperation(opPull, m.orchestrator.RequestPull)
	case "P":
		return m.startOperation(opPush, m.orchestrator.RequestPush)
	case "m":
		return m.startOperation(opMerge, m.orchestrator.RequestMergeUpstream)
	case "M":
		selected, ok := m.session.Selected()
		if !ok || selected.IsBare {
			m.message = errorMessage("Select a worktree to merge into")
			return m, nil
		}
		if selected.Status != StatusClean {
			m.message = errorMessage("Merge requires a clean worktree")
			return m, nil
		}
		return m, loadMergeBranchesCmd(m.orchestrator.branches)
	case "x":
		cmd, err := m.orchestrator.RequestPrune()
		if err != nil {
			m.message = errorMessage(err.Error())
			return m, nil
		}
		return m.markBusy(opPrune, cmd)
	case "o":
		return m.openEditor()
	case "t":
		return m.openTerminal()
	case "y":
		selected, ok := m.session.Selected()
		if !ok {
			return m, nil
		}
		if m.clipboard != nil {
			if err := m.clipboard(selected.Path); err != nil {
				m.message = errorMessage(fmt.Sprintf("Copy failed: %v", err))
				return m, nil
			}
		}
		m.message = infoMessage("Path copied")
	case "v":
		m.verbose = !m.verbose
	case "c":
		m.mode = modeConfigEditor
		m.cfgFieldIndex = 0
		m.cfgEditing = false
	case "b":
		m.mode = modeBranchTypeEditor
		m.btIndex = 0
		m.btField = 0
		m.btEditing = false
	case "?":
		m.mode = modeHelp
	}
	return m, nil
}

// startOperation requests a category operation against the current
// selection; validation failures surface as messages without any external
// command being run.
func (m model) startOperation(kind opKind, request func(WorktreeRecord) (tea.Cmd, error)) (tea.Model, tea.Cmd) {
	selected, ok := m.session.Selected()
	if !ok {
		return m, nil
	}
	cmd, err := request(selected)
	if err != nil {
		m.message = errorMessage(err.Error())
		return m, nil
	}
	return m.markBusy(kind, cmd)
}

func (m model) markBusy(kind opKind, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if op, ok := m.orchestrator.InFlight(kind); ok {
		m.busy = op
	}
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterInput.SetValue("")
		m.filterInput.Blur()
		m.session.ClearFilter()
		return m, nil
	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	// Every keystroke re-evaluates against the full record list.
	m.session.SetFilter(m.filterInput.Value())
	return m, cmd
}

func (m model) enterAddFlow() (tea.Model, tea.Cmd) {
	m.addHasType = false
	m.addType = BranchType{}
	m.addInput.SetValue("")
	if len(m.cfg.BranchTypes) > 0 {
		m.addTypeIndex = 0
		m.mode = modeAddTypeSelect
		return m, nil
	}
	m.mode = modeAddInput
	m.addInput.Focus()
	return m, textinput.Blink
}

func (m model) listHeight() int {
	// Rough visible row estimate for half-page movement.
	h := m.height - 8
	if h < 4 {
		h = 4
	}
	return h
}

func (m model) openEditor() (tea.Model, tea.Cmd) {
	selected, ok := m.session.Selected()
	if !ok {
		return m, nil
	}
	if selected.IsBare {
		m.message = errorMessage("Cannot open the bare repository in an editor")
		return m, nil
	}
	return m, editorCmd(m.cfg, selected.Path)
}

func (m model) openTerminal() (tea.Model, tea.Cmd) {
	selected, ok := m.session.Selected()
	if !ok {
		return m, nil
	}
	if selected.IsBare {
		m.message = errorMessage("Cannot open the bare repository in a terminal")
		return m, nil
	}
	if err := launchTerminal(m.cfg, selected.Path); err != nil {
		m.message = errorMessage(fmt.Sprintf("Failed to open terminal: %v", err))
		return m, nil
	}
	m.message = infoMessage("Opened terminal")
	return m, nil
}
