package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type opKind int

const (
	opAdd opKind = iota
	opDelete
	opFetch
	opPull
	opPush
	opMerge
	opPrune
)

func (k opKind) String() string {
	switch k {
	case opAdd:
		return "add"
	case opDelete:
		return "delete"
	case opFetch:
		return "fetch"
	case opPull:
		return "pull"
	case opPush:
		return "push"
	case opMerge:
		return "merge"
	case opPrune:
		return "prune"
	default:
		return "unknown"
	}
}

// PendingOperation tracks one in-flight background operation. The display
// fields are denormalized at request time so progress can render without
// touching the session model.
type PendingOperation struct {
	Kind        opKind
	TargetPath  string
	DisplayName string
	Verbose     string
	StartedAt   time.Time
}

// opDoneMsg is the completion of a background operation, observed by the
// program loop on its next tick. Delete carries the removed path so the
// session can prune in place instead of rebuilding the inventory.
type opDoneMsg struct {
	kind        opKind
	err         error
	message     string
	targetPath  string
	removedPath string
	verbose     string
}

// followUpDoneMsg reports the post-add follow-ups (file copy, script). It is
// delivered independently of the add completion and may arrive any number of
// ticks later.
type followUpDoneMsg struct {
	err     error
	message string
}

var (
	errBranchNameRequired = errors.New("branch name cannot be empty")
	errBareTarget         = errors.New("the bare repository is not a valid target")
	errDirtyTarget        = errors.New("worktree has uncommitted changes")
	errFollowUpRunning    = errors.New("previous post-add script is still running")
)

// Orchestrator starts and tracks background operations. At most one
// operation per kind may be in flight; a second request for the same kind is
// rejected rather than queued, since concurrent mutating git commands on the
// same repository are not serialized anywhere below this layer.
type Orchestrator struct {
	runner   CommandRunner
	branches *branchQuerier
	bareRoot string

	inFlight        map[opKind]*PendingOperation
	followUpRunning bool
}

func NewOrchestrator(runner CommandRunner, bareRoot string) *Orchestrator {
	return &Orchestrator{
		runner:   runner,
		branches: newBranchQuerier(runner, bareRoot),
		bareRoot: bareRoot,
		inFlight: map[opKind]*PendingOperation{},
	}
}

func (o *Orchestrator) InFlight(kind opKind) (*PendingOperation, bool) {
	op, ok := o.inFlight[kind]
	return op, ok
}

func (o *Orchestrator) AnyInFlight() (*PendingOperation, bool) {
	for _, op := range o.inFlight {
		return op, true
	}
	return nil, false
}

// Observe clears the tracked operation once its completion message has been
// consumed.
func (o *Orchestrator) Observe(msg opDoneMsg) {
	delete(o.inFlight, msg.kind)
}

func (o *Orchestrator) ObserveFollowUp() {
	o.followUpRunning = false
}

func (o *Orchestrator) begin(kind opKind, op *PendingOperation) error {
	if _, busy := o.inFlight[kind]; busy {
		return fmt.Errorf("%s already in progress", kind)
	}
	op.Kind = kind
	op.StartedAt = time.Now()
	o.inFlight[kind] = op
	return nil
}

// RequestAdd validates and starts worktree creation. Argument selection is
// branch-existence aware: an existing local branch is checked out plainly, a
// remote-only branch gets a tracking checkout, anything else becomes a new
// branch from the base ref.
func (o *Orchestrator) RequestAdd(branch string, baseRef string) (tea.Cmd, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return nil, errBranchNameRequired
	}
	if o.followUpRunning {
		return nil, errFollowUpRunning
	}

	target := filepath.Join(filepath.Dir(o.bareRoot), branch)
	op := &PendingOperation{
		TargetPath:  target,
		DisplayName: branch,
		Verbose:     verboseCommand("worktree", "add", "...", target),
	}
	if err := o.begin(opAdd, op); err != nil {
		return nil, err
	}

	runner, branches, bareRoot := o.runner, o.branches, o.bareRoot
	return func() tea.Msg {
		args := addWorktreeArgs(branches, branch, baseRef, target)
		verbose := verboseCommand(args...)
		if err := gitRun(runner, bareRoot, args...); err != nil {
			return opDoneMsg{kind: opAdd, err: err, verbose: verbose}
		}
		return opDoneMsg{
			kind:       opAdd,
			message:    fmt.Sprintf("Created worktree %s", branch),
			targetPath: target,
			verbose:    verbose,
		}
	}, nil
}

func addWorktreeArgs(branches *branchQuerier, branch string, baseRef string, target string) []string {
	switch {
	case branches.LocalBranchExists(branch):
		return []string{"worktree", "add", target, branch}
	case branches.RemoteBranchExists(branch):
		return []string{"worktree", "add", "--track", "-b", branch, target, "origin/" + branch}
	default:
		args := []string{"worktree", "add", "-b", branch, target}
		if base := branches.resolveBaseRef(baseRef); base != "" {
			args = append(args, base)
		}
		return args
	}
}

// FollowUpCmd runs the post-add steps: copy the configured allow-list of
// files from the source worktree, then run the post-add script in the new
// worktree. Both are best-effort and never fail the add itself.
func (o *Orchestrator) FollowUpCmd(cfg Config, newPath string, sourcePath string) tea.Cmd {
	script := postAddScriptPath(cfg, o.bareRoot)
	if len(cfg.CopyFiles) == 0 && script == "" {
		return nil
	}
	o.followUpRunning = true
	runner := o.runner
	copyFiles := append([]string(nil), cfg.CopyFiles...)
	return func() tea.Msg {
		var notes []string
		copied := copyWorktreeFiles(sourcePath, newPath, copyFiles)
		if copied > 0 {
			notes = append(notes, fmt.Sprintf("copied %d file(s)", copied))
		}
		if script != "" {
			if _, stderr, err := runner.Run(newPath, "sh", script); err != nil {
				return followUpDoneMsg{err: commandErrorWithOutput(err, []byte(stderr))}
			}
			notes = append(notes, "post-add script finished")
		}
		if len(notes) == 0 {
			return followUpDoneMsg{}
		}
		return followUpDoneMsg{message: strings.Join(notes, ", ")}
	}
}

func copyWorktreeFiles(sourcePath string, newPath string, names []string) int {
	if strings.TrimSpace(sourcePath) == "" {
		return 0
	}
	copied := 0
	for _, name := range names {
		src := filepath.Join(sourcePath, name)
		dst := filepath.Join(newPath, name)
		if copyFile(src, dst) == nil {
			copied++
		}
	}
	return copied
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// RequestDelete refuses the bare root unconditionally and dirty targets
// without force. Branch deletion, when asked for, is chained after a
// successful removal; its failure downgrades the result to a partial
// success, not a failure.
func (o *Orchestrator) RequestDelete(target WorktreeRecord, deleteBranch bool, force bool) (tea.Cmd, error) {
	if target.IsBare {
		return nil, errors.New("cannot delete the bare repository")
	}
	if target.Status != StatusClean && !force {
		return nil, errDirtyTarget
	}

	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, target.Path)

	op := &PendingOperation{
		TargetPath:  target.Path,
		DisplayName: target.DisplayName(),
		Verbose:     verboseCommand(args...),
	}
	if err := o.begin(opDelete, op); err != nil {
		return nil, err
	}

	runner, bareRoot := o.runner, o.bareRoot
	name, branch := target.DisplayName(), target.Branch
	return func() tea.Msg {
		verbose := verboseCommand(args...)
		if err := gitRun(runner, bareRoot, args...); err != nil {
			return opDoneMsg{kind: opDelete, err: err, verbose: verbose}
		}
		message := fmt.Sprintf("Deleted worktree %s", name)
		if deleteBranch && branch != "" {
			flag := "-d"
			if force {
				flag = "-D"
			}
			if err := gitRun(runner, bareRoot, "branch", flag, branch); err != nil {
				message = fmt.Sprintf("%s; branch %s not deleted: %v", message, branch, err)
			} else {
				message = fmt.Sprintf("%s and branch %s", message, branch)
			}
		}
		return opDoneMsg{kind: opDelete, message: message, removedPath: target.Path, verbose: verbose}
	}, nil
}

// RequestFetch fetches origin for the target worktree, then force-updates
// local refs that lag their remote counterparts, skipping any branch checked
// out in a worktree.
func (o *Orchestrator) RequestFetch(target WorktreeRecord) (tea.Cmd, error) {
	if target.IsBare {
		return nil, errBareTarget
	}
	op := &PendingOperation{
		TargetPath:  target.Path,
		DisplayName: target.DisplayName(),
		Verbose:     verboseCommand("fetch", "origin"),
	}
	if err := o.begin(opFetch, op); err != nil {
		return nil, err
	}

	runner, branches, bareRoot := o.runner, o.branches, o.bareRoot
	return func() tea.Msg {
		verbose := verboseCommand("fetch", "origin")
		if err := gitRun(runner, target.Path, "fetch", "origin"); err != nil {
			return opDoneMsg{kind: opFetch, err: err, verbose: verbose}
		}
		updated := fastForwardIdleBranches(runner, branches, bareRoot)
		message := "Fetched origin"
		if updated > 0 {
			message = fmt.Sprintf("%s, fast-forwarded %d idle branch(es)", message, updated)
		}
		return opDoneMsg{kind: opFetch, message: message, verbose: verbose}
	}, nil
}

// fastForwardIdleBranches points local refs at their origin counterparts for
// branches that are not checked out in any worktree. Best effort.
func fastForwardIdleBranches(runner CommandRunner, branches *branchQuerier, bareRoot string) int {
	local, err := branches.ListLocalBranches()
	if err != nil {
		return 0
	}
	out, err := gitOutput(runner, bareRoot, "worktree", "list", "--porcelain")
	if err != nil {
		return 0
	}
	checkedOut := map[string]bool{}
	for _, rec := range parseWorktreeList(out) {
		if rec.Branch != "" {
			checkedOut[rec.Branch] = true
		}
	}
	updated := 0
	for _, branch := range local {
		if checkedOut[branch] || !branches.RemoteBranchExists(branch) {
			continue
		}
		localRef := "refs/heads/" + branch
		remoteRef := "refs/remotes/origin/" + branch
		// Only move the ref if the remote is strictly ahead.
		if _, err := gitOutput(runner, bareRoot, "merge-base", "--is-ancestor", localRef, remoteRef); err != nil {
			continue
		}
		if gitRun(runner, bareRoot, "update-ref", localRef, remoteRef) == nil {
			updated++
		}
	}
	return updated
}

// RequestPull requires a clean target, re-validated here at request time so
// a stale render cannot slip a dirty tree through.
func (o *Orchestrator) RequestPull(target WorktreeRecord) (tea.Cmd, error) {
	if target.IsBare {
		return nil, errBareTarget
	}
	if target.Status != StatusClean {
		return nil, errDirtyTarget
	}
	op := &PendingOperation{
		TargetPath:  target.Path,
		DisplayName: target.DisplayName(),
		Verbose:     verboseCommand("pull"),
	}
	if err := o.begin(opPull, op); err != nil {
		return nil, err
	}

	runner := o.runner
	return func() tea.Msg {
		out, err := gitOutput(runner, target.Path, "pull")
		if err != nil {
			return opDoneMsg{kind: opPull, err: err, verbose: verboseCommand("pull")}
		}
		return opDoneMsg{kind: opPull, message: firstLineOr(out, "Pulled"), verbose: verboseCommand("pull")}
	}, nil
}

func (o *Orchestrator) RequestPush(target WorktreeRecord) (tea.Cmd, error) {
	if target.IsBare {
		return nil, errBareTarget
	}
	op := &PendingOperation{
		TargetPath:  target.Path,
		DisplayName: target.DisplayName(),
		Verbose:     verboseCommand("push"),
	}
	if err := o.begin(opPush, op); err != nil {
		return nil, err
	}

	runner := o.runner
	return func() tea.Msg {
		// git push reports to stderr even on success.
		stdout, stderr, err := runner.Run(target.Path, "git", "push")
		if err != nil {
			return opDoneMsg{kind: opPush, err: commandErrorWithOutput(err, []byte(stderr)), verbose: verboseCommand("push")}
		}
		message := strings.TrimSpace(stdout)
		if message == "" {
			message = strings.TrimSpace(stderr)
		}
		return opDoneMsg{kind: opPush, message: firstLineOr(message, "Pushed"), verbose: verboseCommand("push")}
	}, nil
}

// RequestMergeUpstream merges the configured upstream of the target's
// branch. The target must be clean.
func (o *Orchestrator) RequestMergeUpstream(target WorktreeRecord) (tea.Cmd, error) {
	return o.requestMerge(target, "")
}

// RequestMergeBranch merges an explicitly chosen local branch.
func (o *Orchestrator) RequestMergeBranch(target WorktreeRecord, source string) (tea.Cmd, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errBranchNameRequired
	}
	return o.requestMerge(target, source)
}

func (o *Orchestrator) requestMerge(target WorktreeRecord, source string) (tea.Cmd, error) {
	if target.IsBare {
		return nil, errBareTarget
	}
	if target.Status != StatusClean {
		return nil, errDirtyTarget
	}
	op := &PendingOperation{
		TargetPath:  target.Path,
		DisplayName: target.DisplayName(),
		Verbose:     verboseCommand("merge", source),
	}
	if err := o.begin(opMerge, op); err != nil {
		return nil, err
	}

	runner := o.runner
	return func() tea.Msg {
		ref := source
		if ref == "" {
			upstream, err := gitOutput(runner, target.Path, "rev-parse", "--abbrev-ref", "@{upstream}")
			if err != nil {
				return opDoneMsg{kind: opMerge, err: errors.New("no upstream branch configured")}
			}
			ref = upstream
		}
		verbose := verboseCommand("merge", ref)
		out, err := gitOutput(runner, target.Path, "merge", ref)
		if err != nil {
			return opDoneMsg{kind: opMerge, err: err, verbose: verbose}
		}
		return opDoneMsg{
			kind:    opMerge,
			message: fmt.Sprintf("Merged %s: %s", ref, firstLineOr(out, "done")),
			verbose: verbose,
		}
	}, nil
}

// RequestPrune drops stale administrative records for worktrees whose
// directories are gone. Always safe, no confirmation needed.
func (o *Orchestrator) RequestPrune() (tea.Cmd, error) {
	op := &PendingOperation{
		DisplayName: "prune",
		Verbose:     verboseCommand("worktree", "prune"),
	}
	if err := o.begin(opPrune, op); err != nil {
		return nil, err
	}
	runner, bareRoot := o.runner, o.bareRoot
	return func() tea.Msg {
		verbose := verboseCommand("worktree", "prune")
		if err := gitRun(runner, bareRoot, "worktree", "prune"); err != nil {
			return opDoneMsg{kind: opPrune, err: err, verbose: verbose}
		}
		return opDoneMsg{kind: opPrune, message: "Pruned stale worktree records", verbose: verbose}
	}, nil
}

func firstLineOr(text string, fallback string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
