package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func cleanRecord(path string, branch string) WorktreeRecord {
	return WorktreeRecord{Path: path, Branch: branch, Status: StatusClean, FilterMatch: true}
}

func TestAddWorktreeArgs_ExistingLocalBranch(t *testing.T) {
	runner := newFakeRunner()
	runner.script("git show-ref --verify --quiet refs/heads/feature", "")
	branches := newBranchQuerier(runner, "/repo/.bare")
	args := addWorktreeArgs(branches, "feature", "", "/repo/feature")
	want := "worktree add /repo/feature feature"
	if strings.Join(args, " ") != want {
		t.Fatalf("expected %q, got %q", want, strings.Join(args, " "))
	}
}

func TestAddWorktreeArgs_RemoteOnlyBranch(t *testing.T) {
	runner := newFakeRunner()
	runner.script("git show-ref --verify --quiet refs/remotes/origin/feature", "")
	branches := newBranchQuerier(runner, "/repo/.bare")
	args := addWorktreeArgs(branches, "feature", "", "/repo/feature")
	want := "worktree add --track -b feature /repo/feature origin/feature"
	if strings.Join(args, " ") != want {
		t.Fatalf("expected %q, got %q", want, strings.Join(args, " "))
	}
}

func TestAddWorktreeArgs_NewBranchFromExplicitBase(t *testing.T) {
	runner := newFakeRunner()
	branches := newBranchQuerier(runner, "/repo/.bare")
	args := addWorktreeArgs(branches, "task-1", "develop", "/repo/task-1")
	want := "worktree add -b task-1 /repo/task-1 develop"
	if strings.Join(args, " ") != want {
		t.Fatalf("expected %q, got %q", want, strings.Join(args, " "))
	}
}

func TestAddWorktreeArgs_NewBranchBasePrefersRemote(t *testing.T) {
	runner := newFakeRunner()
	runner.script("git show-ref --verify --quiet refs/remotes/origin/develop", "")
	branches := newBranchQuerier(runner, "/repo/.bare")
	args := addWorktreeArgs(branches, "task-1", "develop", "/repo/task-1")
	if args[len(args)-1] != "origin/develop" {
		t.Fatalf("expected origin-qualified base, got %v", args)
	}
}

func TestRequestAdd_RejectsEmptyBranch(t *testing.T) {
	runner := newFakeRunner()
	o := NewOrchestrator(runner, "/repo/.bare")
	if _, err := o.RequestAdd("   ", ""); !errors.Is(err, errBranchNameRequired) {
		t.Fatalf("expected errBranchNameRequired, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("no command may run on rejection, saw %v", runner.commandsRun())
	}
}

func TestRequestAdd_RejectsWhileFollowUpRunning(t *testing.T) {
	o := NewOrchestrator(newFakeRunner(), "/repo/.bare")
	o.followUpRunning = true
	if _, err := o.RequestAdd("task", ""); !errors.Is(err, errFollowUpRunning) {
		t.Fatalf("expected errFollowUpRunning, got %v", err)
	}
}

func TestRequestAdd_CategoryInFlightRejection(t *testing.T) {
	runner := newFakeRunner()
	o := NewOrchestrator(runner, "/repo/.bare")
	if _, err := o.RequestAdd("task-1", ""); err != nil {
		t.Fatalf("first add rejected: %v", err)
	}
	if _, err := o.RequestAdd("task-2", ""); err == nil {
		t.Fatalf("second add in the same category must be rejected, not queued")
	}
	// A different category is independent.
	if _, err := o.RequestFetch(cleanRecord("/repo/main", "main")); err != nil {
		t.Fatalf("fetch should be allowed while add is pending: %v", err)
	}
}

func TestRequestAdd_SuccessCarriesTargetPath(t *testing.T) {
	runner := newFakeRunner()
	runner.script("git worktree add -b task /repo/task main", "")
	o := NewOrchestrator(runner, "/repo/.bare")
	cmd, err := o.RequestAdd("task", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg, ok := cmd().(opDoneMsg)
	if !ok {
		t.Fatalf("expected opDoneMsg")
	}
	if msg.err != nil {
		t.Fatalf("unexpected failure: %v", msg.err)
	}
	if msg.targetPath != "/repo/task" {
		t.Fatalf("expected target path /repo/task, got %q", msg.targetPath)
	}
	o.Observe(msg)
	if _, busy := o.InFlight(opAdd); busy {
		t.Fatalf("observe must clear the in-flight slot")
	}
}

func TestRequestDelete_RefusesBareForAllFlagCombos(t *testing.T) {
	runner := newFakeRunner()
	o := NewOrchestrator(runner, "/repo/.bare")
	bare := WorktreeRecord{Path: "/repo/.bare", IsBare: true}
	for _, deleteBranch := range []bool{false, true} {
		for _, force := range []bool{false, true} {
			if _, err := o.RequestDelete(bare, deleteBranch, force); err == nil {
				t.Fatalf("bare delete must be refused (deleteBranch=%v force=%v)", deleteBranch, force)
			}
		}
	}
	if len(runner.calls) != 0 {
		t.Fatalf("no command may run for a refused delete, saw %v", runner.commandsRun())
	}
}

func TestRequestDelete_RefusesDirtyWithoutForce(t *testing.T) {
	runner := newFakeRunner()
	o := NewOrchestrator(runner, "/repo/.bare")
	dirty := WorktreeRecord{Path: "/repo/feat", Branch: "feat", Status: StatusUnstaged}
	if _, err := o.RequestDelete(dirty, false, false); !errors.Is(err, errDirtyTarget) {
		t.Fatalf("expected errDirtyTarget, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("validation must happen before any command runs")
	}
}

func TestRequestDelete_ForceAllowsDirty(t *testing.T) {
	runner := newFakeRunner()
	runner.script("git worktree remove --force /repo/feat", "")
	o := NewOrchestrator(runner, "/repo/.bare")
	dirty := WorktreeRecord{Path: "/repo/feat", Branch: "feat", Status: StatusMixed}
	cmd, err := o.RequestDelete(dirty, false, true)
	if err != nil {
		t.Fatalf("forced delete rejected: %v", err)
	}
	msg := cmd().(opDoneMsg)
	if msg.err != nil {
		t.Fatalf("unexpected failure: %v", msg.err)
	}
	if msg.removedPath != "/repo/feat" {
		t.Fatalf("expected removed path, got %q", msg.removedPath)
	}
}

func TestRequestDelete_BranchChainPartialSuccess(t *testing.T) {
	runner := newFakeRunner()
	runner.script("git worktree remove /repo/feat", "")
	// git branch -d is not scripted and fails.
	o := NewOrchestrator(runner, "/repo/.bare")
	cmd, err := o.RequestDelete(cleanRecord("/repo/feat", "feat"), true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := cmd().(opDoneMsg)
	if msg.err != nil {
		t.Fatalf("worktree removal succeeded, result must not be a failure: %v", msg.err)
	}
	if !strings.Contains(msg.message, "not deleted") {
		t.Fatalf("expected partial-success message, got %q", msg.message)
	}
	if msg.removedPath != "/repo/feat" {
		t.Fatalf("removed path must still be reported, got %q", msg.removedPath)
	}
}

func TestRequestDelete_BranchChainFullSuccess(t *testing.T) {
	runner := newFakeRunner()
	runner.script("git worktree remove /repo/feat", "")
	runner.script("git branch -d feat", "")
	o := NewOrchestrator(runner, "/repo/.bare")
	cmd, _ := o.RequestDelete(cleanRecord("/repo/feat", "feat"), true, false)
	msg := cmd().(opDoneMsg)
	if !strings.Contains(msg.message, "and branch feat") {
		t.Fatalf("expected branch deletion in message, got %q", msg.message)
	}
}

func TestRequestPull_RequiresCleanTarget(t *testing.T) {
	runner := newFakeRunner()
	o := NewOrchestrator(runner, "/repo/.bare")
	dirty := WorktreeRecord{Path: "/repo/feat", Branch: "feat", Status: StatusStaged}
	if _, err := o.RequestPull(dirty); !errors.Is(err, errDirtyTarget) {
		t.Fatalf("expected errDirtyTarget, got %v", err)
	}
	if _, err := o.RequestPull(WorktreeRecord{IsBare: true}); !errors.Is(err, errBareTarget) {
		t.Fatalf("expected errBareTarget, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("validation must happen before any command runs")
	}
}

func TestRequestPush_UsesStderrForSuccessMessage(t *testing.T) {
	runner := newFakeRunner()
	runner.scriptInDir("/repo/feat", "git push", "")
	o := NewOrchestrator(runner, "/repo/.bare")
	cmd, err := o.RequestPush(cleanRecord("/repo/feat", "feat"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := cmd().(opDoneMsg)
	if msg.err != nil {
		t.Fatalf("unexpected failure: %v", msg.err)
	}
	if msg.message != "Pushed" {
		t.Fatalf("expected fallback message, got %q", msg.message)
	}
}

func TestRequestMergeUpstream(t *testing.T) {
	runner := newFakeRunner()
	runner.scriptInDir("/repo/feat", "git rev-parse --abbrev-ref @{upstream}", "origin/feat\n")
	runner.scriptInDir("/repo/feat", "git merge origin/feat", "Already up to date.\n")
	o := NewOrchestrator(runner, "/repo/.bare")
	cmd, err := o.RequestMergeUpstream(cleanRecord("/repo/feat", "feat"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := cmd().(opDoneMsg)
	if msg.err != nil {
		t.Fatalf("unexpected failure: %v", msg.err)
	}
	if !strings.Contains(msg.message, "origin/feat") {
		t.Fatalf("expected merged ref in message, got %q", msg.message)
	}
}

func TestRequestMergeUpstream_NoUpstreamFails(t *testing.T) {
	runner := newFakeRunner()
	o := NewOrchestrator(runner, "/repo/.bare")
	cmd, err := o.RequestMergeUpstream(cleanRecord("/repo/feat", "feat"))
	if err != nil {
		t.Fatalf("request itself should start: %v", err)
	}
	msg := cmd().(opDoneMsg)
	if msg.err == nil || !strings.Contains(msg.err.Error(), "upstream") {
		t.Fatalf("expected missing-upstream error, got %v", msg.err)
	}
}

func TestRequestMergeBranch_RequiresCleanAndName(t *testing.T) {
	o := NewOrchestrator(newFakeRunner(), "/repo/.bare")
	if _, err := o.RequestMergeBranch(cleanRecord("/repo/feat", "feat"), " "); !errors.Is(err, errBranchNameRequired) {
		t.Fatalf("expected errBranchNameRequired, got %v", err)
	}
	dirty := WorktreeRecord{Path: "/repo/feat", Status: StatusConflict}
	if _, err := o.RequestMergeBranch(dirty, "main"); !errors.Is(err, errDirtyTarget) {
		t.Fatalf("expected errDirtyTarget, got %v", err)
	}
}

func TestFollowUpCmd_NilWhenNothingConfigured(t *testing.T) {
	o := NewOrchestrator(newFakeRunner(), filepath.Join(t.TempDir(), "proj", ".bare"))
	if cmd := o.FollowUpCmd(Config{}, "/repo/feat", "/repo/main"); cmd != nil {
		t.Fatalf("expected no follow-up command for an empty config")
	}
}

func TestFollowUpCmd_CopiesAllowListedFiles(t *testing.T) {
	tmp := t.TempDir()
	source := filepath.Join(tmp, "proj", "main")
	target := filepath.Join(tmp, "proj", "feat")
	for _, dir := range []string{source, target} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(source, ".env"), []byte("TOKEN=x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	o := NewOrchestrator(newFakeRunner(), filepath.Join(tmp, "proj", ".bare"))
	cfg := Config{CopyFiles: []string{".env", "missing.txt"}}
	cmd := o.FollowUpCmd(cfg, target, source)
	if cmd == nil {
		t.Fatalf("expected a follow-up command")
	}
	if !o.followUpRunning {
		t.Fatalf("follow-up must be marked running until observed")
	}
	msg := cmd().(followUpDoneMsg)
	if msg.err != nil {
		t.Fatalf("unexpected error: %v", msg.err)
	}
	if !strings.Contains(msg.message, "copied 1 file") {
		t.Fatalf("only the existing file should be copied, got %q", msg.message)
	}
	data, err := os.ReadFile(filepath.Join(target, ".env"))
	if err != nil || string(data) != "TOKEN=x\n" {
		t.Fatalf("copied file wrong: %q, %v", data, err)
	}
	o.ObserveFollowUp()
	if o.followUpRunning {
		t.Fatalf("observe must clear the follow-up flag")
	}
}

func TestRequestPrune(t *testing.T) {
	runner := newFakeRunner()
	runner.script("git worktree prune", "")
	o := NewOrchestrator(runner, "/repo/.bare")
	cmd, err := o.RequestPrune()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := cmd().(opDoneMsg)
	if msg.err != nil {
		t.Fatalf("unexpected failure: %v", msg.err)
	}
}

func TestFirstLineOr(t *testing.T) {
	if firstLineOr("", "fallback") != "fallback" {
		t.Fatalf("empty input should use fallback")
	}
	if firstLineOr("line1\nline2", "x") != "line1" {
		t.Fatalf("expected first line only")
	}
}
