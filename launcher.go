package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// editorCmd suspends the program and runs the configured editor on the
// worktree directory. The completion message triggers an inventory refresh
// since the editor may have changed the tree.
func editorCmd(cfg Config, path string) tea.Cmd {
	editor := strings.Fields(cfg.ResolvedEditor)
	if len(editor) == 0 {
		editor = []string{defaultEditor}
	}
	args := append(editor[1:], path)
	c := exec.Command(editor[0], args...)
	c.Dir = path
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editorDoneMsg{err: err}
	})
}

// launchTerminal opens a new terminal window in the worktree directory and
// returns without waiting for it.
func launchTerminal(cfg Config, path string) error {
	terminal := strings.TrimSpace(cfg.ResolvedTerminal)
	if terminal != "" {
		fields := strings.Fields(terminal)
		c := exec.Command(fields[0], fields[1:]...)
		c.Dir = path
		return c.Start()
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", "-a", "Terminal", path).Start()
	case "linux":
		for _, candidate := range []string{"x-terminal-emulator", "gnome-terminal", "konsole", "xterm"} {
			if _, err := exec.LookPath(candidate); err == nil {
				c := exec.Command(candidate)
				c.Dir = path
				return c.Start()
			}
		}
		return fmt.Errorf("no terminal emulator found, set terminal in the config")
	default:
		return fmt.Errorf("terminal launch not supported on %s", runtime.GOOS)
	}
}
