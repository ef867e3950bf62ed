package main

import (
	"os"
	"strings"
)

func envFlagEnabled(name string) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// shellIntegrationActive reports whether the shell wrapper is driving us, in
// which case the selected worktree path is printed for the wrapper to cd into.
func shellIntegrationActive() bool {
	return envFlagEnabled("OWT_SHELL_INTEGRATION")
}
