package main

import (
	"strings"
	"testing"
)

func TestShellWrapper_SupportedShells(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		wrapper, err := shellWrapper(shell)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", shell, err)
		}
		if !strings.Contains(wrapper, "OWT_SHELL_INTEGRATION=1") {
			t.Fatalf("%s wrapper must set the integration flag:\n%s", shell, wrapper)
		}
		if !strings.Contains(wrapper, "cd") {
			t.Fatalf("%s wrapper must cd into the selection:\n%s", shell, wrapper)
		}
	}
}

func TestShellWrapper_UnsupportedShell(t *testing.T) {
	if _, err := shellWrapper("powershell"); err == nil {
		t.Fatalf("expected error for unsupported shell")
	}
}

func TestEnvFlagEnabled(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "YES": true, "On": true,
		"0": false, "false": false, "": false, "maybe": false,
	}
	for value, want := range cases {
		t.Setenv("OWT_TEST_FLAG", value)
		if got := envFlagEnabled("OWT_TEST_FLAG"); got != want {
			t.Fatalf("envFlagEnabled(%q) = %v, want %v", value, got, want)
		}
	}
}
