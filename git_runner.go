package main

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner is the sole way the session observes or mutates the
// underlying repository. Implementations run a command synchronously in a
// working directory and capture its output.
type CommandRunner interface {
	Run(dir string, name string, args ...string) (stdout string, stderr string, err error)
}

type execRunner struct{}

// NewExecRunner returns a CommandRunner backed by os/exec.
func NewExecRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(dir string, name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// gitOutput runs git with the given args and returns trimmed stdout. On a
// non-zero exit the captured stderr is preferred over the raw exec error so
// users see git's own message.
func gitOutput(runner CommandRunner, dir string, args ...string) (string, error) {
	stdout, stderr, err := runner.Run(dir, "git", args...)
	if err != nil {
		return "", commandErrorWithOutput(err, []byte(stderr))
	}
	return strings.TrimSpace(stdout), nil
}

// gitRun is gitOutput for callers that only care about success.
func gitRun(runner CommandRunner, dir string, args ...string) error {
	_, err := gitOutput(runner, dir, args...)
	return err
}

func commandErrorWithOutput(err error, output []byte) error {
	message := strings.TrimSpace(string(output))
	if message == "" {
		return err
	}
	return errors.New(message)
}

// verboseCommand renders the command line a background operation is about to
// run, for the verbose display toggle.
func verboseCommand(args ...string) string {
	return fmt.Sprintf("git %s", strings.Join(args, " "))
}

var errNotInGitRepository = errors.New("not in a git repository")
