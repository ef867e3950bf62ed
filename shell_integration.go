package main

import "fmt"

// shellWrapper returns the function users paste into their shell rc so that
// picking a worktree changes the shell's directory. The binary itself cannot
// change its parent's cwd; it prints the chosen path and the wrapper does the
// cd.
func shellWrapper(shell string) (string, error) {
	switch shell {
	case "bash", "zsh":
		return `owt() {
  local dest
  dest="$(OWT_SHELL_INTEGRATION=1 command owt "$@")" || return $?
  if [ -n "$dest" ] && [ -d "$dest" ]; then
    cd "$dest" || return $?
  fi
}
`, nil
	case "fish":
		return `function owt
  set -l dest (env OWT_SHELL_INTEGRATION=1 command owt $argv)
  or return $status
  if test -n "$dest" -a -d "$dest"
    cd $dest
  end
end
`, nil
	default:
		return "", fmt.Errorf("unsupported shell %q (expected bash, zsh or fish)", shell)
	}
}
