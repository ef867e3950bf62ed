package main

import "strings"

// classifyStatus derives a single WorktreeStatus from the output of
// `git status --porcelain`. Each line carries an index-state character and a
// working-tree-state character; untracked entries ("??") count as neither
// staged nor unstaged. Conflicts dominate everything else because they block
// pull and merge; Mixed is kept distinct from single-kind dirtiness because
// some flows require a fully clean tree.
func classifyStatus(report string) WorktreeStatus {
	var hasStaged, hasUnstaged, hasConflict bool

	for _, line := range strings.Split(report, "\n") {
		runes := []rune(line)
		if len(runes) < 2 {
			continue
		}
		index, tree := runes[0], runes[1]

		if index == 'U' || tree == 'U' || (index == 'A' && tree == 'A') || (index == 'D' && tree == 'D') {
			hasConflict = true
		}
		if index != ' ' && index != '?' {
			hasStaged = true
		}
		if tree != ' ' && tree != '?' {
			hasUnstaged = true
		}
	}

	switch {
	case hasConflict:
		return StatusConflict
	case hasStaged && hasUnstaged:
		return StatusMixed
	case hasStaged:
		return StatusStaged
	case hasUnstaged:
		return StatusUnstaged
	default:
		return StatusClean
	}
}
