package main

import "testing"

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		name   string
		report string
		want   WorktreeStatus
	}{
		{"empty report", "", StatusClean},
		{"untracked only", "?? notes.txt\n?? tmp/", StatusClean},
		{"staged only", "M  main.go\nA  new.go", StatusStaged},
		{"unstaged only", " M main.go\n D old.go", StatusUnstaged},
		{"staged and unstaged same file", "MM main.go", StatusMixed},
		{"staged and unstaged different files", "M  a.go\n M b.go", StatusMixed},
		{"unmerged index side", "U  a.go", StatusConflict},
		{"unmerged tree side", " U a.go", StatusConflict},
		{"both added", "AA a.go", StatusConflict},
		{"both deleted", "DD a.go", StatusConflict},
		{"conflict wins over mixed", "MM a.go\nUU b.go", StatusConflict},
		{"staged with untracked noise", "A  a.go\n?? b.go", StatusStaged},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyStatus(tc.report)
			if got != tc.want {
				t.Fatalf("classifyStatus(%q) = %v, want %v", tc.report, got, tc.want)
			}
		})
	}
}

func TestWorktreeStatusSeverity(t *testing.T) {
	order := []WorktreeStatus{StatusConflict, StatusMixed, StatusUnstaged, StatusStaged, StatusClean}
	for i := 1; i < len(order); i++ {
		if order[i-1].severityRank() >= order[i].severityRank() {
			t.Fatalf("%v should rank before %v", order[i-1], order[i])
		}
	}
}
