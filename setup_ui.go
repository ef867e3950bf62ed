package main

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func owtHuhTheme() *huh.Theme {
	t := *huh.ThemeCharm()
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(lipgloss.Color("42"))
	t.Focused.Next = t.Focused.FocusedButton
	return &t
}

func newConfirmForm(title string, description string, result *bool) *huh.Form {
	confirm := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(result)

	return huh.NewForm(huh.NewGroup(confirm)).
		WithTheme(owtHuhTheme()).
		WithShowHelp(false)
}

// confirmSetup asks before converting an existing repository layout.
func confirmSetup(title string, description string) (bool, error) {
	result := false
	if err := newConfirmForm(title, description, &result).Run(); err != nil {
		return false, err
	}
	return result, nil
}
