package ui

import "github.com/charmbracelet/lipgloss"

// Modal renders a titled box with the standard border, centered by the
// caller. Destructive prompts use DangerModal instead.
func Modal(styles Styles, title string, body string) string {
	return styles.ModalBox.Render(styles.Title.Render(title) + "\n\n" + body)
}

func DangerModal(styles Styles, title string, body string) string {
	return styles.DangerBox.Render(styles.Error.Render(title) + "\n\n" + body)
}

// Center places content in the middle of the available area when dimensions
// are known, and returns it unchanged otherwise.
func Center(content string, width int, height int) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
