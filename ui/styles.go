package ui

import "github.com/charmbracelet/lipgloss"

// Styles carries every lipgloss style the views use. It is resolved once at
// startup from the detected terminal background; nothing in the views reads
// the environment.
type Styles struct {
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Header    lipgloss.Style
	Normal    lipgloss.Style
	Selected  lipgloss.Style
	Dimmed    lipgloss.Style
	Bare      lipgloss.Style
	Branch    lipgloss.Style
	Current   lipgloss.Style
	Accent    lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Message   lipgloss.Style
	HelpKey   lipgloss.Style
	HelpText  lipgloss.Style
	ModalBox  lipgloss.Style
	DangerBox lipgloss.Style

	StatusClean    lipgloss.Style
	StatusDirty    lipgloss.Style
	StatusConflict lipgloss.Style
}

// NewStyles builds the palette for a dark or light terminal background.
func NewStyles(dark bool) Styles {
	accent := lipgloss.Color("42")
	warn := lipgloss.Color("214")
	bad := lipgloss.Color("196")
	cyan := lipgloss.Color("51")
	muted := lipgloss.Color("243")
	text := lipgloss.Color("255")
	if !dark {
		accent = lipgloss.Color("29")
		cyan = lipgloss.Color("31")
		muted = lipgloss.Color("245")
		text = lipgloss.Color("235")
	}

	border := lipgloss.RoundedBorder()

	return Styles{
		Title:     lipgloss.NewStyle().Foreground(text).Bold(true),
		Subtle:    lipgloss.NewStyle().Foreground(muted),
		Header:    lipgloss.NewStyle().Foreground(muted).Bold(true),
		Normal:    lipgloss.NewStyle().Foreground(text),
		Selected:  lipgloss.NewStyle().Foreground(accent).Bold(true),
		Dimmed:    lipgloss.NewStyle().Foreground(muted).Faint(true),
		Bare:      lipgloss.NewStyle().Foreground(muted).Italic(true),
		Branch:    lipgloss.NewStyle().Foreground(cyan),
		Current:   lipgloss.NewStyle().Foreground(accent),
		Accent:    lipgloss.NewStyle().Foreground(accent),
		Warning:   lipgloss.NewStyle().Foreground(warn),
		Error:     lipgloss.NewStyle().Foreground(bad),
		Message:   lipgloss.NewStyle().Foreground(accent),
		HelpKey:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		HelpText:  lipgloss.NewStyle().Foreground(muted),
		ModalBox:  lipgloss.NewStyle().Border(border).BorderForeground(cyan).Padding(1, 2),
		DangerBox: lipgloss.NewStyle().Border(border).BorderForeground(bad).Padding(1, 2),

		StatusClean:    lipgloss.NewStyle().Foreground(accent),
		StatusDirty:    lipgloss.NewStyle().Foreground(warn),
		StatusConflict: lipgloss.NewStyle().Foreground(bad),
	}
}
