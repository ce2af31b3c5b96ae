package fancy

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	RootStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGray)

	ToolStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	MutatingStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	ArgumentStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	CountStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// ToolText styles the name of a read-only tool.
func ToolText(text string) string {
	return ToolStyle.Render(text)
}

// MutatingText styles the name of a tool that changes upstream state.
func MutatingText(text string) string {
	return MutatingStyle.Render(text)
}

// ArgumentText styles an argument name.
func ArgumentText(text string) string {
	return ArgumentStyle.Render(text)
}

// ErrorText styles error text (red)
func ErrorText(text string) string {
	return ErrorStyle.Render(text)
}

// CountText styles count numbers (cyan)
func CountText(text string) string {
	return CountStyle.Render(text)
}
