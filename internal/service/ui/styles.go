package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// ANSI 6 (cyan) reads well on both light and dark terminals.
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// SectionStyle marks the "### " headings of a composed context.
	SectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)

	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// RenderContext highlights section headings of a composed context for the
// terminal. Body lines pass through untouched.
func RenderContext(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "### ") {
			lines[i] = SectionStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func RenderEmpty() string {
	return MutedStyle.Render("(no context)")
}
