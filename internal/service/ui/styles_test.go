package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestRenderContext_KeepsTextWithoutColor(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	text := "PREAMBLE\n\n### Welcome Back\nIt has been a few days.\n"
	assert.Equal(t, text, RenderContext(text))
	assert.Equal(t, "(no context)", RenderEmpty())
}

func TestRenderContext_StylesOnlyHeadings(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	out := RenderContext("body line\n### Mood Trajectory")
	assert.Contains(t, out, "body line\n")
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "### Mood Trajectory")
}
