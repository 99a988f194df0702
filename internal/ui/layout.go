package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailassist/internal/theme"
)

// Layout manages the terminal frame around a panel.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentHeight returns the height left between the header and the
// status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// fill pads rendered to the full width with style's background.
func (l Layout) fill(style lipgloss.Style, rendered string) string {
	gap := l.Width - lipgloss.Width(rendered)
	if gap <= 0 {
		return rendered
	}
	return rendered + style.Render(
		lipgloss.NewStyle().Width(gap).Background(style.GetBackground()).Render(""),
	)
}

// RenderHeader renders the title on the left and the signed-in account
// on the right.
func (l Layout) RenderHeader(title, account string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Render(account)

	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	middle := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, middle, right)
}

// RenderStatusBar renders the bottom bar. A non-empty alert replaces the
// hints.
func (l Layout) RenderStatusBar(hints, alert string) string {
	if alert != "" {
		return l.fill(theme.StatusBarStyle, theme.StatusBarStyle.Render(alert))
	}
	return l.fill(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints))
}

// RenderWithFrame joins header, content and status bar vertically.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
