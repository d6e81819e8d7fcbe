package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader returns a styled header with an optional muted subtitle,
// both truncated to width.
func renderHeader(title, subtitle string, width int) string {
	rows := []string{HeaderStyle.Render(truncateEnd(title, width-2))}
	if subtitle != "" {
		rows = append(rows, renderMuted(truncateEnd(subtitle, width-2)))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded border around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

func renderSeparator(width int) string {
	if width < 1 {
		width = 1
	}
	return SeparatorStyle.Render(strings.Repeat("─", width))
}

// renderSplit places left and right next to each other, the right pane
// behind a vertical rule.
func renderSplit(left, right string, leftWidth, rightWidth, height int) string {
	l := lipgloss.NewStyle().Width(leftWidth).Height(height).MaxHeight(height).Render(left)
	r := PaneBorderStyle.Width(rightWidth - 2).Height(height).MaxHeight(height).Render(right)
	return lipgloss.JoinHorizontal(lipgloss.Top, l, r)
}
