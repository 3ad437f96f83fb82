package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// paint writes styled runs onto one background color. lipgloss resets the
// background after each run, so every space between runs is painted too.
type paint struct {
	color lipgloss.Color
	fill  lipgloss.Style
}

func onColor(color string) paint {
	c := lipgloss.Color(color)
	return paint{color: c, fill: lipgloss.NewStyle().Background(c)}
}

// text renders s word by word so the spaces keep the background.
func (p paint) text(s string, style lipgloss.Style) string {
	if s == "" {
		return ""
	}
	style = style.Background(p.color)
	words := strings.Split(s, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	return strings.Join(words, p.gap(1))
}

// gap returns n painted spaces.
func (p paint) gap(n int) string {
	return p.fill.Render(strings.Repeat(" ", n))
}

// join joins rendered parts with a painted separator.
func (p paint) join(parts []string, sep string) string {
	return strings.Join(parts, p.fill.Render(sep))
}

// field renders "label value", as in the cue rows and the header host.
func (p paint) field(label, value string, labelStyle, valueStyle lipgloss.Style) string {
	return p.text(label, labelStyle) + p.gap(1) + p.text(value, valueStyle)
}

// line pads rendered content to width with the background.
func (p paint) line(content string, width int) string {
	return p.fill.Width(width).Render(content)
}
