package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cuesync/internal/applog"
)

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-4, 1), max(m.height-5, 1))
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport updates the log viewport with current content.
func (m *Model) updateLogViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	if m.logViewport.Width == 0 {
		m.initLogViewport()
	}

	// Box height = m.height - 3 (header, cmdbar, status bar below)
	// Box inner = box height - 2 (top and bottom borders) = m.height - 5
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.height-5, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.Panel))

	m.logViewport.SetContent(m.renderLogContent())

	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.logViewport.GotoBottom()
			return m, loadLogsCmd(m.logPath)
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logFollow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logFollow = false
		m.logViewport.HalfPageUp()
		return m, nil
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.logFollow = false
		m.logViewport.ScrollUp(1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		return m, nil
	}
	return m, nil
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	contentHeight := m.height - 3 // header + cmdbar + status bar below

	box := m.renderBox("Application Log", m.logViewport.View(), m.width, contentHeight, true)
	return box + "\n" + m.renderLogStatus()
}

// renderLogStatus renders the line under the log box.
func (m Model) renderLogStatus() string {
	styles := m.theme.On(m.theme.Canvas)
	canvas := onColor(m.theme.Canvas)
	if m.logErr != nil {
		return canvas.line(canvas.text(fmt.Sprintf("Log unavailable: %v", m.logErr), styles.Level(levelDanger)), m.width)
	}

	autoTail := "off"
	if m.logFollow {
		autoTail = "on"
	}
	status := fmt.Sprintf("%d lines auto-tail %s", len(m.logLines), autoTail)
	parts := []string{canvas.text(status, styles.Faint)}
	if m.logPath != "" {
		parts = append(parts, canvas.text(truncateMiddle(m.logPath, 60), styles.Label))
	}
	return canvas.line(canvas.join(parts, "  "), m.width)
}

// renderLogContent renders the colorized log lines.
func (m Model) renderLogContent() string {
	panel := onColor(m.theme.Panel)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	if len(m.logLines) == 0 {
		return panel.line(panel.text("No log entries", styles.Label), width)
	}

	var b strings.Builder
	for i, line := range m.logLines {
		content := panel.text(fmt.Sprintf("%4d │ ", i+1), styles.Faint) +
			panel.text(line, logLineStyle(line, styles))
		b.WriteString(panel.line(content, width))
		if i < len(m.logLines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// logLineStyle colors a line by its slog level.
func logLineStyle(line string, styles Styles) lipgloss.Style {
	switch applog.Level(line) {
	case "ERROR":
		return styles.Level(levelDanger)
	case "WARN":
		return styles.Level(levelWarning)
	case "DEBUG":
		return styles.Faint
	default:
		return styles.Text
	}
}
