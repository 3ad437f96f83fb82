package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cuesync/internal/schedule"
)

// cueLabels are the row labels for schedule.CueFields, in order.
var cueLabels = []string{"Song1", "Song2", "Song3", "Start", "End", "Communion"}

// renderMain renders the header, the active view and the command bar.
func (m Model) renderMain() string {
	var body string
	switch m.currentView {
	case ViewLogs:
		body = m.renderLogs()
	default:
		body = m.renderService()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderCommandBar(),
	)
}

// renderService renders the date list and the selected service's cues.
func (m Model) renderService() string {
	height := m.height - 3 // header + cmdbar + feedback line

	var boxes string
	if m.width < LayoutCompactWidth {
		boxes = m.renderBox(m.detailTitle(), m.renderCues(m.width-2), m.width, height, true)
	} else {
		listWidth := dateListWidth + 4
		detailWidth := m.width - listWidth
		boxes = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderBox("Services", m.renderDateList(listWidth-2, height-2), listWidth, height, false),
			m.renderBox(m.detailTitle(), m.renderCues(detailWidth-2), detailWidth, height, true),
		)
	}
	return boxes + "\n" + m.renderFeedback()
}

func (m Model) detailTitle() string {
	if date := m.selectedDate(); date != "" {
		return "Service " + date
	}
	return "Service"
}

// renderDateList renders the scrolling list of service dates.
func (m Model) renderDateList(width, rows int) string {
	list := onColor(m.theme.List)
	styles := m.theme.Styles()

	if len(m.dates) == 0 {
		return list.text("No services", styles.Label)
	}

	// Keep the selection in view
	start := 0
	if rows > 0 && m.selectedRow >= rows {
		start = m.selectedRow - rows + 1
	}
	end := len(m.dates)
	if rows > 0 && end > start+rows {
		end = start + rows
	}

	current := m.snapshot.CurrentDate
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		date := m.dates[i]
		marker := "  "
		if m.snapshot.HasDate && date == current {
			marker = "● "
		}
		text := marker + date
		if i == m.selectedRow {
			lines = append(lines, styles.Cursor.Width(width).Render(text))
			continue
		}
		style := styles.Text
		if marker != "  " {
			style = styles.Current
		}
		lines = append(lines, list.text(text, style))
	}
	return strings.Join(lines, "\n")
}

// renderCues renders the six cue rows of the selected service.
func (m Model) renderCues(width int) string {
	panel := onColor(m.theme.Panel)
	styles := m.theme.Styles()

	date := m.selectedDate()
	if date == "" {
		return panel.text("Select a service date", styles.Label)
	}

	doc := m.session.Document()
	fields := doc.FieldsFor(date)

	labelWidth := 0
	for _, label := range cueLabels {
		labelWidth = max(labelWidth, len(label))
	}
	valueWidth := max(width-labelWidth-4, 8)

	var b strings.Builder
	for i, cue := range schedule.CueFields {
		name := FormatDisplayName(fields[cue], doc.PathFor(date, cue))
		label := cueLabels[i] + ":" + strings.Repeat(" ", labelWidth-len(cueLabels[i])+1)
		b.WriteString(panel.field(label, truncateMiddle(name, valueWidth), styles.Label, styles.Text))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(panel.text("[ Enter ] Activate Service", styles.Key.Bold(true)))
	if m.showRefresh() {
		b.WriteString(panel.gap(2))
		b.WriteString(panel.text("[ r ] Refresh Data", styles.Label))
	}
	return b.String()
}

// renderFeedback renders the single-line status message under the panels.
func (m Model) renderFeedback() string {
	styles := m.theme.On(m.theme.Canvas)
	canvas := onColor(m.theme.Canvas)
	if m.feedback.text == "" {
		return canvas.line("", m.width)
	}
	return canvas.line(canvas.text(m.feedback.text, styles.Level(m.feedback.level)), m.width)
}

// renderBox renders content in a box with the title embedded in the top border.
// A focused box is the panel; the other is the date list.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	frame, fill := m.theme.Frame, m.theme.List
	if focused {
		frame, fill = m.theme.FrameFocus, m.theme.Panel
	}
	bg := onColor(fill)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(frame))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncateMiddle(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.text("┌", borderStyle) +
		bg.text(strings.Repeat("─", leftPad), borderStyle) +
		bg.text(" "+title+" ", titleStyle) +
		bg.text(strings.Repeat("─", rightPad), borderStyle) +
		bg.text("┐", borderStyle)

	bottomBorder := bg.text("└", borderStyle) +
		bg.text(strings.Repeat("─", innerWidth), borderStyle) +
		bg.text("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().
		Width(innerWidth).
		MaxWidth(innerWidth).
		Background(lipgloss.Color(fill))

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.text("│", borderStyle)+
				contentStyle.Render(line)+
				bg.text("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}
