package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// helpGroupTitles names the groups returned by keyMap.FullHelp, in order.
var helpGroupTitles = []string{"Views", "Navigation", "Service", "Log", "General"}

const helpKeyWidth = 12

// helpBindings returns the help overlay groups with bindings that do not
// apply right now disabled.
func (m Model) helpBindings() [][]key.Binding {
	keys := m.keys
	keys.Refresh.SetEnabled(m.showRefresh())
	return keys.FullHelp()
}

// renderHelp renders the key reference as a centered dialog.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(modalTitle(styles.Text, "Keyboard Shortcuts"))
	for i, group := range m.helpBindings() {
		if i > 0 {
			b.WriteString("\n")
		}
		if i < len(helpGroupTitles) {
			b.WriteString(styles.Key.Bold(true).Render(helpGroupTitles[i]))
			b.WriteString("\n")
		}
		for _, binding := range group {
			if !binding.Enabled() {
				continue
			}
			h := binding.Help()
			b.WriteString(styles.Level(levelWarning).Width(helpKeyWidth).Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.Faint.Render("Any key: Close"))

	return renderModal(m.theme, m.width, m.height, 48, m.theme.Key, b.String())
}
