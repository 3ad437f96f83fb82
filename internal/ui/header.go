package ui

import (
	"strings"

	"github.com/five82/cuesync/internal/state"
)

// Connection badges, keyed into Theme.Badges.
const (
	badgeOnline       = "online"
	badgeOffline      = "offline"
	badgeChecking     = "checking"
	badgeUnconfigured = "unconfigured"
)

// connectionBadge classifies a snapshot for the header.
func connectionBadge(snap state.Snapshot) string {
	switch {
	case !snap.Configured():
		return badgeUnconfigured
	case snap.IsOffline():
		return badgeOffline
	case !snap.Checked && !snap.HasDate:
		return badgeChecking
	default:
		return badgeOnline
	}
}

// serviceDateText is the header line describing Companion's current date.
func serviceDateText(snap state.Snapshot) string {
	switch {
	case !snap.Configured():
		return "API not configured"
	case snap.HasDate:
		return "Current Service Date: " + snap.CurrentDate
	case snap.LastError != nil:
		return "Failed to fetch current service date"
	default:
		return "Checking Companion..."
	}
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.On(m.theme.Bar)
	bar := onColor(m.theme.Bar)
	compact := m.width < LayoutCompactWidth

	badge := connectionBadge(m.snapshot)
	parts := []string{
		bar.text("cuesync", styles.Brand),
		styles.Badge(badge).Render(strings.ToUpper(badge)),
	}

	dateStyle := styles.Text
	if m.snapshot.Configured() && !m.snapshot.HasDate && m.snapshot.LastError != nil {
		dateStyle = styles.Level(levelDanger)
	}
	parts = append(parts, bar.text(serviceDateText(m.snapshot), dateStyle))

	if host := m.snapshot.Host; host != "" && !compact {
		parts = append(parts, bar.field("Companion:", truncateMiddle(host, 32), styles.Label, styles.Text))
	}

	if !m.snapshot.LastUpdated.IsZero() && !compact {
		parts = append(parts, bar.text(m.snapshot.LastUpdated.Format("15:04:05"), styles.Faint))
	}

	if m.busy != "" {
		parts = append(parts, bar.text(m.busy, styles.Level(levelWarning).Bold(true)))
	}

	return styles.Bar.Width(m.width).Render(bar.join(parts, "  "))
}

// commandHint is one key and what it does in the command bar.
type commandHint struct{ key, desc string }

// commandHints lists the hints for the current view.
func (m Model) commandHints() []commandHint {
	if m.currentView == ViewLogs {
		follow := "Pause"
		if !m.logFollow {
			follow = "Follow"
		}
		return []commandHint{
			{"Space", follow},
			{"j/k", "Scroll"},
			{"q", "Service"},
			{"?", "More"},
		}
	}

	hints := []commandHint{
		{"Enter", "Activate"},
		{"j/k", "Navigate"},
	}
	if m.showRefresh() {
		hints = append(hints, commandHint{"r", "Refresh"})
	}
	return append(hints,
		commandHint{"c", "Reconnect"},
		commandHint{"s", "Settings"},
		commandHint{"l", "Log"},
		commandHint{"?", "More"},
	)
}

// renderCommandBar renders the command hints and the active theme.
func (m Model) renderCommandBar() string {
	styles := m.theme.On(m.theme.Bar)
	bar := onColor(m.theme.Bar)

	hints := m.commandHints()
	segments := make([]string, 0, len(hints)+1)
	for _, h := range hints {
		segments = append(segments, bar.text(h.key+":", styles.Key)+bar.text(h.desc, styles.Label))
	}
	segments = append(segments, bar.text("T:", styles.Key)+bar.text(m.theme.Name, styles.Faint))

	return styles.Bar.Width(m.width).Render(bar.join(segments, "  "))
}
