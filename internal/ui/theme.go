package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette. Each color belongs to one part of the console.
type Theme struct {
	Name string

	Canvas string // behind dialogs and under the feedback line
	Bar    string // header and command bar
	List   string // service date list
	Panel  string // focused panel: cues or the log

	Cursor     string // selected date row
	CursorText string
	Frame      string
	FrameFocus string

	Text    string
	Label   string // cue labels and field captions
	Faint   string // rules, line numbers, hints
	Key     string // key names in hints and help
	Brand   string
	Current string // marker on the date Companion currently holds

	// Levels colors feedback, notices and log lines.
	Levels [levelCount]string
	// Badges colors the connection badge in the header.
	Badges map[string]string
}

// LevelColor returns the color of a severity, falling back to info.
func (t Theme) LevelColor(l level) string {
	if l < 0 || l >= levelCount {
		l = levelInfo
	}
	return t.Levels[l]
}

// Styles returns the theme's text styles without a background.
func (t Theme) Styles() Styles {
	return t.On("")
}

// On returns the theme's text styles painted onto bg. Styled runs carry
// their own background so they do not punch holes in a colored panel.
func (t Theme) On(bg string) Styles {
	base := lipgloss.NewStyle()
	if bg != "" {
		base = base.Background(lipgloss.Color(bg))
	}
	fg := func(color string) lipgloss.Style {
		return base.Foreground(lipgloss.Color(color))
	}

	s := Styles{
		Text:    fg(t.Text),
		Label:   fg(t.Label),
		Faint:   fg(t.Faint),
		Key:     fg(t.Key),
		Brand:   fg(t.Brand).Bold(true),
		Current: fg(t.Current).Bold(true),
		Cursor: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Cursor)).
			Foreground(lipgloss.Color(t.CursorText)),
		Bar: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Bar)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		badges:      t.Badges,
		badgeText:   t.Canvas,
		badgeMissed: t.Faint,
	}
	for l := range s.levels {
		s.levels[l] = fg(t.Levels[l])
	}
	s.levels[levelSuccess] = s.levels[levelSuccess].Bold(true)
	s.levels[levelDanger] = s.levels[levelDanger].Bold(true)
	return s
}

// Styles are a theme's text styles on one background.
type Styles struct {
	Text    lipgloss.Style
	Label   lipgloss.Style
	Faint   lipgloss.Style
	Key     lipgloss.Style
	Brand   lipgloss.Style
	Current lipgloss.Style
	Cursor  lipgloss.Style
	Bar     lipgloss.Style

	levels      [levelCount]lipgloss.Style
	badges      map[string]string
	badgeText   string
	badgeMissed string
}

// Level returns the text style of a severity.
func (s Styles) Level(l level) lipgloss.Style {
	if l < 0 || l >= levelCount {
		l = levelInfo
	}
	return s.levels[l]
}

// Badge returns the style of a connection badge. Unknown badges use the
// faint color.
func (s Styles) Badge(name string) lipgloss.Style {
	color, ok := s.badges[name]
	if !ok {
		color = s.badgeMissed
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.badgeText)).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1)
}

var themes = []Theme{nightfoxTheme(), kanagawaTheme(), slateTheme()}

// GetTheme returns the named theme, or the first theme for unknown names.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the theme name after current, wrapping around.
func NextTheme(current string) string {
	for i, t := range themes {
		if t.Name == current {
			return themes[(i+1)%len(themes)].Name
		}
	}
	return themes[0].Name
}

func nightfoxTheme() Theme {
	// https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name:       "Nightfox",
		Canvas:     "#131a24",
		Bar:        "#192330",
		List:       "#212e3f",
		Panel:      "#29394f",
		Cursor:     "#2b3b51",
		CursorText: "#cdcecf",
		Frame:      "#39506d",
		FrameFocus: "#719cd6",
		Text:       "#cdcecf",
		Label:      "#738091",
		Faint:      "#71839b",
		Key:        "#719cd6",
		Brand:      "#dbc074",
		Current:    "#81b29a",
		Levels: [levelCount]string{
			levelInfo:    "#63cdcf",
			levelSuccess: "#81b29a",
			levelWarning: "#dbc074",
			levelDanger:  "#c94f6d",
		},
		Badges: map[string]string{
			badgeOnline:       "#81b29a",
			badgeOffline:      "#c94f6d",
			badgeChecking:     "#dbc074",
			badgeUnconfigured: "#738091",
		},
	}
}

func kanagawaTheme() Theme {
	// https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name:       "Kanagawa",
		Canvas:     "#16161D",
		Bar:        "#1F1F28",
		List:       "#2A2A37",
		Panel:      "#223249",
		Cursor:     "#2D4F67",
		CursorText: "#DCD7BA",
		Frame:      "#54546D",
		FrameFocus: "#7E9CD8",
		Text:       "#DCD7BA",
		Label:      "#C8C093",
		Faint:      "#727169",
		Key:        "#7E9CD8",
		Brand:      "#FFA066",
		Current:    "#98BB6C",
		Levels: [levelCount]string{
			levelInfo:    "#7FB4CA",
			levelSuccess: "#98BB6C",
			levelWarning: "#E6C384",
			levelDanger:  "#E46876",
		},
		Badges: map[string]string{
			badgeOnline:       "#98BB6C",
			badgeOffline:      "#E46876",
			badgeChecking:     "#E6C384",
			badgeUnconfigured: "#727169",
		},
	}
}

func slateTheme() Theme {
	// Tailwind slate and sky scales.
	return Theme{
		Name:       "Slate",
		Canvas:     "#020617",
		Bar:        "#0f172a",
		List:       "#1e293b",
		Panel:      "#283548",
		Cursor:     "#0284c7",
		CursorText: "#f8fafc",
		Frame:      "#334155",
		FrameFocus: "#38bdf8",
		Text:       "#f1f5f9",
		Label:      "#94a3b8",
		Faint:      "#64748b",
		Key:        "#38bdf8",
		Brand:      "#f59e0b",
		Current:    "#22c55e",
		Levels: [levelCount]string{
			levelInfo:    "#06b6d4",
			levelSuccess: "#22c55e",
			levelWarning: "#f59e0b",
			levelDanger:  "#ef4444",
		},
		Badges: map[string]string{
			badgeOnline:       "#22c55e",
			badgeOffline:      "#dc2626",
			badgeChecking:     "#f59e0b",
			badgeUnconfigured: "#64748b",
		},
	}
}
