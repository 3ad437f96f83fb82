package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme_UnknownFallsBackToFirst(t *testing.T) {
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa).Name = %q", got)
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox", got)
	}
}

func TestThemesColorEveryBadgeAndLevel(t *testing.T) {
	for _, th := range themes {
		for _, badge := range []string{badgeOnline, badgeOffline, badgeChecking, badgeUnconfigured} {
			if th.Badges[badge] == "" {
				t.Errorf("theme %s has no color for badge %q", th.Name, badge)
			}
		}
		for l, color := range th.Levels {
			if color == "" {
				t.Errorf("theme %s has no color for level %d", th.Name, l)
			}
		}
		if th.Panel == th.List {
			t.Errorf("theme %s: panel and date list share a background", th.Name)
		}
	}
}

func TestStyles_BadgeFallsBackToFaint(t *testing.T) {
	th := GetTheme("Slate")
	styles := th.On(th.Bar)

	if got := styles.Badge("nope").GetBackground(); got != lipgloss.Color(th.Faint) {
		t.Fatalf("Badge(unknown) background = %v, want faint %v", got, th.Faint)
	}
	if got := styles.Badge(badgeOnline).GetBackground(); got != lipgloss.Color(th.Badges[badgeOnline]) {
		t.Fatalf("Badge(online) background = %v, want %v", got, th.Badges[badgeOnline])
	}
}

func TestStyles_LevelColors(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.On(th.Canvas)

	if got := styles.Level(levelWarning).GetForeground(); got != lipgloss.Color(th.Levels[levelWarning]) {
		t.Fatalf("Level(warning) foreground = %v, want %v", got, th.Levels[levelWarning])
	}
	if got := styles.Level(levelWarning).GetBackground(); got != lipgloss.Color(th.Canvas) {
		t.Fatalf("Level(warning) background = %v, want canvas %v", got, th.Canvas)
	}
	if !styles.Level(levelDanger).GetBold() {
		t.Fatalf("Level(danger) is not bold")
	}
	if got := styles.Level(level(42)).GetForeground(); got != lipgloss.Color(th.Levels[levelInfo]) {
		t.Fatalf("Level(out of range) foreground = %v, want info", got)
	}
	if got := th.LevelColor(level(-1)); got != th.Levels[levelInfo] {
		t.Fatalf("LevelColor(-1) = %q, want info", got)
	}
}

func TestLogLineStyle(t *testing.T) {
	th := GetTheme("Slate")
	styles := th.Styles()

	tests := []struct {
		line string
		want lipgloss.TerminalColor
	}{
		{`time=2099-01-01T10:00:00Z level=ERROR msg="push failed"`, lipgloss.Color(th.Levels[levelDanger])},
		{`time=2099-01-01T10:00:00Z level=WARN msg="service defaulted"`, lipgloss.Color(th.Levels[levelWarning])},
		{`time=2099-01-01T10:00:00Z level=DEBUG msg="cue written"`, lipgloss.Color(th.Faint)},
		{`time=2099-01-01T10:00:00Z level=INFO msg="service activated"`, lipgloss.Color(th.Text)},
	}
	for _, tt := range tests {
		if got := logLineStyle(tt.line, styles).GetForeground(); got != tt.want {
			t.Errorf("logLineStyle(%q) foreground = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestHelpListsRefreshOnlyWhenEnabled(t *testing.T) {
	s := newFakeSession(t, true)
	m := newTestModel(t, s, false)

	if refreshEnabled(m.helpBindings(), m.keys.Refresh) {
		t.Fatalf("refresh binding enabled while the refresh button is hidden")
	}
	if out := m.renderHelp(); strings.Contains(out, "Refresh data") {
		t.Fatalf("help lists Refresh data while the refresh button is hidden")
	}

	if err := s.settings.Update(s.settings.SaveFolder(), s.settings.CompanionIP(), true); err != nil {
		t.Fatalf("settings.Update: %v", err)
	}
	if !refreshEnabled(m.helpBindings(), m.keys.Refresh) {
		t.Fatalf("refresh binding disabled while the refresh button is shown")
	}
	out := m.renderHelp()
	for _, want := range []string{"Keyboard Shortcuts", "Refresh data", "Activate service", "Toggle follow mode"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
	if !m.keys.Refresh.Enabled() {
		t.Fatalf("rendering help disabled the model's own refresh binding")
	}
}

func TestFullHelpGroupsHaveTitles(t *testing.T) {
	if got, want := len(DefaultKeyMap().FullHelp()), len(helpGroupTitles); got != want {
		t.Fatalf("FullHelp() has %d groups, want %d titles", got, want)
	}
}

func refreshEnabled(groups [][]key.Binding, refresh key.Binding) bool {
	for _, group := range groups {
		for _, b := range group {
			if b.Help() == refresh.Help() {
				return b.Enabled()
			}
		}
	}
	return false
}
