package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cuesync/internal/companion"
	"github.com/five82/cuesync/internal/player"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// Messages emitted by dialogs.

type settingsSubmitMsg struct {
	folder      string
	host        string
	showRefresh bool
}

type hostSubmitMsg struct{ host string }

type reconnectSkippedMsg struct{}

type activateConfirmedMsg struct{ date string }

type openFolderRequestMsg struct{}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// --- Settings ---

const (
	settingsFieldFolder = iota
	settingsFieldHost
	settingsFieldRefresh
	settingsFieldCount
)

type settingsModal struct {
	inputs      [2]textinput.Model // folder, host
	showRefresh bool
	focus       int
	notice      string
	err         string
}

func newSettingsModal(folder, host string, showRefresh bool, notice string) settingsModal {
	folderInput := textinput.New()
	folderInput.Placeholder = "e.g. D:\\Services"
	folderInput.CharLimit = 260
	folderInput.Width = 40
	folderInput.SetValue(folder)
	folderInput.Focus()

	hostInput := textinput.New()
	hostInput.Placeholder = "e.g. 192.168.1.50"
	hostInput.CharLimit = 100
	hostInput.Width = 40
	hostInput.SetValue(host)

	return settingsModal{
		inputs:      [2]textinput.Model{folderInput, hostInput},
		showRefresh: showRefresh,
		notice:      notice,
	}
}

func (s settingsModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Escape):
			return s, nil, true

		case key.Matches(msg, keys.Confirm):
			folder := strings.TrimSpace(s.inputs[settingsFieldFolder].Value())
			host := strings.TrimSpace(s.inputs[settingsFieldHost].Value())
			if folder == "" || host == "" {
				s.err = "Both Save Folder Path and Companion IP are required!"
				return s, nil, false
			}
			return s, emit(settingsSubmitMsg{folder: folder, host: host, showRefresh: s.showRefresh}), true

		case key.Matches(msg, keys.Tab), msg.String() == "down":
			s.setFocus((s.focus + 1) % settingsFieldCount)
			return s, nil, false

		case key.Matches(msg, keys.ShiftTab), msg.String() == "up":
			s.setFocus((s.focus - 1 + settingsFieldCount) % settingsFieldCount)
			return s, nil, false
		}

		if s.focus == settingsFieldRefresh {
			if key.Matches(msg, keys.Toggle) {
				s.showRefresh = !s.showRefresh
			}
			return s, nil, false
		}
	}

	if s.focus == settingsFieldRefresh {
		return s, nil, false
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd, false
}

func (s *settingsModal) setFocus(idx int) {
	s.focus = idx
	for i := range s.inputs {
		if i == idx {
			s.inputs[i].Focus()
		} else {
			s.inputs[i].Blur()
		}
	}
}

func (s settingsModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(modalTitle(styles.Text, "Settings"))
	if s.notice != "" {
		b.WriteString(styles.Level(levelWarning).Render(s.notice))
		b.WriteString("\n\n")
	}

	label := func(idx int, text string) string {
		if s.focus == idx {
			return styles.Key.Render(text)
		}
		return styles.Label.Render(text)
	}

	b.WriteString(label(settingsFieldFolder, "Save Folder Path: "))
	b.WriteString(s.inputs[settingsFieldFolder].View())
	b.WriteString("\n\n")
	b.WriteString(label(settingsFieldHost, "Companion IP:     "))
	b.WriteString(s.inputs[settingsFieldHost].View())
	b.WriteString("\n\n")

	box := "[ ]"
	if s.showRefresh {
		box = "[x]"
	}
	b.WriteString(label(settingsFieldRefresh, box+" Show Refresh Data Button"))
	b.WriteString("\n\n")

	if s.err != "" {
		b.WriteString(styles.Level(levelDanger).Render(s.err))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.Faint.Render("Enter: Save  •  Tab: Next field  •  Space: Toggle  •  Esc: Cancel"))

	return renderModal(theme, width, height, 64, theme.Key, b.String())
}

// --- Reconnect ---

type reconnectModal struct {
	current string
	input   textinput.Model
	err     string
}

func newReconnectModal(current, errText string) reconnectModal {
	input := textinput.New()
	input.Placeholder = "e.g. 192.168.1.50"
	input.CharLimit = 100
	input.Width = 24
	input.SetValue(current)
	input.Focus()
	return reconnectModal{current: current, input: input, err: errText}
}

func (r reconnectModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Escape):
			return r, emit(reconnectSkippedMsg{}), true
		case key.Matches(msg, keys.Confirm):
			host := strings.TrimSpace(r.input.Value())
			if host == "" {
				r.err = "Please enter an IP address"
				return r, nil, false
			}
			return r, emit(hostSubmitMsg{host: host}), true
		}
	}
	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return r, cmd, false
}

func (r reconnectModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(modalTitle(styles.Level(levelDanger), "⚠ Cannot connect to Companion"))
	b.WriteString(styles.Text.Render("Current IP: " + r.current))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render("Please enter the correct Companion IP address:"))
	b.WriteString("\n\n")
	b.WriteString(styles.Label.Render("IP Address: "))
	b.WriteString(r.input.View())
	b.WriteString("\n\n")
	if r.err != "" {
		b.WriteString(styles.Level(levelDanger).Render(r.err))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.Faint.Render("Enter: Test & Save  •  Esc: Skip"))

	return renderModal(theme, width, height, 56, theme.LevelColor(levelDanger), b.String())
}

// --- Confirm activation ---

type confirmModal struct {
	date string
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(msgKey, keys.Yes), key.Matches(msgKey, keys.Confirm):
		return c, emit(activateConfirmedMsg{date: c.date}), true
	case key.Matches(msgKey, keys.No):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(modalTitle(styles.Text, "Activate Service"))
	b.WriteString(styles.Text.Render("Push the service for " + c.date + " to Companion"))
	b.WriteString("\n")
	b.WriteString(styles.Text.Render("and launch VLC?"))
	b.WriteString("\n\n")
	b.WriteString(styles.Faint.Render("y/Enter: Activate  •  n/Esc: Cancel"))

	return renderModal(theme, width, height, 52, theme.Key, b.String())
}

// --- Notices (info, warnings, errors) ---

type noticeModal struct {
	title string
	lines []string
	level level
}

func newWarningsModal(errs []companion.FieldError) noticeModal {
	lines := []string{"Some updates failed:"}
	for i, fe := range errs {
		if i == maxWarnings {
			lines = append(lines, fmt.Sprintf("…and %d more (see log)", len(errs)-maxWarnings))
			break
		}
		lines = append(lines, "• "+fe.Error())
	}
	return noticeModal{title: "Upload Warnings", lines: lines, level: levelWarning}
}

func newVLCNotFoundModal() noticeModal {
	return noticeModal{
		title: "VLC Not Found",
		lines: []string{
			"Could not locate VLC installation.",
			"",
			"Please install VLC Media Player from:",
			player.DownloadURL,
		},
		level: levelInfo,
	}
}

func (n noticeModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.Confirm) || key.Matches(msg, keys.Escape) {
			return n, nil, true
		}
	}
	return n, nil, false
}

func (n noticeModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(modalTitle(styles.Level(n.level), n.title))
	for _, line := range n.lines {
		b.WriteString(styles.Text.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.Faint.Render("Enter/Esc: Close"))

	return renderModal(theme, width, height, 64, theme.LevelColor(n.level), b.String())
}

// --- Player launch failure ---

type playerModal struct{}

func (p playerModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, false
	}
	switch {
	case key.Matches(msgKey, keys.Yes):
		return p, emit(openFolderRequestMsg{}), true
	case key.Matches(msgKey, keys.No):
		return p, nil, true
	}
	return p, nil, false
}

func (p playerModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(modalTitle(styles.Level(levelWarning), "VLC Launch Failed"))
	for _, line := range []string{
		"Could not automatically launch VLC.",
		"",
		"Would you like to launch VLC manually now?",
		"",
		"y: open the VLC installation folder",
		"n: continue without VLC",
	} {
		b.WriteString(styles.Text.Render(line))
		b.WriteString("\n")
	}

	return renderModal(theme, width, height, 52, theme.LevelColor(levelWarning), b.String())
}

// --- Shared rendering ---

// modalTitle renders a bold title followed by a rule.
func modalTitle(style lipgloss.Style, title string) string {
	rule := lipgloss.NewStyle().Faint(true).Render(strings.Repeat("─", 40))
	return style.Bold(true).Render(title) + "\n" + rule + "\n\n"
}

func renderModal(theme Theme, width, height, modalWidth int, border string, content string) string {
	if width > 0 && modalWidth > width-4 {
		modalWidth = max(width-4, 20)
	}
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Width(modalWidth)
	return placeCenter(theme, width, height, modal.Render(content))
}

func placeCenter(theme Theme, width, height int, content string) string {
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Canvas)),
	)
}
