// Package ui provides the Bubble Tea TUI for cuesync.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cuesync/internal/player"
	"github.com/five82/cuesync/internal/prefs"
	"github.com/five82/cuesync/internal/schedule"
	"github.com/five82/cuesync/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewService View = iota
	ViewLogs
)

// level is the severity of a feedback line or notice.
type level int

const (
	levelInfo level = iota
	levelSuccess
	levelWarning
	levelDanger

	levelCount
)

type feedback struct {
	text  string
	level level
}

const (
	msgMissingConfig = "Save folder path or Companion IP is missing. Please update the settings."
	msgNoData        = "No service data found in selections.json."
	msgDefaulted     = "No upcoming service found. Defaulted to earliest date."
	msgLoadError     = "Error loading data"
	msgRefreshed     = "Data refreshed successfully"
	msgRefreshFailed = "Failed to refresh data"
	msgUploadFailed  = "Upload failed"
	msgVLCLaunched   = "VLC launched."
)

// Options configures the UI.
type Options struct {
	Context         context.Context
	Session         Session
	Logger          *slog.Logger
	LogPath         string
	ThemeName       string
	ConfirmActivate bool
	PrefsPath       string
	Tick            time.Duration
	Now             func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx             context.Context
	session         Session
	logger          *slog.Logger
	logPath         string
	prefsPath       string
	confirmActivate bool
	tick            time.Duration
	now             func() time.Time
	keys            keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot    state.Snapshot
	dates       []string
	selectedRow int
	feedback    feedback
	busy        string

	// Dialogs, shown one at a time in arrival order
	modals   []Modal
	showHelp bool

	// Log state
	logViewport viewport.Model
	logLines    []string
	logFollow   bool
	logErr      error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:             ctx,
		session:         opts.Session,
		logger:          logger,
		logPath:         opts.LogPath,
		prefsPath:       prefsPath,
		confirmActivate: opts.ConfirmActivate,
		tick:            tick,
		now:             now,
		keys:            DefaultKeyMap(),
		theme:           GetTheme(themeName),
		currentView:     ViewService,
		logFollow:       true,
		snapshot:        opts.Session.Status(),
	}

	if !m.session.Configured() {
		logger.Warn("configuration missing")
		m.feedback = feedback{msgMissingConfig, levelWarning}
		m.pushModal(m.settingsDialog("Save folder path or Companion IP is missing.\nPlease update the settings."))
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.session.Configured() {
		cmds = append(cmds, m.startupCmds()...)
	}
	return tea.Batch(cmds...)
}

// startupCmds loads the schedule and checks the Companion connection concurrently.
func (m Model) startupCmds() []tea.Cmd {
	return []tea.Cmd{
		loadScheduleCmd(m.session, m.selectedDate(), m.now()),
		connCheckCmd(m.ctx, m.session),
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case scheduleMsg:
		m.handleSchedule(msg)
		return m, nil

	case connCheckMsg:
		return m.handleConnCheck(msg)

	case activateConfirmedMsg:
		return m.startActivation(msg.date)

	case activatedMsg:
		return m.handleActivated(msg)

	case playerMsg:
		return m.handlePlayer(msg)

	case openFolderRequestMsg:
		return m, openFolderCmd(m.session)

	case folderMsg:
		if msg.err != nil {
			m.logger.Warn("open vlc folder failed", "error", msg.err)
			m.pushModal(newVLCNotFoundModal())
		}
		return m, nil

	case settingsSubmitMsg:
		m.busy = "Saving settings..."
		return m, saveSettingsCmd(m.session, msg)

	case settingsSavedMsg:
		return m.handleSettingsSaved(msg)

	case hostSubmitMsg:
		m.busy = "Testing connection..."
		return m, tryHostCmd(m.ctx, m.session, msg.host)

	case hostResultMsg:
		return m.handleHostResult(msg)

	case reconnectSkippedMsg:
		m.logger.Warn("continuing with potentially unreachable companion", "host", m.session.Host())
		m.feedback = feedback{"Companion unreachable at " + m.session.Host() + ".", levelWarning}
		return m, nil

	case logsMsg:
		m.logLines = msg.lines
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil
	}

	// Forward anything else (cursor blinks) to the active dialog.
	if modal := m.activeModal(); modal != nil {
		return m.updateModal(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if modal := m.activeModal(); modal != nil {
		return modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.activeModal() != nil {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.updateModal(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Settings):
		m.pushModal(m.settingsDialog(""))
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		return m, loadLogsCmd(m.logPath)

	case key.Matches(msg, m.keys.ViewService), key.Matches(msg, m.keys.Escape):
		m.currentView = ViewService
		return m, nil
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleServiceKey(msg)
	}
}

// handleServiceKey processes keyboard input for the service view.
func (m Model) handleServiceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Activate):
		return m.requestActivation()

	case key.Matches(msg, m.keys.Refresh):
		if !m.showRefresh() || m.busy != "" {
			return m, nil
		}
		if !m.session.Configured() {
			m.feedback = feedback{"Data manager not configured", levelDanger}
			return m, nil
		}
		return m, refreshCmd(m.session, m.selectedDate())

	case key.Matches(msg, m.keys.Recheck):
		if !m.session.Configured() {
			return m, nil
		}
		return m, connCheckCmd(m.ctx, m.session)
	}

	count := len(m.dates)
	if count == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	}
	return m, nil
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{fetchSnapshotCmd(m.session)}
	if m.currentView == ViewLogs && m.logFollow {
		cmds = append(cmds, loadLogsCmd(m.logPath))
	}
	cmds = append(cmds, tickCmd(m.tick))
	return m, tea.Batch(cmds...)
}

func (m *Model) handleSchedule(msg scheduleMsg) {
	m.dates = msg.dates
	m.selectedRow = 0
	if msg.selected {
		for i, d := range m.dates {
			if d == msg.selection.Key {
				m.selectedRow = i
				break
			}
		}
	}

	switch {
	case msg.err != nil && msg.refresh:
		m.feedback = feedback{msgRefreshFailed, levelDanger}
	case msg.err != nil && errors.Is(msg.err, schedule.ErrParse):
		m.feedback = feedback{msgLoadError, levelDanger}
	case len(m.dates) == 0:
		m.feedback = feedback{msgNoData, levelDanger}
	case msg.refresh:
		m.feedback = feedback{msgRefreshed, levelInfo}
	case msg.selection.Defaulted:
		m.feedback = feedback{msgDefaulted, levelWarning}
	}
}

func (m Model) handleConnCheck(msg connCheckMsg) (tea.Model, tea.Cmd) {
	m.snapshot = m.session.Status()
	if msg.reachable {
		return m, currentDateCmd(m.ctx, m.session)
	}
	m.pushModal(newReconnectModal(msg.host, ""))
	return m, nil
}

func (m Model) requestActivation() (tea.Model, tea.Cmd) {
	if m.busy != "" {
		return m, nil
	}
	if !m.session.Configured() {
		m.pushModal(noticeModal{title: "Error", lines: []string{"API or data manager not configured"}, level: levelDanger})
		return m, nil
	}
	date := m.selectedDate()
	if date == "" {
		m.feedback = feedback{msgNoData, levelDanger}
		return m, nil
	}
	if m.confirmActivate {
		m.pushModal(confirmModal{date: date})
		return m, nil
	}
	return m.startActivation(date)
}

func (m Model) startActivation(date string) (tea.Model, tea.Cmd) {
	m.busy = "Activating..."
	return m, activateCmd(m.ctx, m.session, date)
}

func (m Model) handleActivated(msg activatedMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		m.logger.Error("upload failed", "date", msg.date, "error", msg.err)
		m.pushModal(noticeModal{title: "Error", lines: []string{fmt.Sprintf("Upload failed: %v", msg.err)}, level: levelDanger})
		m.feedback = feedback{msgUploadFailed, levelDanger}
		return m, nil
	}
	if len(msg.errs) > 0 {
		m.pushModal(newWarningsModal(msg.errs))
	}
	m.feedback = feedback{fmt.Sprintf("Service for %s activated!", msg.date), levelSuccess}
	return m, tea.Batch(
		currentDateCmd(m.ctx, m.session),
		launchPlayerCmd(m.ctx, m.session),
	)
}

func (m Model) handlePlayer(msg playerMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		m.feedback.text = strings.TrimSpace(m.feedback.text + " " + msgVLCLaunched)
		return m, nil
	}
	if !errors.Is(msg.err, player.ErrNotFound) {
		m.logger.Error("vlc launch failed", "error", msg.err)
	}
	m.pushModal(playerModal{})
	return m, nil
}

func (m Model) handleSettingsSaved(msg settingsSavedMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		m.logger.Error("save settings failed", "error", msg.err)
		m.pushModal(noticeModal{title: "Error", lines: []string{fmt.Sprintf("Failed to save settings: %v", msg.err)}, level: levelDanger})
		return m, nil
	}
	m.pushModal(noticeModal{title: "Success", lines: []string{"Settings saved successfully!"}, level: levelSuccess})
	m.feedback = feedback{}
	m.snapshot = m.session.Status()
	return m, tea.Batch(m.startupCmds()...)
}

func (m Model) handleHostResult(msg hostResultMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		m.logger.Warn("companion host test failed", "host", msg.host, "error", msg.err)
		m.pushModal(newReconnectModal(msg.host, fmt.Sprintf(
			"Still cannot connect to Companion at %s.\nPlease check:\n• Companion is running\n• IP address is correct\n• Port 8000 is accessible",
			msg.host)))
		return m, nil
	}
	m.pushModal(noticeModal{title: "Success", lines: []string{"Connection successful! IP address saved."}, level: levelSuccess})
	m.snapshot = m.session.Status()
	// The session rebuilt its repository, so the schedule is reloaded too.
	return m, tea.Batch(
		loadScheduleCmd(m.session, m.selectedDate(), m.now()),
		currentDateCmd(m.ctx, m.session),
	)
}

// Dialog helpers

func (m *Model) pushModal(modal Modal) {
	m.modals = append(m.modals, modal)
}

func (m Model) activeModal() Modal {
	if len(m.modals) == 0 {
		return nil
	}
	return m.modals[0]
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd, closed := m.modals[0].Update(msg, m.keys)
	modals := make([]Modal, 0, len(m.modals))
	if !closed {
		modals = append(modals, next)
	}
	m.modals = append(modals, m.modals[1:]...)
	return m, cmd
}

func (m Model) settingsDialog(notice string) settingsModal {
	st := m.session.Settings()
	return newSettingsModal(st.SaveFolder(), st.CompanionIP(), st.ShowRefreshButton(), notice)
}

// Accessors

func (m Model) selectedDate() string {
	if m.selectedRow < 0 || m.selectedRow >= len(m.dates) {
		return ""
	}
	return m.dates[m.selectedRow]
}

func (m Model) showRefresh() bool {
	return m.session.Settings().ShowRefreshButton()
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, ConfirmActivate: m.confirmActivate}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
