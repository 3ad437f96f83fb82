package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cuesync/internal/companion"
	"github.com/five82/cuesync/internal/player"
	"github.com/five82/cuesync/internal/schedule"
	"github.com/five82/cuesync/internal/settings"
	"github.com/five82/cuesync/internal/state"
)

const testSchedule = `{
	"01/01/2020": {"song1": "Old Hymn.mp3"},
	"15/06/2099": {"song1": "Amazing Grace.mp3", "song1path": "C:/media/grace.xspf", "communion": "Quiet.mp4"},
	"01/01/2099": {"song1": "New Year.mp3"}
}`

type fakeSession struct {
	mu        sync.Mutex
	settings  *settings.Store
	doc       *schedule.Document
	status    state.Snapshot
	reachable bool

	activated   []string
	activateErr error
	fieldErrs   []companion.FieldError
	launchErr   error
}

func newFakeSession(t *testing.T, configured bool) *fakeSession {
	t.Helper()
	st, err := settings.Open(filepath.Join(t.TempDir(), "uploadsettings.ini"))
	if err != nil {
		t.Fatalf("settings.Open: %v", err)
	}
	if configured {
		if err := st.Update(t.TempDir(), "127.0.0.1", false); err != nil {
			t.Fatalf("settings.Update: %v", err)
		}
	}
	doc, err := schedule.Parse([]byte(testSchedule))
	if err != nil {
		t.Fatalf("schedule.Parse: %v", err)
	}
	return &fakeSession{settings: st, doc: doc, reachable: true}
}

func (f *fakeSession) Configured() bool          { return f.settings.IsValid() }
func (f *fakeSession) Settings() *settings.Store { return f.settings }
func (f *fakeSession) Host() string              { return f.settings.CompanionIP() }

func (f *fakeSession) Status() state.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.status
	snap.Host = f.Host()
	return snap
}

func (f *fakeSession) Document() *schedule.Document { return f.doc }
func (f *fakeSession) LoadSchedule() error          { return nil }

func (f *fakeSession) InitialSelection(today time.Time) (schedule.Selection, bool) {
	return f.doc.Select(today)
}

func (f *fakeSession) Refresh(previous string) (string, error) {
	if f.doc.Has(previous) {
		return previous, nil
	}
	e, ok := f.doc.Earliest()
	if !ok {
		return "", nil
	}
	return e.Key, nil
}

func (f *fakeSession) CheckConnection(context.Context) bool { return f.reachable }

func (f *fakeSession) TryHost(_ context.Context, host string) error {
	if !f.reachable {
		return errors.New("unreachable")
	}
	return f.settings.Update(f.settings.SaveFolder(), host, f.settings.ShowRefreshButton())
}

func (f *fakeSession) CurrentDate(context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.CurrentDate, f.status.HasDate = "15/06/2099", true
	return f.status.CurrentDate, true
}

func (f *fakeSession) Activate(_ context.Context, date string) ([]companion.FieldError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activateErr != nil {
		return nil, f.activateErr
	}
	f.activated = append(f.activated, date)
	return f.fieldErrs, nil
}

func (f *fakeSession) LaunchPlayer(context.Context) error { return f.launchErr }
func (f *fakeSession) OpenPlayerFolder() error            { return player.ErrNotFound }

func (f *fakeSession) UpdateSettings(folder, host string, showRefresh bool) error {
	return f.settings.Update(folder, host, showRefresh)
}

func newTestModel(t *testing.T, s *fakeSession, confirm bool) Model {
	t.Helper()
	m := New(Options{
		Session:         s,
		PrefsPath:       filepath.Join(t.TempDir(), "prefs.toml"),
		ConfirmActivate: confirm,
		Now:             func() time.Time { return time.Date(2099, 3, 1, 0, 0, 0, 0, time.UTC) },
	})
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

// step applies msg and drops the resulting command.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func stepCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadSchedule(t *testing.T, m Model) Model {
	t.Helper()
	msg := loadScheduleCmd(m.session, "", m.now())()
	return step(t, m, msg)
}

func TestNewOpensSettingsWhenUnconfigured(t *testing.T) {
	m := newTestModel(t, newFakeSession(t, false), false)

	if _, ok := m.activeModal().(settingsModal); !ok {
		t.Fatalf("active modal = %T, want settingsModal", m.activeModal())
	}
	if m.feedback.level != levelWarning || !strings.Contains(m.feedback.text, "missing") {
		t.Fatalf("feedback = %+v, want missing-config warning", m.feedback)
	}
}

func TestScheduleSelectsNearestUpcoming(t *testing.T) {
	m := loadSchedule(t, newTestModel(t, newFakeSession(t, true), false))

	if got := m.selectedDate(); got != "15/06/2099" {
		t.Fatalf("selectedDate() = %q, want 15/06/2099", got)
	}
	if m.feedback.text != "" {
		t.Fatalf("feedback = %q, want empty", m.feedback.text)
	}
}

func TestScheduleDefaultedWarns(t *testing.T) {
	m := newTestModel(t, newFakeSession(t, true), false)
	m = step(t, m, scheduleMsg{
		dates:     []string{"01/01/2020"},
		selection: schedule.Selection{Key: "01/01/2020", Defaulted: true},
		selected:  true,
	})

	if m.feedback.text != msgDefaulted || m.feedback.level != levelWarning {
		t.Fatalf("feedback = %+v, want defaulted warning", m.feedback)
	}
}

func TestScheduleEmptyReportsNoData(t *testing.T) {
	m := newTestModel(t, newFakeSession(t, true), false)
	m = step(t, m, scheduleMsg{err: schedule.ErrNotFound})

	if m.feedback.text != msgNoData {
		t.Fatalf("feedback = %q, want %q", m.feedback.text, msgNoData)
	}
	if m.selectedDate() != "" {
		t.Fatalf("selectedDate() = %q, want empty", m.selectedDate())
	}
}

func TestNavigationMovesSelection(t *testing.T) {
	m := loadSchedule(t, newTestModel(t, newFakeSession(t, true), false))

	m = step(t, m, runes("g"))
	if got := m.selectedDate(); got != "01/01/2020" {
		t.Fatalf("after g selectedDate() = %q", got)
	}
	m = step(t, m, runes("j"))
	if got := m.selectedDate(); got != "01/01/2099" {
		t.Fatalf("after j selectedDate() = %q", got)
	}
	m = step(t, m, runes("G"))
	m = step(t, m, runes("j"))
	if got := m.selectedDate(); got != "15/06/2099" {
		t.Fatalf("after G j selectedDate() = %q", got)
	}
}

func TestPingFailureOpensReconnect(t *testing.T) {
	s := newFakeSession(t, true)
	m := newTestModel(t, s, false)

	m = step(t, m, connCheckMsg{reachable: false, host: "127.0.0.1"})
	if _, ok := m.activeModal().(reconnectModal); !ok {
		t.Fatalf("active modal = %T, want reconnectModal", m.activeModal())
	}

	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.activeModal() != nil {
		t.Fatalf("modal still open after esc")
	}
	if _, ok := cmd().(reconnectSkippedMsg); !ok {
		t.Fatalf("esc did not emit reconnectSkippedMsg")
	}
	m = step(t, m, reconnectSkippedMsg{})
	if m.feedback.level != levelWarning {
		t.Fatalf("feedback = %+v, want warning", m.feedback)
	}
}

func TestHostResultFailureReopensReconnect(t *testing.T) {
	m := newTestModel(t, newFakeSession(t, true), false)
	m = step(t, m, hostResultMsg{host: "10.0.0.9", err: errors.New("unreachable")})

	r, ok := m.activeModal().(reconnectModal)
	if !ok {
		t.Fatalf("active modal = %T, want reconnectModal", m.activeModal())
	}
	if !strings.Contains(r.err, "Still cannot connect to Companion at 10.0.0.9") {
		t.Fatalf("reconnect error = %q", r.err)
	}
}

func TestActivateWithoutConfirm(t *testing.T) {
	s := newFakeSession(t, true)
	m := loadSchedule(t, newTestModel(t, s, false))

	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.busy == "" || cmd == nil {
		t.Fatalf("enter did not start activation")
	}
	msg, ok := cmd().(activatedMsg)
	if !ok {
		t.Fatalf("activation cmd returned %T", msg)
	}
	if len(s.activated) != 1 || s.activated[0] != "15/06/2099" {
		t.Fatalf("activated = %v", s.activated)
	}

	m = step(t, m, msg)
	if m.busy != "" {
		t.Fatalf("busy = %q after activation", m.busy)
	}
	if m.feedback.text != "Service for 15/06/2099 activated!" || m.feedback.level != levelSuccess {
		t.Fatalf("feedback = %+v", m.feedback)
	}

	m = step(t, m, playerMsg{})
	if m.feedback.text != "Service for 15/06/2099 activated! VLC launched." {
		t.Fatalf("feedback = %q", m.feedback.text)
	}
}

func TestActivateIgnoredWhileBusy(t *testing.T) {
	m := loadSchedule(t, newTestModel(t, newFakeSession(t, true), false))
	m.busy = "Activating..."

	_, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("activation started while busy")
	}
}

func TestActivateConfirmDialog(t *testing.T) {
	m := loadSchedule(t, newTestModel(t, newFakeSession(t, true), true))

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.activeModal().(confirmModal); !ok {
		t.Fatalf("active modal = %T, want confirmModal", m.activeModal())
	}

	m, cmd := stepCmd(t, m, runes("y"))
	confirmed, ok := cmd().(activateConfirmedMsg)
	if !ok || confirmed.date != "15/06/2099" {
		t.Fatalf("confirm emitted %+v", confirmed)
	}
	if m.activeModal() != nil {
		t.Fatalf("confirm dialog still open")
	}
}

func TestActivationWarningsDialog(t *testing.T) {
	m := newTestModel(t, newFakeSession(t, true), false)
	errs := make([]companion.FieldError, 7)
	for i := range errs {
		errs[i] = companion.FieldError{Variable: "song1", Err: errors.New("boom")}
	}

	m = step(t, m, activatedMsg{date: "15/06/2099", errs: errs})
	n, ok := m.activeModal().(noticeModal)
	if !ok {
		t.Fatalf("active modal = %T, want noticeModal", m.activeModal())
	}
	if n.title != "Upload Warnings" {
		t.Fatalf("title = %q", n.title)
	}
	// header line + maxWarnings + overflow line
	if len(n.lines) != maxWarnings+2 {
		t.Fatalf("lines = %d, want %d", len(n.lines), maxWarnings+2)
	}
	if m.feedback.level != levelSuccess {
		t.Fatalf("feedback = %+v, want success", m.feedback)
	}
}

func TestActivationFailure(t *testing.T) {
	m := newTestModel(t, newFakeSession(t, true), false)
	m = step(t, m, activatedMsg{date: "15/06/2099", err: errors.New("no route")})

	if m.feedback.text != msgUploadFailed || m.feedback.level != levelDanger {
		t.Fatalf("feedback = %+v", m.feedback)
	}
	n, ok := m.activeModal().(noticeModal)
	if !ok || !strings.HasPrefix(n.lines[0], "Upload failed: ") {
		t.Fatalf("modal = %#v", m.activeModal())
	}
}

func TestPlayerFailureOffersFolder(t *testing.T) {
	m := newTestModel(t, newFakeSession(t, true), false)
	m = step(t, m, playerMsg{err: player.ErrNotFound})

	if _, ok := m.activeModal().(playerModal); !ok {
		t.Fatalf("active modal = %T, want playerModal", m.activeModal())
	}
	m, cmd := stepCmd(t, m, runes("y"))
	if _, ok := cmd().(openFolderRequestMsg); !ok {
		t.Fatalf("y did not request the install folder")
	}

	m, cmd = stepCmd(t, m, openFolderRequestMsg{})
	m = step(t, m, cmd())
	n, ok := m.activeModal().(noticeModal)
	if !ok || n.title != "VLC Not Found" {
		t.Fatalf("modal = %#v, want VLC Not Found notice", m.activeModal())
	}
}

func TestRefreshRequiresSetting(t *testing.T) {
	s := newFakeSession(t, true)
	m := loadSchedule(t, newTestModel(t, s, false))

	if _, cmd := stepCmd(t, m, runes("r")); cmd != nil {
		t.Fatalf("refresh ran with the button hidden")
	}

	if err := s.settings.Update(s.settings.SaveFolder(), s.settings.CompanionIP(), true); err != nil {
		t.Fatalf("settings.Update: %v", err)
	}
	m, cmd := stepCmd(t, m, runes("r"))
	if cmd == nil {
		t.Fatalf("refresh did not run")
	}
	m = step(t, m, cmd())
	if m.feedback.text != msgRefreshed || m.feedback.level != levelInfo {
		t.Fatalf("feedback = %+v", m.feedback)
	}
	if m.selectedDate() != "15/06/2099" {
		t.Fatalf("refresh lost the selection: %q", m.selectedDate())
	}
}

func TestSettingsModalValidates(t *testing.T) {
	keys := DefaultKeyMap()
	var modal Modal = newSettingsModal("", "", false, "")

	modal, cmd, closed := modal.Update(tea.KeyMsg{Type: tea.KeyEnter}, keys)
	if closed || cmd != nil {
		t.Fatalf("empty settings were accepted")
	}
	if s := modal.(settingsModal); s.err == "" {
		t.Fatalf("no validation error shown")
	}

	filled := newSettingsModal("/srv/services", "10.0.0.5", false, "")
	modal = filled
	modal, _, _ = modal.Update(tea.KeyMsg{Type: tea.KeyTab}, keys)
	modal, _, _ = modal.Update(tea.KeyMsg{Type: tea.KeyTab}, keys)
	modal, _, _ = modal.Update(tea.KeyMsg{Type: tea.KeySpace}, keys)
	_, cmd, closed = modal.Update(tea.KeyMsg{Type: tea.KeyEnter}, keys)
	if !closed {
		t.Fatalf("valid settings did not close the dialog")
	}
	got, ok := cmd().(settingsSubmitMsg)
	want := settingsSubmitMsg{folder: "/srv/services", host: "10.0.0.5", showRefresh: true}
	if !ok || got != want {
		t.Fatalf("submit = %+v, want %+v", got, want)
	}
}

func TestSettingsSavedReloads(t *testing.T) {
	m := newTestModel(t, newFakeSession(t, true), false)
	m, cmd := stepCmd(t, m, settingsSavedMsg{})

	n, ok := m.activeModal().(noticeModal)
	if !ok || n.lines[0] != "Settings saved successfully!" {
		t.Fatalf("modal = %#v", m.activeModal())
	}
	if cmd == nil {
		t.Fatalf("no reload after saving settings")
	}
}

func TestModalsQueue(t *testing.T) {
	m := newTestModel(t, newFakeSession(t, true), false)
	m = step(t, m, playerMsg{err: errors.New("exec failed")})
	m = step(t, m, activatedMsg{date: "15/06/2099", err: errors.New("later")})

	if _, ok := m.activeModal().(playerModal); !ok {
		t.Fatalf("first modal = %T, want playerModal", m.activeModal())
	}
	m = step(t, m, runes("n"))
	if _, ok := m.activeModal().(noticeModal); !ok {
		t.Fatalf("second modal = %T, want noticeModal", m.activeModal())
	}
}

func TestViewRendersHeader(t *testing.T) {
	s := newFakeSession(t, true)
	m := loadSchedule(t, newTestModel(t, s, false))
	m = step(t, m, currentDateCmd(context.Background(), s)())

	out := m.View()
	for _, want := range []string{"Current Service Date: 15/06/2099", "Amazing Grace 🎵", "Quiet", "Communion"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestLogsViewToggleFollow(t *testing.T) {
	m := newTestModel(t, newFakeSession(t, true), false)
	m = step(t, m, runes("l"))
	if m.currentView != ViewLogs {
		t.Fatalf("currentView = %v, want ViewLogs", m.currentView)
	}
	m = step(t, m, logsMsg{lines: []string{"time=x level=WARN msg=hello"}})
	if len(m.logLines) != 1 {
		t.Fatalf("logLines = %v", m.logLines)
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.logFollow {
		t.Fatalf("space did not pause following")
	}
	m = step(t, m, runes("q"))
	if m.currentView != ViewService {
		t.Fatalf("q did not return to the service view")
	}
}

func TestCycleThemeSavesPrefs(t *testing.T) {
	m := newTestModel(t, newFakeSession(t, true), false)
	before := m.theme.Name
	m = step(t, m, runes("T"))
	if m.theme.Name == before {
		t.Fatalf("theme did not change")
	}
}

func TestConnectionBadge(t *testing.T) {
	tests := []struct {
		name string
		snap state.Snapshot
		want string
	}{
		{"unconfigured", state.Snapshot{}, badgeUnconfigured},
		{"checking", state.Snapshot{Host: "h"}, badgeChecking},
		{"online", state.Snapshot{Host: "h", Checked: true, Reachable: true}, badgeOnline},
		{"offline after check", state.Snapshot{Host: "h", Checked: true}, badgeOffline},
		{"offline failures", state.Snapshot{Host: "h", Checked: true, Reachable: true, ConsecutiveFailures: 2}, badgeOffline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connectionBadge(tt.snap); got != tt.want {
				t.Fatalf("connectionBadge() = %q, want %q", got, tt.want)
			}
		})
	}
}
