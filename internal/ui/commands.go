package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cuesync/internal/applog"
	"github.com/five82/cuesync/internal/companion"
	"github.com/five82/cuesync/internal/schedule"
	"github.com/five82/cuesync/internal/state"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// scheduleMsg carries a freshly loaded schedule and the date to select.
type scheduleMsg struct {
	dates     []string
	selection schedule.Selection
	selected  bool
	refresh   bool // operator-requested refresh
	err       error
}

type connCheckMsg struct {
	reachable bool
	host      string
}

type activatedMsg struct {
	date string
	errs []companion.FieldError
	err  error
}

type playerMsg struct{ err error }

type folderMsg struct{ err error }

type settingsSavedMsg struct{ err error }

type hostResultMsg struct {
	host string
	err  error
}

type logsMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(s Session) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(s.Status())
	}
}

// loadScheduleCmd reloads the schedule. previous stays selected when it is
// still present; otherwise the nearest upcoming service is chosen.
func loadScheduleCmd(s Session, previous string, today time.Time) tea.Cmd {
	return func() tea.Msg {
		err := s.LoadSchedule()
		doc := s.Document()
		msg := scheduleMsg{dates: doc.SortedDates(), err: err}
		if previous != "" && doc.Has(previous) {
			msg.selection, msg.selected = schedule.Selection{Key: previous}, true
			return msg
		}
		msg.selection, msg.selected = s.InitialSelection(today)
		return msg
	}
}

// refreshCmd is the operator's refresh: previous stays selected, else the
// earliest date.
func refreshCmd(s Session, previous string) tea.Cmd {
	return func() tea.Msg {
		key, err := s.Refresh(previous)
		return scheduleMsg{
			dates:     s.Document().SortedDates(),
			selection: schedule.Selection{Key: key},
			selected:  key != "",
			refresh:   true,
			err:       err,
		}
	}
}

func connCheckCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		return connCheckMsg{reachable: s.CheckConnection(ctx), host: s.Host()}
	}
}

func currentDateCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		s.CurrentDate(ctx)
		return snapshotMsg(s.Status())
	}
}

func activateCmd(ctx context.Context, s Session, date string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 2*actionTimeout)
		defer cancel()
		errs, err := s.Activate(ctx, date)
		return activatedMsg{date: date, errs: errs, err: err}
	}
}

func launchPlayerCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		return playerMsg{err: s.LaunchPlayer(ctx)}
	}
}

func openFolderCmd(s Session) tea.Cmd {
	return func() tea.Msg {
		return folderMsg{err: s.OpenPlayerFolder()}
	}
}

func saveSettingsCmd(s Session, msg settingsSubmitMsg) tea.Cmd {
	return func() tea.Msg {
		return settingsSavedMsg{err: s.UpdateSettings(msg.folder, msg.host, msg.showRefresh)}
	}
}

func tryHostCmd(ctx context.Context, s Session, host string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		return hostResultMsg{host: host, err: s.TryHost(ctx, host)}
	}
}

func loadLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := applog.Tail(path, LogTailLines)
		return logsMsg{lines: lines, err: err}
	}
}
