package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/five82/cuesync/internal/companion"
	"github.com/five82/cuesync/internal/player"
	"github.com/five82/cuesync/internal/schedule"
	"github.com/five82/cuesync/internal/settings"
	"github.com/five82/cuesync/internal/state"
)

var (
	// ErrConfigIncomplete means the schedule folder or Companion host is unset.
	ErrConfigIncomplete = errors.New("configuration incomplete")
	// ErrSyncUnreachable means the Companion host did not answer a connection check.
	ErrSyncUnreachable = errors.New("companion unreachable")
	// ErrUnknownDate means the requested service is not in the schedule.
	ErrUnknownDate = errors.New("service date not in schedule")
	// ErrDateUnavailable means the current service date could not be read.
	ErrDateUnavailable = errors.New("current service date unavailable")
)

// Launcher starts the media player.
type Launcher interface {
	Launch(ctx context.Context) error
	OpenInstallFolder() error
}

// ClientFactory builds a sync client for a host.
type ClientFactory func(host string) (companion.Syncer, error)

// SessionConfig wires a Session.
type SessionConfig struct {
	Settings  *settings.Store
	Launcher  Launcher
	NewClient ClientFactory // nil uses companion.NewClient
	Status    *state.Store  // nil allocates one
	Logger    *slog.Logger
	Workers   int
}

// Session owns the operator settings, the schedule repository, the sync
// client and the player launcher. It is safe for concurrent use.
type Session struct {
	settings  *settings.Store
	launcher  Launcher
	newClient ClientFactory
	status    *state.Store
	logger    *slog.Logger

	mu     sync.RWMutex
	repo   *schedule.Repository
	client companion.Syncer
}

// NewSession builds a session and initialises it from the current settings.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	status := cfg.Status
	if status == nil {
		status = &state.Store{}
	}
	newClient := cfg.NewClient
	if newClient == nil {
		workers := cfg.Workers
		newClient = func(host string) (companion.Syncer, error) {
			client, err := companion.NewClient(host,
				companion.WithLogger(logger),
				companion.WithWorkers(workers),
			)
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	}

	s := &Session{
		settings:  cfg.Settings,
		launcher:  cfg.Launcher,
		newClient: newClient,
		status:    status,
		logger:    logger,
	}
	if err := s.Reinit(); err != nil {
		logger.Warn("session init", "error", err)
	}
	return s
}

// Reinit rebuilds the repository and client from settings. Both stay nil
// when settings are incomplete.
func (s *Session) Reinit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.repo = nil
	s.client = nil
	if !s.settings.IsValid() {
		s.status.SetHost("")
		return ErrConfigIncomplete
	}

	s.repo = schedule.NewRepository(s.settings.ScheduleFile(), s.logger)

	host := s.settings.CompanionIP()
	s.status.SetHost(host)
	client, err := s.newClient(host)
	if err != nil {
		return fmt.Errorf("init companion client: %w", err)
	}
	s.client = client
	return nil
}

// Configured reports whether both required settings are present.
func (s *Session) Configured() bool {
	return s.settings.IsValid()
}

// Settings returns the backing settings store.
func (s *Session) Settings() *settings.Store {
	return s.settings
}

// Status returns the latest sync target snapshot.
func (s *Session) Status() state.Snapshot {
	return s.status.Snapshot()
}

// Host returns the configured Companion host.
func (s *Session) Host() string {
	return s.settings.CompanionIP()
}

// Document returns the loaded schedule. It is never nil.
func (s *Session) Document() *schedule.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.repo == nil {
		return schedule.Empty()
	}
	return s.repo.Document()
}

// LoadSchedule reloads the schedule file.
func (s *Session) LoadSchedule() error {
	s.mu.RLock()
	repo := s.repo
	s.mu.RUnlock()
	if repo == nil {
		return ErrConfigIncomplete
	}
	return repo.Reload()
}

// InitialSelection picks the nearest service on or after today, falling back
// to the earliest date. It returns false when the schedule is empty.
func (s *Session) InitialSelection(today time.Time) (schedule.Selection, bool) {
	return s.Document().Select(today)
}

// Refresh reloads the schedule and returns the date to select: previous if
// it still exists, else the earliest date, else "".
func (s *Session) Refresh(previous string) (string, error) {
	if err := s.LoadSchedule(); err != nil {
		return "", err
	}
	doc := s.Document()
	if previous != "" && doc.Has(previous) {
		return previous, nil
	}
	if entry, ok := doc.Earliest(); ok {
		return entry.Key, nil
	}
	return "", nil
}

// CheckConnection pings the configured Companion host.
func (s *Session) CheckConnection(ctx context.Context) bool {
	client := s.syncer()
	if client == nil {
		return false
	}
	ok := client.Ping(ctx)
	s.status.RecordCheck(ok)
	if !ok {
		s.logger.Warn("companion unreachable", "host", client.Host())
	}
	return ok
}

// TryHost pings host and, when it answers, saves it and reinitialises.
func (s *Session) TryHost(ctx context.Context, host string) error {
	host = strings.TrimSpace(host)
	if host == "" {
		return ErrConfigIncomplete
	}
	client, err := s.newClient(host)
	if err != nil {
		return fmt.Errorf("companion host %q: %w", host, err)
	}
	if !client.Ping(ctx) {
		return fmt.Errorf("%w: %s", ErrSyncUnreachable, host)
	}
	if err := s.settings.Update(s.settings.SaveFolder(), host, s.settings.ShowRefreshButton()); err != nil {
		return err
	}
	s.logger.Info("companion host updated", "host", host)
	if err := s.Reinit(); err != nil && !errors.Is(err, ErrConfigIncomplete) {
		return err
	}
	s.status.RecordCheck(true)
	return nil
}

// CurrentDate reads the service date Companion currently holds.
func (s *Session) CurrentDate(ctx context.Context) (string, bool) {
	client := s.syncer()
	if client == nil {
		return "", false
	}
	date, ok := client.ReadCurrentDate(ctx)
	if ok {
		s.status.Update(date, nil)
	} else {
		s.status.Update("", ErrDateUnavailable)
	}
	return date, ok
}

// Activate pushes the service for date to Companion. Individual write
// failures are returned as FieldErrors; the error result covers only
// conditions that prevented the push from starting.
func (s *Session) Activate(ctx context.Context, date string) ([]companion.FieldError, error) {
	client := s.syncer()
	if client == nil {
		return nil, ErrConfigIncomplete
	}
	doc := s.Document()
	if !doc.Has(date) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDate, date)
	}

	s.logger.Info("activating service", "date", date, "host", client.Host())
	errs := client.Push(ctx, doc.FieldsFor(date), date)
	if len(errs) > 0 {
		s.logger.Warn("service activated with errors", "date", date, "failed", len(errs))
	} else {
		s.logger.Info("service activated", "date", date)
	}
	return errs, nil
}

// LaunchPlayer starts VLC.
func (s *Session) LaunchPlayer(ctx context.Context) error {
	if s.launcher == nil {
		return player.ErrNotFound
	}
	if err := s.launcher.Launch(ctx); err != nil {
		s.logger.Warn("vlc launch failed", "error", err)
		return err
	}
	s.logger.Info("vlc launched")
	return nil
}

// OpenPlayerFolder opens the VLC install folder in the file browser.
func (s *Session) OpenPlayerFolder() error {
	if s.launcher == nil {
		return player.ErrNotFound
	}
	return s.launcher.OpenInstallFolder()
}

// UpdateSettings saves new operator settings and reinitialises. Both the
// folder and the host are required.
func (s *Session) UpdateSettings(folder, host string, showRefresh bool) error {
	folder = strings.TrimSpace(folder)
	host = strings.TrimSpace(host)
	if folder == "" || host == "" {
		return ErrConfigIncomplete
	}
	if err := s.settings.Update(folder, host, showRefresh); err != nil {
		return err
	}
	s.logger.Info("settings saved", "folder", folder, "host", host, "show_refresh", showRefresh)
	return s.Reinit()
}

func (s *Session) syncer() companion.Syncer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}
