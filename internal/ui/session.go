package ui

import (
	"context"
	"time"

	"github.com/five82/cuesync/internal/companion"
	"github.com/five82/cuesync/internal/schedule"
	"github.com/five82/cuesync/internal/settings"
	"github.com/five82/cuesync/internal/state"
)

// Session is the application behaviour the UI drives. *app.Session
// implements it.
type Session interface {
	Configured() bool
	Settings() *settings.Store
	Status() state.Snapshot
	Host() string
	Document() *schedule.Document

	LoadSchedule() error
	InitialSelection(today time.Time) (schedule.Selection, bool)
	Refresh(previous string) (string, error)

	CheckConnection(ctx context.Context) bool
	TryHost(ctx context.Context, host string) error
	CurrentDate(ctx context.Context) (string, bool)
	Activate(ctx context.Context, date string) ([]companion.FieldError, error)

	LaunchPlayer(ctx context.Context) error
	OpenPlayerFolder() error
	UpdateSettings(folder, host string, showRefresh bool) error
}
