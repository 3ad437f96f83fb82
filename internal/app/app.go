package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/five82/cuesync/internal/applog"
	"github.com/five82/cuesync/internal/config"
	"github.com/five82/cuesync/internal/player"
	"github.com/five82/cuesync/internal/prefs"
	"github.com/five82/cuesync/internal/settings"
	"github.com/five82/cuesync/internal/state"
	"github.com/five82/cuesync/internal/ui"
)

// Options configure the cuesync application.
type Options struct {
	ConfigPath   string
	SettingsPath string // empty uses config, then the platform default
	PrefsPath    string // empty uses default ~/.config/cuesync/prefs.toml
	PollEvery    int    // seconds; zero disables background refresh
	Debug        bool
}

// runtime is everything built before the UI or a headless command starts.
type runtime struct {
	cfg     config.Config
	log     *applog.Logger
	session *Session
	status  *state.Store
}

func (r *runtime) Close() {
	if err := r.log.Close(); err != nil {
		slog.Default().Warn("close log", "error", err)
	}
}

// ErrStartup wraps every failure that stops cuesync before it can serve the
// operator.
var ErrStartup = errors.New("application failed to start")

func bootstrap(opts Options) (*runtime, error) {
	rt, err := build(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartup, err)
	}
	return rt, nil
}

func build(opts Options) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := applog.Open(cfg.LogPath(), opts.Debug)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	settingsPath, err := resolveSettingsPath(opts.SettingsPath, cfg.SettingsPath)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	store, err := settings.Open(settingsPath)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("open settings: %w", err)
	}
	logger.Info("cuesync starting", "settings", settingsPath, "log", logger.Path)

	status := &state.Store{}
	session := NewSession(SessionConfig{
		Settings: store,
		Launcher: player.New(cfg.PlayerPaths, logger.Logger),
		Status:   status,
		Logger:   logger.Logger,
		Workers:  cfg.PushWorkers,
	})

	return &runtime{cfg: cfg, log: logger, session: session, status: status}, nil
}

func resolveSettingsPath(flagPath, configPath string) (string, error) {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p, nil
	}
	if configPath != "" {
		return configPath, nil
	}
	p, err := settings.DefaultPath()
	if err != nil {
		return "", fmt.Errorf("locate settings: %w", err)
	}
	return p, nil
}

// Run boots the cuesync TUI until the context is cancelled or the operator
// quits.
func Run(ctx context.Context, opts Options) error {
	rt, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if opts.PollEvery > 0 {
		StartPoller(ctx, rt.session, time.Duration(opts.PollEvery)*time.Second)
	}

	userPrefs := prefs.Load(opts.PrefsPath)
	uiOpts := ui.Options{
		Context:         ctx,
		Session:         rt.session,
		Logger:          rt.log.Logger,
		LogPath:         rt.log.Path,
		ThemeName:       userPrefs.Theme,
		ConfirmActivate: userPrefs.ConfirmActivate,
		PrefsPath:       opts.PrefsPath,
	}
	if err := ui.Run(uiOpts); err != nil {
		rt.log.Error("application failed to start", "error", err)
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	rt.log.Info("cuesync stopped")
	return nil
}
