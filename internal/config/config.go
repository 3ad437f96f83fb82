package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the runtime overrides cuesync reads at startup. Operator
// settings (schedule folder, Companion address) live in the settings INI.
type Config struct {
	SettingsPath string
	LogDir       string
	PlayerPaths  []string
	PushWorkers  int
}

const (
	defaultConfigPath  = "~/.config/cuesync/config.toml"
	defaultLogDir      = "~/.local/share/cuesync/logs"
	defaultPushWorkers = 1
	maxPushWorkers     = 13
	logFileName        = "cuesync.log"
)

// Load locates and parses the cuesync config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{LogDir: mustExpand(defaultLogDir), PushWorkers: defaultPushWorkers}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		SettingsPath string   `toml:"settings_path"`
		LogDir       string   `toml:"log_dir"`
		PlayerPaths  []string `toml:"player_paths"`
		PushWorkers  int      `toml:"push_workers"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if settings := strings.TrimSpace(raw.SettingsPath); settings != "" {
		cfg.SettingsPath = mustExpand(settings)
	}

	cfg.LogDir = strings.TrimSpace(raw.LogDir)
	if cfg.LogDir == "" {
		cfg.LogDir = defaultLogDir
	}
	cfg.LogDir = mustExpand(cfg.LogDir)

	for _, p := range raw.PlayerPaths {
		if p = strings.TrimSpace(p); p != "" {
			cfg.PlayerPaths = append(cfg.PlayerPaths, mustExpand(p))
		}
	}

	switch {
	case raw.PushWorkers <= 0:
		cfg.PushWorkers = defaultPushWorkers
	case raw.PushWorkers > maxPushWorkers:
		cfg.PushWorkers = maxPushWorkers
	default:
		cfg.PushWorkers = raw.PushWorkers
	}

	return cfg, nil
}

// LogPath returns the path to the application log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/" + logFileName)
	}
	return filepath.Join(c.LogDir, logFileName)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
