// Package settings persists the operator settings (schedule folder, Companion
// address and UI flags) in the INI file shared with earlier releases.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/ini.v1"
)

const (
	sectionPaths     = "Paths"
	sectionCompanion = "Companion"
	sectionUI        = "UI"

	keySaveFolder  = "SaveFolderPath"
	keyCompanionIP = "CompanionIP"
	keyShowRefresh = "ShowRefreshButton"

	// ScheduleFileName is the file read from the configured save folder.
	ScheduleFileName = "selections.json"
)

// Store reads and writes the settings file. Every update is written to disk
// before Update returns.
type Store struct {
	mu   sync.RWMutex
	path string
	file *ini.File
}

// DefaultPath returns <user config dir>/CCM/uploadsettings.ini, which is
// %APPDATA%\CCM\uploadsettings.ini on Windows.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "CCM", "uploadsettings.ini"), nil
}

// Open loads the settings at path, writing a default file first when none
// exists. An empty path uses DefaultPath.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		def, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = def
	}

	s := &Store{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.writeDefaults(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat settings: %w", err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	s.file = file
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// SaveFolder returns the folder holding selections.json.
func (s *Store) SaveFolder() string {
	return s.value(sectionPaths, keySaveFolder)
}

// CompanionIP returns the sync target host.
func (s *Store) CompanionIP() string {
	return s.value(sectionCompanion, keyCompanionIP)
}

// ShowRefreshButton reports whether the refresh action is offered in the UI.
func (s *Store) ShowRefreshButton() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, err := s.lookup(sectionUI, keyShowRefresh)
	if err != nil {
		return false
	}
	return key.MustBool(false)
}

// ScheduleFile returns the schedule path inside the save folder, or "" when
// no folder is configured.
func (s *Store) ScheduleFile() string {
	folder := s.SaveFolder()
	if folder == "" {
		return ""
	}
	return filepath.Join(folder, ScheduleFileName)
}

// IsValid reports whether both the save folder and Companion address are set.
// Nothing beyond non-emptiness is checked.
func (s *Store) IsValid() bool {
	return s.SaveFolder() != "" && s.CompanionIP() != ""
}

// Update replaces all three settings and writes the file.
func (s *Store) Update(saveFolder, companionIP string, showRefresh bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file.Section(sectionPaths).Key(keySaveFolder).SetValue(saveFolder)
	s.file.Section(sectionCompanion).Key(keyCompanionIP).SetValue(companionIP)
	s.file.Section(sectionUI).Key(keyShowRefresh).SetValue(formatBool(showRefresh))
	return s.save(s.file)
}

func (s *Store) value(section, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, err := s.lookup(section, key)
	if err != nil {
		return ""
	}
	return k.String()
}

// lookup never creates sections or keys, so readers can share the lock.
func (s *Store) lookup(section, key string) (*ini.Key, error) {
	sec, err := s.file.GetSection(section)
	if err != nil {
		return nil, err
	}
	return sec.GetKey(key)
}

func (s *Store) writeDefaults() error {
	file := ini.Empty()
	file.Section(sectionPaths).Key(keySaveFolder).SetValue("")
	file.Section(sectionCompanion).Key(keyCompanionIP).SetValue("")
	file.Section(sectionUI).Key(keyShowRefresh).SetValue(formatBool(false))
	return s.save(file)
}

func (s *Store) save(file *ini.File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := file.SaveTo(s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// formatBool matches the "True"/"False" spelling existing files use.
func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
