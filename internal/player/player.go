// Package player finds and starts the VLC media player.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// DownloadURL is shown when no installation can be found.
const DownloadURL = "https://www.videolan.org/vlc/"

const (
	executableName = "vlc"
	versionTimeout = 3 * time.Second
)

// ErrNotFound is returned when no player executable or install folder exists.
var ErrNotFound = errors.New("vlc not found")

// Launcher locates and starts the player.
type Launcher struct {
	candidates []string
	folders    []string
	name       string
	timeout    time.Duration
	logger     *slog.Logger

	exists  func(path string) bool
	run     func(ctx context.Context, name string, args ...string) error
	start   func(path string) error
	browser func(folder string) error
}

// New returns a Launcher that checks extra first, then the well-known
// install locations for the current OS, then the search path.
func New(extra []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	candidates := make([]string, 0, len(extra)+4)
	candidates = append(candidates, extra...)
	candidates = append(candidates, defaultCandidates(runtime.GOOS)...)

	return &Launcher{
		candidates: candidates,
		folders:    defaultFolders(runtime.GOOS),
		name:       executableName,
		timeout:    versionTimeout,
		logger:     logger,
		exists:     fileExists,
		run:        runQuiet,
		start:      startDetached,
		browser:    openInBrowser,
	}
}

// Candidates returns the absolute paths checked by Locate, in order.
func (l *Launcher) Candidates() []string {
	out := make([]string, len(l.candidates))
	copy(out, l.candidates)
	return out
}

// Locate returns the first existing candidate path. When none exists it runs
// "vlc --version" and, if the process ran to completion within the timeout,
// returns the bare name so the search path resolves it. A non-zero exit still
// counts; a run killed by the timeout does not.
func (l *Launcher) Locate(ctx context.Context) (string, bool) {
	for _, path := range l.candidates {
		if path != "" && l.exists(path) {
			return path, true
		}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	err := l.run(ctx, l.name, "--version")
	if ctxErr := ctx.Err(); ctxErr != nil {
		l.logger.Info("vlc version check did not finish", "error", ctxErr)
		return "", false
	}
	var exitErr *exec.ExitError
	if err == nil || errors.As(err, &exitErr) {
		return l.name, true
	}
	l.logger.Info("vlc not on search path", "error", err)
	return "", false
}

// Launch starts the player with no arguments and returns without waiting
// for it to exit.
func (l *Launcher) Launch(ctx context.Context) error {
	path, ok := l.Locate(ctx)
	if !ok {
		return ErrNotFound
	}
	if err := l.start(path); err != nil {
		l.logger.Error("failed to launch vlc", "path", path, "error", err)
		return fmt.Errorf("start %s: %w", path, err)
	}
	l.logger.Info("vlc launched", "path", path)
	return nil
}

// OpenInstallFolder opens the first existing install folder in the OS file
// browser so the operator can start the player by hand.
func (l *Launcher) OpenInstallFolder() error {
	for _, folder := range l.folders {
		if !l.exists(folder) {
			continue
		}
		if err := l.browser(folder); err != nil {
			l.logger.Error("failed to open folder", "folder", folder, "error", err)
			continue
		}
		return nil
	}
	return ErrNotFound
}

func defaultCandidates(goos string) []string {
	switch goos {
	case "windows":
		user := os.Getenv("USERNAME")
		return []string{
			`C:\Program Files\VideoLAN\VLC\vlc.exe`,
			`C:\Program Files (x86)\VideoLAN\VLC\vlc.exe`,
			`C:\Users\` + user + `\AppData\Local\Programs\VideoLAN\VLC\vlc.exe`,
		}
	case "darwin":
		return []string{"/Applications/VLC.app/Contents/MacOS/VLC"}
	default:
		return []string{"/usr/bin/vlc", "/usr/local/bin/vlc", "/snap/bin/vlc"}
	}
}

func defaultFolders(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\Program Files\VideoLAN\VLC`,
			`C:\Program Files (x86)\VideoLAN\VLC`,
		}
	case "darwin":
		return []string{"/Applications/VLC.app"}
	default:
		return []string{"/usr/share/vlc", filepath.Join("/usr", "lib", "vlc")}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func runQuiet(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func startDetached(path string) error {
	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

func openInBrowser(folder string) error {
	var name string
	switch runtime.GOOS {
	case "windows":
		name = "explorer"
	case "darwin":
		name = "open"
	default:
		name = "xdg-open"
	}
	cmd := exec.Command(name, folder)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
