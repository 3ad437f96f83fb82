package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/five82/cuesync/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override cuesync config path (optional)")
	settingsPath := flag.String("settings", "", "override uploadsettings.ini path (optional)")
	prefsPath := flag.String("prefs", "", "override UI prefs path (optional)")
	pollSeconds := flag.Int("poll", 0, "re-read the Companion service date every N seconds (optional)")
	debug := flag.Bool("debug", false, "enable debug logging")
	list := flag.Bool("list", false, "print the schedule and exit")
	activate := flag.String("activate", "", "activate DD/MM/YYYY or \"next\" without the TUI and exit")
	noPlayer := flag.Bool("no-player", false, "do not launch VLC after -activate")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:   *configPath,
		SettingsPath: *settingsPath,
		PrefsPath:    *prefsPath,
		Debug:        *debug,
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	var err error
	switch {
	case *list:
		err = app.List(ctx, opts, os.Stdout, time.Now())
	case *activate != "":
		err = app.Activate(ctx, opts, app.ActivateOptions{
			Date:       *activate,
			SkipPlayer: *noPlayer,
			Today:      time.Now(),
		}, os.Stdout)
	default:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			err = fmt.Errorf("%w: the interactive UI needs a terminal; use -list or -activate", app.ErrStartup)
			break
		}
		err = app.Run(ctx, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "cuesync: %v\n", err)
		return 1
	}
	return 0
}
