package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/five82/cuesync/internal/player"
)

// List prints every service date in calendar order, marking the nearest
// upcoming one.
func List(ctx context.Context, opts Options, out io.Writer, today time.Time) error {
	rt, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer rt.Close()
	return list(rt.session, out, today)
}

func list(session *Session, out io.Writer, today time.Time) error {
	if err := session.LoadSchedule(); err != nil {
		return err
	}
	doc := session.Document()
	if doc.Len() == 0 {
		fmt.Fprintln(out, "No service data found in selections.json.")
		return nil
	}
	next, hasNext := doc.NearestUpcoming(today)
	for _, date := range doc.SortedDates() {
		marker := " "
		if hasNext && date == next.Key {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, date)
	}
	for _, key := range doc.Skipped() {
		fmt.Fprintf(out, "! skipped %q: not a DD/MM/YYYY date\n", key)
	}
	return nil
}

// ActivateOptions control a headless activation.
type ActivateOptions struct {
	// Date is a DD/MM/YYYY key or "next" for the nearest upcoming service.
	Date       string
	SkipPlayer bool
	Today      time.Time
}

// Activate pushes one service to Companion without the TUI.
func Activate(ctx context.Context, opts Options, aopts ActivateOptions, out io.Writer) error {
	rt, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer rt.Close()
	return activate(ctx, rt.session, aopts, out)
}

func activate(ctx context.Context, session *Session, aopts ActivateOptions, out io.Writer) error {
	if !session.Configured() {
		return fmt.Errorf("%w: set the schedule folder and Companion IP first", ErrConfigIncomplete)
	}
	if err := session.LoadSchedule(); err != nil {
		return err
	}

	date := strings.TrimSpace(aopts.Date)
	if strings.EqualFold(date, "next") {
		sel, ok := session.InitialSelection(aopts.Today)
		if !ok {
			return errors.New("no service data found in selections.json")
		}
		if sel.Defaulted {
			fmt.Fprintln(out, "No upcoming service found. Defaulted to earliest date.")
		}
		date = sel.Key
	}

	if !session.CheckConnection(ctx) {
		return fmt.Errorf("%w: %s", ErrSyncUnreachable, session.Host())
	}

	errs, err := session.Activate(ctx, date)
	if err != nil {
		return err
	}
	for _, fe := range errs {
		fmt.Fprintf(out, "warning: failed to update %s\n", fe.Error())
	}
	fmt.Fprintf(out, "Service for %s activated!\n", date)

	if aopts.SkipPlayer {
		return nil
	}
	if err := session.LaunchPlayer(ctx); err != nil {
		if errors.Is(err, player.ErrNotFound) {
			fmt.Fprintf(out, "VLC not found. Install it from %s\n", player.DownloadURL)
			return nil
		}
		return fmt.Errorf("launch vlc: %w", err)
	}
	fmt.Fprintln(out, "VLC launched.")
	return nil
}
