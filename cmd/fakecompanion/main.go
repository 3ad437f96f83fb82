// Command fakecompanion serves the Companion custom-variable API from memory
// so cuesync can be exercised without a Companion install.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/five82/cuesync/internal/companion"
	"github.com/five82/cuesync/internal/fakecompanion"
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", ":8000", "listen address")
	date := flag.String("date", "", "initial ServiceDate value (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	seed := map[string]string{}
	if *date != "" {
		seed[companion.VariableServiceDate] = *date
	}
	store := fakecompanion.NewStore(seed)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           fakecompanion.NewHandler(store, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fake companion listening", "addr", *addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "fakecompanion: %v\n", err)
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "fakecompanion: %v\n", err)
			return 1
		}
		logger.Info("fake companion stopped", "variables", len(store.Values()))
	}
	return 0
}
