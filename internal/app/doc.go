// Package app is the composition root of cuesync.
//
// Run loads the runtime config, opens the log file and the operator settings,
// builds a Session and hands it to the terminal UI. List and Activate do the
// same bootstrap for the headless commands.
//
// # Session
//
// Session owns everything the operator acts on:
//
//   - the settings store (schedule folder, Companion host, refresh toggle)
//   - the schedule repository for <folder>/selections.json
//   - the Companion client, rebuilt whenever the host changes
//   - the VLC launcher
//
// Reinit rebuilds the repository and client from settings. Both are nil when
// settings are incomplete, and every operation that needs them returns
// ErrConfigIncomplete.
//
// # Startup
//
//	Run()
//	  ├─> config.Load()     runtime overrides (~/.config/cuesync/config.toml)
//	  ├─> applog.Open()     slog text handler on <log_dir>/cuesync.log
//	  ├─> settings.Open()   uploadsettings.ini, created with defaults
//	  ├─> NewSession()
//	  ├─> StartPoller()     only with -poll
//	  └─> ui.Run()          blocks until quit
//
// The poller re-reads the current service date and backs off exponentially
// (capped at 30s) while Companion is failing.
package app
