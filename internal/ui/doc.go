// Package ui provides the terminal user interface for cuesync.
//
// The UI is a Bubble Tea program. Model holds all view state and talks to
// the rest of the application only through the Session interface, which
// *app.Session implements. Every network or disk action runs as a tea.Cmd
// and reports back with a message, so Update never blocks.
//
// # Views
//
//   - Service: the schedule's dates on the left and the six cues of the
//     selected service on the right, with a one-line feedback area below.
//   - Logs: a viewport over the tail of the application log, optionally
//     following new lines.
//
// # Dialogs
//
// Dialogs implement Modal and are queued; only the first is shown and it
// receives all key input until it closes. Settings, reconnect, activation
// confirmation, push warnings and player failures are all dialogs.
//
// # Startup
//
// When settings are incomplete the settings dialog opens immediately.
// Otherwise the schedule load and the Companion connection check start together; a
// failed check opens the reconnect dialog, a successful one fetches the
// current service date shown in the header.
package ui
