// Package state holds the shared view of the Companion sync target.
//
// The session writes to the Store after every connection check and current-date read;
// the optional background poller does the same. The UI only ever reads a
// Snapshot, which is a copy, so rendering never races with an update.
//
//	Writers:                      Reader:
//	  Session.CheckConnection ─┐
//	  Session.CurrentDate ─────┼──→ Store ──→ Snapshot() ──→ header
//	  poller ──────────────────┘
package state
