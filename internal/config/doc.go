// Package config loads cuesync's runtime overrides.
//
// # Overview
//
// The operator-facing settings (schedule folder, Companion address, refresh
// toggle) live in the INI file managed by package settings so they stay
// compatible with earlier releases. This package only covers the knobs an
// administrator may want to change without touching that file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/cuesync/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	settings_path = "~/AppData/Roaming/CCM/uploadsettings.ini"
//	log_dir = "~/.local/share/cuesync/logs"
//	player_paths = ["D:/Portable/VLC/vlc.exe"]
//	push_workers = 1
//
// All fields are optional. Tilde expansion is performed automatically.
// push_workers above 1 lets the Companion push write fields concurrently;
// it is clamped to the number of variables written per service.
package config
