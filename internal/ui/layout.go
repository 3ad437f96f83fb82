package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the date list is
	// hidden and only the selected service is shown.
	LayoutCompactWidth = 72

	// dateListWidth is the width of the date column in the service view.
	dateListWidth = 18
)

// Log display limits.
const (
	// LogTailLines is the number of lines read from the end of the log file.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// actionTimeout bounds one UI-triggered network action.
	actionTimeout = 30 * time.Second
)

// maxWarnings is how many push failures the warnings dialog lists.
const maxWarnings = 5
