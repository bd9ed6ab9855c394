package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutSplitWidth is the minimum width for the list + detail split.
	LayoutSplitWidth = 120
)

// Timing constants.
const (
	// FetchTimeout bounds each catalog fetch.
	FetchTimeout = 15 * time.Second

	// ActionTimeout bounds login, address and order calls.
	ActionTimeout = 15 * time.Second
)

// chromeHeight is the header plus command bar.
const chromeHeight = 2
