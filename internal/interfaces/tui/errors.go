package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNotSubmitted is returned when the user leaves the confirmation step after a failed submission.
	ErrNotSubmitted = errors.New("tui: application was not submitted")
)
