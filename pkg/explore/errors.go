package explore

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("explore: aborted")
	// ErrEmptyContract is returned when there are no paths to browse.
	ErrEmptyContract = errors.New("explore: contract declares no paths")
)
