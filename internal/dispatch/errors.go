package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrNoKeyAvailable is returned when the key pool is empty or every key
	// is cooling down.
	ErrNoKeyAvailable = errors.New("no api key available")

	// ErrNoModelAvailable is returned when every candidate model is cooling down.
	ErrNoModelAvailable = errors.New("no model available")
)

// ExhaustedError is the terminal failure of a dispatch that rate-limited its
// way through every eligible model without succeeding.
type ExhaustedError struct {
	Last error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return "all models exhausted"
	}
	return fmt.Sprintf("all models exhausted: %v", e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
