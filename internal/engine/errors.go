package engine

import "fmt"

// PatternError reports a regular expression that failed to compile inside
// an indicator category. Patterns compile eagerly when the engine is built,
// so a bad pattern can never silently skip matching at scoring time.
type PatternError struct {
	Detector string
	Category string
	Pattern  string
	Err      error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("detector %q: category %q: compile pattern %q: %v",
		e.Detector, e.Category, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
