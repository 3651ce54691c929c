package strategy

import "fmt"

// MaxAttemptsExceededError is the handler's safety net: it is raised when a
// strategy keeps requesting retries past the handler's ceiling, which would
// otherwise loop forever. A conforming strategy switches to Fail on its own
// once its attempts are exhausted.
type MaxAttemptsExceededError struct {
	Ceiling  int
	Attempts int
	Err      error
}

func (e *MaxAttemptsExceededError) Error() string {
	return fmt.Sprintf("retry requested past the ceiling of %d attempts (attempt %d): %v", e.Ceiling, e.Attempts, e.Err)
}

func (e *MaxAttemptsExceededError) Unwrap() error { return e.Err }

// AbortError marks a failure that must not be recovered from, even by outer
// handlers or composite strategies. It is how an Abort result crosses handler
// boundaries without being reinterpreted.
type AbortError struct {
	Err error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("recovery aborted: %v", e.Err)
}

func (e *AbortError) Unwrap() error { return e.Err }
