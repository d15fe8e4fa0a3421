package cache

import (
	"errors"
	"fmt"
)

// AbortError asks the host to stop the build without treating it as a
// failure
type AbortError struct {
	Message  string
	ExitCode int
}

func (e *AbortError) Error() string {
	return e.Message
}

// ErrUpToDate is returned by BeforeBuild when the previous output is
// still valid
var ErrUpToDate = &AbortError{
	Message:  "Cached build is up to date. Exiting.",
	ExitCode: 0,
}

// IsAbort reports whether err carries an abort signal
func IsAbort(err error) bool {
	var abort *AbortError
	return errors.As(err, &abort)
}

// PersistError reports a record that could not be written after a
// successful build. The next Evaluate falls back to Proceed.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist cache record %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
