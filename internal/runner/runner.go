package runner

import (
	"errors"
	"fmt"

	"github.com/Norgate-AV/buildcache/internal/codes"
)

// DefaultCommand is the build run when none is given
var DefaultCommand = []string{"mkdocs", "build"}

// BuildError is a build command that did not succeed
type BuildError struct {
	Command string
	Code    int
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build command %q failed (exit code %d): %v", e.Command, e.Code, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for a failed build
func ExitCode(err error) int {
	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		return buildErr.Code
	}

	return codes.GeneralError
}
