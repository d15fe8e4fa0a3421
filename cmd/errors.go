package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/Norgate-AV/buildcache/internal/cache"
	"github.com/Norgate-AV/buildcache/internal/codes"
	"github.com/Norgate-AV/buildcache/internal/config"
	"github.com/Norgate-AV/buildcache/internal/fingerprint"
	"github.com/Norgate-AV/buildcache/internal/runner"
)

// exitStatus ends the process with a code and no error message
type exitStatus struct {
	code int
}

func (e *exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitCode reports err and returns the process exit code for it
func exitCode(err error, stdout, stderr io.Writer) int {
	var (
		abort    *cache.AbortError
		status   *exitStatus
		buildErr *runner.BuildError
		cfgErr   *config.Error
		patErr   *fingerprint.PatternError
		readErr  *fingerprint.ReadError
	)

	switch {
	case errors.As(err, &abort):
		fmt.Fprintln(stdout, abort.Message)
		return abort.ExitCode
	case errors.As(err, &status):
		return status.code
	case errors.As(err, &buildErr):
		// The runner already reported the failure
		return runner.ExitCode(err)
	case errors.As(err, &cfgErr), errors.As(err, &patErr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return codes.ConfigError
	case errors.As(err, &readErr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return codes.InputError
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return codes.GeneralError
	}
}
