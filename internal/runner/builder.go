package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Norgate-AV/buildcache/internal/codes"
	"github.com/Norgate-AV/buildcache/internal/config"
)

// Commander interface for testing
type Commander interface {
	Run() error
}

// CommandBuilder handles building and running the wrapped build command
type CommandBuilder struct {
	execCommand func(dir string, stdout, stderr io.Writer, name string, args ...string) Commander
	stdout      io.Writer
	stderr      io.Writer
}

// NewCommandBuilder creates a new command builder
func NewCommandBuilder() *CommandBuilder {
	return &CommandBuilder{
		execCommand: func(dir string, stdout, stderr io.Writer, name string, args ...string) Commander {
			cmd := exec.Command(name, args...)
			cmd.Dir = dir
			cmd.Stdin = os.Stdin
			cmd.Stdout = stdout
			cmd.Stderr = stderr
			return cmd
		},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// BuildCommandArgs returns the build command. An explicit command is used
// as given; otherwise mkdocs builds the configured site.
func (cb *CommandBuilder) BuildCommandArgs(cfg *config.Config, args []string) (string, []string, error) {
	if len(args) > 0 {
		if strings.TrimSpace(args[0]) == "" {
			return "", nil, fmt.Errorf("empty build command")
		}

		return args[0], args[1:], nil
	}

	cmdArgs := append([]string{}, DefaultCommand[1:]...)

	if cfg.ConfigFile != "" {
		cmdArgs = append(cmdArgs, "--config-file", cfg.ConfigFile)
	}

	if cfg.SiteDir != "" {
		cmdArgs = append(cmdArgs, "--site-dir", cfg.SiteDir)
	}

	if cfg.Verbose {
		cmdArgs = append(cmdArgs, "--verbose")
	}

	return DefaultCommand[0], cmdArgs, nil
}

// ExecuteCommand runs the build in dir with output passed through.
// Failures are returned as *BuildError carrying the exit code to use.
func (cb *CommandBuilder) ExecuteCommand(dir, name string, cmdArgs []string) error {
	c := cb.execCommand(dir, cb.stdout, cb.stderr, name, cmdArgs...)

	err := c.Run()
	if err == nil {
		return nil
	}

	code := codes.GeneralError

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		if exitErr.ExitCode() > 0 {
			code = exitErr.ExitCode()
		}
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		code = codes.CommandNotRun
	}

	// Print descriptive error message
	fmt.Fprintf(cb.stderr, "Build failed (exit code %d): %s\n", code, codes.GetErrorMessage(code))

	return &BuildError{
		Command: strings.Join(append([]string{name}, cmdArgs...), " "),
		Code:    code,
		Err:     err,
	}
}

// PrintBuildInfo prints verbose build information
func (cb *CommandBuilder) PrintBuildInfo(cfg *config.Config, name string, cmdArgs []string) {
	fmt.Fprintf(cb.stdout, "Root: %s\nConfig: %s\nDocs: %s\nSite: %s\nInclude: %v\nCache: %s (%s)\nCommand: %s %s\n",
		cfg.Root, cfg.ConfigFile, cfg.DocsDir, cfg.SiteDir, cfg.Include, cfg.CacheFile, cfg.RecordBackend, name, strings.Join(cmdArgs, " "))
}
