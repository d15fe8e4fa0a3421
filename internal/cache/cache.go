// Package cache decides whether a site build can be skipped.
//
// The Coordinator wraps a build with two calls:
//
//  1. Evaluate, before the build, compares a freshly computed fingerprint
//     with the record of the last successful build and checks that the
//     output directory is populated. Only when every check passes is the
//     verdict Skip.
//  2. Commit, after a successful build, recomputes the fingerprint and
//     atomically replaces the record.
//
// A missing or unreadable record only ever forces a rebuild. Errors while
// fingerprinting are fatal, since masking them could skip a build whose
// inputs changed.
package cache

import (
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/afero"

	"github.com/Norgate-AV/buildcache/internal/fingerprint"
)

// Verdict is the outcome of Evaluate
type Verdict int

const (
	Proceed Verdict = iota
	Skip
)

func (v Verdict) String() string {
	if v == Skip {
		return "skip"
	}

	return "proceed"
}

// Reason explains a verdict
type Reason string

const (
	ReasonNoRecord      Reason = "no-record"
	ReasonChanged       Reason = "changed"
	ReasonOutputMissing Reason = "output-missing"
	ReasonOutputEmpty   Reason = "output-empty"
	ReasonUpToDate      Reason = "up-to-date"
)

// Decision is the result of Evaluate
type Decision struct {
	Verdict     Verdict
	Reason      Reason
	Fingerprint fingerprint.Fingerprint

	// Previous is the recorded fingerprint, nil without a usable record
	Previous *fingerprint.Fingerprint
}

// Coordinator evaluates and commits build fingerprints against a record
type Coordinator struct {
	fs     afero.Fs
	store  RecordStore
	engine *fingerprint.Engine
	logger log.Interface
}

// NewCoordinator creates a coordinator reading inputs from fs and keeping
// its record in store. A nil fs uses the operating system filesystem.
func NewCoordinator(fs afero.Fs, store RecordStore) *Coordinator {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Coordinator{
		fs:     fs,
		store:  store,
		engine: fingerprint.NewEngine(fs),
		logger: log.Log,
	}
}

// WithLogger sets a custom logger
func (c *Coordinator) WithLogger(logger log.Interface) *Coordinator {
	c.logger = logger
	c.engine.WithLogger(logger)
	return c
}

// Store returns the record store
func (c *Coordinator) Store() RecordStore {
	return c.store
}

// Evaluate decides whether the build described by in can be skipped.
// It never modifies the record or the output directory.
func (c *Coordinator) Evaluate(in fingerprint.Inputs, outputDir string) (*Decision, error) {
	previous := c.previous()

	fp, err := c.engine.Compute(c.inputs(in))
	if err != nil {
		return nil, fmt.Errorf("failed to compute fingerprint: %w", err)
	}

	d := &Decision{
		Verdict:     Proceed,
		Fingerprint: fp,
		Previous:    previous,
	}

	switch {
	case previous == nil:
		d.Reason = ReasonNoRecord
	case *previous != fp:
		d.Reason = ReasonChanged
	default:
		d.Reason = c.outputReason(outputDir)
		if d.Reason == ReasonUpToDate {
			d.Verdict = Skip
		}
	}

	c.logger.WithFields(log.Fields{
		"verdict":     d.Verdict.String(),
		"reason":      string(d.Reason),
		"fingerprint": fp.String(),
	}).Debug("evaluated build cache")

	return d, nil
}

// Commit recomputes the fingerprint and persists it as the new record.
// A write failure is returned as *PersistError.
func (c *Coordinator) Commit(in fingerprint.Inputs) (fingerprint.Fingerprint, error) {
	fp, err := c.engine.Compute(c.inputs(in))
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("failed to compute fingerprint: %w", err)
	}

	if err := c.store.Save(Record{CacheID: fp.String()}); err != nil {
		return fp, &PersistError{Path: c.store.Path(), Err: err}
	}

	c.logger.WithField("fingerprint", fp.String()).Debug("stored cache record")

	return fp, nil
}

// Summarize computes the fingerprint Evaluate would compare, listing the
// covered files
func (c *Coordinator) Summarize(in fingerprint.Inputs) (*fingerprint.Summary, error) {
	s, err := c.engine.Summarize(c.inputs(in))
	if err != nil {
		return nil, fmt.Errorf("failed to compute fingerprint: %w", err)
	}

	return s, nil
}

// BeforeBuild is the pre-build hook. It returns ErrUpToDate when the build
// should be skipped and nil when it should run.
func (c *Coordinator) BeforeBuild(in fingerprint.Inputs, outputDir string) (*Decision, error) {
	d, err := c.Evaluate(in, outputDir)
	if err != nil {
		return nil, err
	}

	switch d.Reason {
	case ReasonUpToDate:
		c.logger.Info("Build cache is valid and site directory is nonempty. Skipping rebuild.")
		return d, ErrUpToDate
	case ReasonOutputMissing, ReasonOutputEmpty:
		c.logger.Info("Build cache is valid but site directory is missing or empty. Rebuilding.")
	}

	return d, nil
}

// AfterBuild is the post-build hook, to be called only after a successful
// build. A record that cannot be written is logged and not returned: the
// build already succeeded and the next run simply rebuilds.
func (c *Coordinator) AfterBuild(in fingerprint.Inputs) error {
	_, err := c.Commit(in)
	if err != nil {
		var perr *PersistError
		if errors.As(err, &perr) {
			c.logger.WithError(perr.Err).Warnf("Build cache not updated: %s", perr.Path)
			return nil
		}

		return err
	}

	c.logger.Info("Build cache updated.")
	return nil
}

// previous loads the recorded fingerprint; problems mean "no record"
func (c *Coordinator) previous() *fingerprint.Fingerprint {
	record, err := c.store.Load()
	if err != nil {
		c.logger.WithError(err).Warn("Ignoring unreadable cache record")
		return nil
	}

	if record == nil {
		c.logger.Debug("no cache record")
		return nil
	}

	fp, err := record.Fingerprint()
	if err != nil {
		c.logger.WithError(err).Warn("Ignoring malformed cache record")
		return nil
	}

	return &fp
}

func (c *Coordinator) outputReason(dir string) Reason {
	state, err := inspectOutput(c.fs, dir)
	if err != nil {
		c.logger.WithError(err).WithField("dir", dir).Warn("Cannot inspect site directory")
	}

	switch state {
	case outputMissing:
		return ReasonOutputMissing
	case outputEmpty:
		return ReasonOutputEmpty
	default:
		return ReasonUpToDate
	}
}

// inputs adds the record itself to the exclusions so writing it never
// changes the next fingerprint
func (c *Coordinator) inputs(in fingerprint.Inputs) fingerprint.Inputs {
	if path := c.store.Path(); path != "" {
		exclude := make([]string, 0, len(in.Exclude)+1)
		exclude = append(exclude, in.Exclude...)
		in.Exclude = append(exclude, path)
	}

	return in
}
