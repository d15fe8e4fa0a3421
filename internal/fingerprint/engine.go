package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	"path/filepath"

	"github.com/apex/log"
	"github.com/spf13/afero"

	"github.com/Norgate-AV/buildcache/internal/utils"
)

// header versions the hashing scheme; changing the encoding must change it
const header = "buildcache-fingerprint/v2\n"

// Inputs describes what a fingerprint covers
type Inputs struct {
	// ConfigFile is the site configuration file. Optional; a missing file
	// is simply not covered.
	ConfigFile string

	// SourceDir is the source-document root, covered recursively
	SourceDir string

	// Include holds extra glob patterns, resolved against BaseDir
	Include []string

	// BaseDir anchors include patterns and entry identifiers.
	// Empty means the working directory.
	BaseDir string

	// Exclude lists paths that are never covered, along with anything
	// beneath them. An entry containing ConfigFile or SourceDir is ignored.
	Exclude []string
}

// Summary describes a computed fingerprint
type Summary struct {
	Fingerprint Fingerprint
	Entries     []Entry
	Bytes       int64
}

// Engine computes fingerprints. It holds no state between calls.
type Engine struct {
	fs     afero.Fs
	logger log.Interface
}

// NewEngine creates an engine reading from fs.
// A nil fs uses the operating system filesystem.
func NewEngine(fs afero.Fs) *Engine {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Engine{
		fs:     fs,
		logger: log.Log,
	}
}

// WithLogger sets a custom logger
func (e *Engine) WithLogger(logger log.Interface) *Engine {
	e.logger = logger
	return e
}

// Compute returns the fingerprint of the coverage set described by in
func (e *Engine) Compute(in Inputs) (Fingerprint, error) {
	s, err := e.Summarize(in)
	if err != nil {
		return Fingerprint{}, err
	}

	return s.Fingerprint, nil
}

// Collect returns the coverage set sorted by identifier
func (e *Engine) Collect(in Inputs) ([]Entry, error) {
	patterns, err := Compile(in.Include)
	if err != nil {
		return nil, err
	}

	base, err := e.baseDir(in.BaseDir)
	if err != nil {
		return nil, err
	}

	configFile := utils.ResolvePath(base, in.ConfigFile)
	sourceDir := utils.ResolvePath(base, in.SourceDir)

	c := newCollector(e.fs, base, e.exclusions(base, in.Exclude, configFile, sourceDir))

	if configFile != "" {
		if err := c.addFile(configFile); err != nil {
			return nil, err
		}
	}

	if sourceDir != "" {
		if err := c.addTree(sourceDir, nil, nil); err != nil {
			return nil, err
		}
	}

	for _, p := range patterns {
		if err := c.addPattern(p); err != nil {
			return nil, err
		}
	}

	return c.sorted(), nil
}

// Summarize computes the fingerprint and reports what it covered
func (e *Engine) Summarize(in Inputs) (*Summary, error) {
	entries, err := e.Collect(in)
	if err != nil {
		return nil, err
	}

	h := sha256.New()
	io.WriteString(h, header)

	var total int64
	for _, entry := range entries {
		n, err := e.hashEntry(h, entry)
		if err != nil {
			return nil, err
		}

		total += n
	}

	writeUint64(h, uint64(len(entries)))

	s := &Summary{
		Entries: entries,
		Bytes:   total,
	}
	copy(s.Fingerprint[:], h.Sum(nil))

	e.logger.WithFields(log.Fields{
		"files":       len(entries),
		"bytes":       total,
		"fingerprint": s.Fingerprint.String(),
	}).Debug("computed fingerprint")

	return s, nil
}

// hashEntry writes the identifier and the content, each preceded by its
// 8-byte length
func (e *Engine) hashEntry(h hash.Hash, entry Entry) (int64, error) {
	f, err := e.fs.Open(entry.Path)
	if err != nil {
		return 0, &ReadError{Path: entry.Path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, &ReadError{Path: entry.Path, Err: err}
	}

	size := info.Size()

	writeUint64(h, uint64(len(entry.ID)))
	io.WriteString(h, entry.ID)
	writeUint64(h, uint64(size))

	n, err := io.CopyN(h, f, size)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("file shrank while hashing: read %d of %d bytes", n, size)
		}

		return 0, &ReadError{Path: entry.Path, Err: err}
	}

	return n, nil
}

// exclusions resolves exclude against base, dropping any entry that would
// hide the config file or the whole source tree
func (e *Engine) exclusions(base string, exclude []string, inputs ...string) []string {
	kept := make([]string, 0, len(exclude))

	for _, ex := range exclude {
		if ex == "" {
			continue
		}

		path := utils.ResolvePath(base, ex)
		if containsInput(path, inputs) {
			e.logger.WithField("exclude", path).Warn("Ignoring exclusion that contains build inputs")
			continue
		}

		kept = append(kept, path)
	}

	return kept
}

func containsInput(dir string, inputs []string) bool {
	for _, in := range inputs {
		if in != "" && utils.IsWithin(dir, in) {
			return true
		}
	}

	return false
}

// baseDir resolves dir to an absolute path; empty means the working directory
func (e *Engine) baseDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return abs, nil
}

func writeUint64(w io.Writer, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.Write(buf[:])
}
