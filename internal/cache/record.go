package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Norgate-AV/buildcache/internal/fingerprint"
)

// DefaultRecordFile is the record file name used when none is configured
const DefaultRecordFile = "build_cache.json"

// Record is the persisted fingerprint of the last successful build
type Record struct {
	// CacheID is the hex encoded fingerprint
	CacheID string `json:"cache_id"`
}

// Fingerprint decodes the stored fingerprint
func (r *Record) Fingerprint() (fingerprint.Fingerprint, error) {
	return fingerprint.Parse(r.CacheID)
}

// RecordStore persists a single Record.
//
// Load returns (nil, nil) when no record exists. Save must replace any
// previous record atomically.
type RecordStore interface {
	Load() (*Record, error)
	Save(Record) error
	Remove() error
	Path() string
}

// FileStore keeps the record as a small JSON document
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore creates a JSON record store at path.
// A nil fs uses the operating system filesystem.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &FileStore{
		fs:   fs,
		path: path,
	}
}

// Path returns the record location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the record. Unknown fields are ignored.
func (s *FileStore) Load() (*Record, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read cache record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse cache record: %w", err)
	}

	return &r, nil
}

// Save writes the record to a temp file beside the target and renames it
// into place
func (s *FileStore) Save(r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode cache record: %w", err)
	}

	return writeFileAtomic(s.fs, s.path, data, 0o644)
}

// Remove deletes the record; a missing record is not an error
func (s *FileStore) Remove() error {
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cache record: %w", err)
	}

	return nil
}

func writeFileAtomic(fsys afero.Fs, path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create record directory: %w", err)
	}

	tmp, err := afero.TempFile(fsys, dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary record: %w", err)
	}

	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temporary record: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temporary record: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary record: %w", err)
	}

	if err := fsys.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set record permissions: %w", err)
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("failed to replace cache record: %w", err)
	}

	committed = true
	return nil
}
