package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// bucketName is the BoltDB bucket holding the record
	bucketName = "records"

	// cacheIDKey is the key of the hex fingerprint inside the bucket
	cacheIDKey = "cache_id"
)

// BoltStore keeps the record in a BoltDB file. Each Save is a single
// update transaction, so a record is never observed half written.
type BoltStore struct {
	path    string
	timeout time.Duration
}

// NewBoltStore creates a BoltDB record store at path
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{
		path:    path,
		timeout: 1 * time.Second,
	}
}

// Path returns the record location
func (s *BoltStore) Path() string {
	return s.path
}

// Load opens the database read-only; it never creates the file
func (s *BoltStore) Load() (*Record, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to stat cache database: %w", err)
	}

	db, err := bbolt.Open(s.path, 0o600, &bbolt.Options{Timeout: s.timeout, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	defer db.Close()

	var record *Record
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}

		data := b.Get([]byte(cacheIDKey))
		if data == nil {
			return nil
		}

		record = &Record{CacheID: string(data)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cache database: %w", err)
	}

	return record, nil
}

// Save stores the record, replacing a database that cannot be opened
func (s *BoltStore) Save(r Record) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}

		return b.Put([]byte(cacheIDKey), []byte(r.CacheID))
	})
	if err != nil {
		return fmt.Errorf("failed to store cache record: %w", err)
	}

	return nil
}

// Remove deletes the database; a missing file is not an error
func (s *BoltStore) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cache database: %w", err)
	}

	return nil
}

// open opens the database for writing. The record file belongs to the
// cache alone, so a file that is not a valid database is discarded.
func (s *BoltStore) open() (*bbolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create record directory: %w", err)
	}

	opts := &bbolt.Options{Timeout: s.timeout}

	db, err := bbolt.Open(s.path, 0o644, opts)
	if err == nil {
		return db, nil
	}

	if errors.Is(err, bbolt.ErrTimeout) {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if rmErr := os.Remove(s.path); rmErr != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	db, err = bbolt.Open(s.path, 0o644, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	return db, nil
}
