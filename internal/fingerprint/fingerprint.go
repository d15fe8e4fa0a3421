// Package fingerprint computes the cache identity of a site build.
//
// A fingerprint is a SHA-256 digest over the coverage set: the site
// configuration file, every regular file under the source directory and
// every file matched by the include patterns. Entries are hashed in
// identifier order, so the result does not depend on directory scan order,
// path separator style or where the project is checked out.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Size is the length of a fingerprint in bytes
const Size = sha256.Size

// Fingerprint is the digest of a coverage set
type Fingerprint [Size]byte

// String returns the lowercase hex encoding
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Parse decodes a hex fingerprint as produced by String
func Parse(s string) (Fingerprint, error) {
	var f Fingerprint

	if len(s) != hex.EncodedLen(Size) {
		return f, fmt.Errorf("invalid fingerprint length %d", len(s))
	}

	if _, err := hex.Decode(f[:], []byte(s)); err != nil {
		return f, fmt.Errorf("invalid fingerprint: %w", err)
	}

	// Reject uppercase so a record has exactly one valid spelling
	if f.String() != s {
		return Fingerprint{}, fmt.Errorf("invalid fingerprint: not lowercase hex")
	}

	return f, nil
}

// PatternError reports an include pattern that cannot be compiled
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid include pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// ReadError reports a covered file or directory that could not be read
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
