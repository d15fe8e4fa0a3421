package cache

import (
	"errors"
	"io"
	"io/fs"

	"github.com/spf13/afero"
)

type outputState int

const (
	outputMissing outputState = iota
	outputEmpty
	outputPopulated
)

// inspectOutput reports whether dir exists as a directory with at least
// one entry. Anything it cannot confirm counts as missing or empty.
func inspectOutput(fsys afero.Fs, dir string) (outputState, error) {
	if dir == "" {
		return outputMissing, nil
	}

	info, err := fsys.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return outputMissing, nil
		}

		return outputMissing, err
	}

	if !info.IsDir() {
		return outputMissing, nil
	}

	f, err := fsys.Open(dir)
	if err != nil {
		return outputEmpty, err
	}
	defer f.Close()

	names, err := f.Readdirnames(1)
	if err != nil && !errors.Is(err, io.EOF) {
		return outputEmpty, err
	}

	if len(names) == 0 {
		return outputEmpty, nil
	}

	return outputPopulated, nil
}
