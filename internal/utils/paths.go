package utils

import (
	"path/filepath"
	"strings"
)

// ResolvePath returns path as an absolute, cleaned path, resolving relative
// paths against base. An empty path stays empty.
func ResolvePath(base, path string) string {
	if path == "" {
		return ""
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}

	return filepath.Clean(path)
}

// RelSlash returns target relative to base using forward slashes.
// If no relative form exists the absolute slash path is returned.
func RelSlash(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(target)
	}

	return filepath.ToSlash(rel)
}

// IsWithin reports whether path equals dir or lies underneath it.
// Both arguments must be absolute and cleaned.
func IsWithin(dir, path string) bool {
	if dir == "" {
		return false
	}

	if path == dir {
		return true
	}

	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	return strings.HasPrefix(path, prefix)
}
