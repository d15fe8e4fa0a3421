package fingerprint

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/Norgate-AV/buildcache/internal/utils"
)

// Entry is one covered file
type Entry struct {
	// ID is the path relative to the base directory, slash separated.
	// Entries are hashed in ID order.
	ID string

	// Path is the absolute OS path
	Path string

	// Size is the size observed while collecting
	Size int64
}

type collector struct {
	fs      afero.Fs
	base    string
	exclude []string
	seen    map[string]struct{}
	entries []Entry
}

func newCollector(fsys afero.Fs, base string, exclude []string) *collector {
	c := &collector{
		fs:   fsys,
		base: base,
		seen: make(map[string]struct{}),
	}

	for _, ex := range exclude {
		if ex != "" {
			c.exclude = append(c.exclude, utils.ResolvePath(base, ex))
		}
	}

	return c
}

// excluded matches an excluded path, anything beneath it and its temp
// siblings ("<path>.tmp-*")
func (c *collector) excluded(path string) bool {
	for _, ex := range c.exclude {
		if utils.IsWithin(ex, path) || strings.HasPrefix(path, ex+".tmp-") {
			return true
		}
	}

	return false
}

func (c *collector) add(path string, info os.FileInfo) {
	if c.excluded(path) {
		return
	}

	if _, ok := c.seen[path]; ok {
		return
	}

	c.seen[path] = struct{}{}
	c.entries = append(c.entries, Entry{
		ID:   utils.RelSlash(c.base, path),
		Path: path,
		Size: info.Size(),
	})
}

// addFile covers path if it exists and is a regular file
func (c *collector) addFile(path string) error {
	info, err := c.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return &ReadError{Path: path, Err: err}
	}

	if info.Mode().IsRegular() {
		c.add(path, info)
	}

	return nil
}

// addTree covers every regular file under root accepted by match.
// A missing root covers nothing.
func (c *collector) addTree(root string, match, descend func(rel string) bool) error {
	info, err := c.fs.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return &ReadError{Path: root, Err: err}
	}

	if !info.IsDir() || c.excluded(root) {
		return nil
	}

	return c.walk(root, root, match, descend)
}

func (c *collector) walk(root, dir string, match, descend func(rel string) bool) error {
	infos, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return &ReadError{Path: dir, Err: err}
	}

	for _, info := range infos {
		path := filepath.Join(dir, info.Name())
		if c.excluded(path) {
			continue
		}

		// Follow symlinks to files; symlinked directories are not descended
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := c.fs.Stat(path)
			if err != nil {
				return &ReadError{Path: path, Err: err}
			}

			if target.IsDir() {
				continue
			}

			info = target
		}

		rel := utils.RelSlash(root, path)

		if info.IsDir() {
			if descend != nil && !descend(rel) {
				continue
			}

			if err := c.walk(root, path, match, descend); err != nil {
				return err
			}

			continue
		}

		if info.Mode().IsRegular() && (match == nil || match(rel)) {
			c.add(path, info)
		}
	}

	return nil
}

// addPattern covers the files selected by an include pattern
func (c *collector) addPattern(p *Pattern) error {
	if p.literal {
		return c.addFile(utils.ResolvePath(c.base, filepath.FromSlash(p.prefix)))
	}

	root := c.base
	if p.prefix != "" {
		root = utils.ResolvePath(c.base, filepath.FromSlash(p.prefix))
	}

	return c.addTree(root, p.Match, p.descend)
}

func (c *collector) sorted() []Entry {
	sort.Slice(c.entries, func(i, j int) bool {
		return c.entries[i].ID < c.entries[j].ID
	})

	return c.entries
}
