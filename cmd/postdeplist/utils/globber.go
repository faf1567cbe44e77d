package utils

import (
	"errors"
	"os"
	"sort"

	"github.com/mattn/go-zglob"
	"github.com/spf13/afero"
)

// CustomGlobber resolves deploy list patterns against FS.
// On the OS filesystem (or a nil FS) patterns may use "**" via mattn/go-zglob;
// any other afero filesystem is matched with afero.Glob, which has no "**" support.
type CustomGlobber struct {
	FS afero.Fs
}

// Glob returns the regular files matching pattern in lexical order.
// A pattern that matches nothing yields an empty result rather than an error.
func (g CustomGlobber) Glob(pattern string) ([]string, error) {
	fs := g.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	matches, err := g.match(fs, pattern)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(matches))
	for _, match := range matches {
		info, err := fs.Stat(match)
		if err != nil {
			return nil, err
		}
		if info.Mode().IsRegular() {
			files = append(files, match)
		}
	}
	sort.Strings(files)

	return files, nil
}

func (g CustomGlobber) match(fs afero.Fs, pattern string) ([]string, error) {
	if _, ok := fs.(*afero.OsFs); ok {
		return zglob.Glob(pattern)
	}
	return afero.Glob(fs, pattern)
}
