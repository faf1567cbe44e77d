// Package deploylist turns plain-text deploy lists and tracker search results
// into the entries announced to the chat flow.
package deploylist

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/shini4i/postdeplist/internal/ports"
	"github.com/spf13/afero"
)

// Delimiter separates entries in a deploy list, in addition to blank lines.
const Delimiter = "--"

// Parse splits r into entries separated by blank lines or lines holding only the delimiter.
// Entry text is kept verbatim, including embedded and trailing newlines.
func Parse(r io.Reader) ([]string, error) {
	entries := []string{}
	reader := bufio.NewReader(r)

	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			entries = append(entries, current.String())
			current.Reset()
		}
	}

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			if isDelimiter(line) {
				flush()
			} else {
				current.WriteString(line)
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	// A list without a trailing delimiter still carries its last entry.
	flush()

	return entries, nil
}

func isDelimiter(line string) bool {
	content := strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	return content == "" || content == Delimiter
}

// ReadFile parses the deploy list stored at path.
func ReadFile(fs afero.Fs, path string) ([]string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	defer func(file afero.File) {
		_ = file.Close()
	}(file)

	entries, err := Parse(file)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}

	return entries, nil
}

// ReadFiles parses every deploy list matching pattern, in lexical path order.
// A pattern without glob metacharacters is read as a single file.
func ReadFiles(fs afero.Fs, globber ports.Globber, pattern string) ([]string, error) {
	if !hasMeta(pattern) {
		return ReadFile(fs, pattern)
	}

	matches, err := globber.Glob(pattern)
	if err != nil {
		return nil, &FileAccessError{Path: pattern, Err: err}
	}
	if len(matches) == 0 {
		return nil, &FileAccessError{Path: pattern, Err: os.ErrNotExist}
	}

	sorted := append([]string(nil), matches...)
	sort.Strings(sorted)

	entries := []string{}
	for _, match := range sorted {
		fileEntries, err := ReadFile(fs, match)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fileEntries...)
	}

	return entries, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
