package ioutils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var invalidChars = regexp.MustCompile(`[<>:'"/\\|?*]`)

// SanitizeFileName removes characters that are invalid in file names.
//
// The following transformations are applied:
//   - < > : ' " / \ | ? * and control characters are removed
//   - non-ASCII characters are removed when asciiOnly is set
//
// Whitespace and dots are left untouched. Sanitizing an already sanitized
// name returns it unchanged.
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2", false) // "Song Part 12"
//	SanitizeFileName("Café Tacvba", true)     // "Caf Tacvba"
func SanitizeFileName(name string, asciiOnly bool) string {
	name = invalidChars.ReplaceAllString(name, "")
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		if asciiOnly && r > unicode.MaxASCII {
			return -1
		}
		return r
	}, name)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// PartFile stages a file next to its final path.
type PartFile struct {
	final string
	part  string
	done  bool
}

// NewPartFile returns a staging file for final. Nothing is created on
// disk until Write is called.
func NewPartFile(final string) *PartFile {
	dir, base := filepath.Split(final)
	return &PartFile{
		final: final,
		part:  filepath.Join(dir, "."+base+".part"),
	}
}

// Path returns the staging path. Tag writers operate on it before Commit.
func (p *PartFile) Path() string {
	return p.part
}

// Final returns the path the file is committed to.
func (p *PartFile) Final() string {
	return p.final
}

// Write replaces the staging file contents with data (mode 0644).
func (p *PartFile) Write(data []byte) error {
	return os.WriteFile(p.part, data, 0644)
}

// Commit renames the staging file onto its final path, replacing any
// existing file.
func (p *PartFile) Commit() error {
	if err := os.Rename(p.part, p.final); err != nil {
		return err
	}
	p.done = true
	return nil
}

// Discard removes the staging file unless it was committed. It is safe
// to call more than once and to defer right after NewPartFile.
func (p *PartFile) Discard() error {
	if p.done {
		return nil
	}
	err := os.Remove(p.part)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
