// Package location models the normalized file paths used to correlate a
// document between the CAD application and the vault. Both sides address the
// same file purely by path string, so Location is the one identity shared
// across sessions.
package location

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Location is a decomposed file path. It is immutable once constructed; all
// fields are derived from the complete path at construction time.
type Location struct {
	complete  string
	directory string
	name      string
	root      string
	ext       string
}

// New builds a Location from a complete file path.
// Returns an error if the path is empty or has no file name component.
func New(path string) (Location, error) {
	if path == "" {
		return Location{}, fmt.Errorf("path cannot be empty")
	}

	cleaned := filepath.Clean(path)
	name := filepath.Base(cleaned)
	if name == "." || name == string(filepath.Separator) {
		return Location{}, fmt.Errorf("path has no file name: %s", path)
	}

	ext := filepath.Ext(name)
	return Location{
		complete:  cleaned,
		directory: filepath.Dir(cleaned),
		name:      name,
		root:      strings.TrimSuffix(name, ext),
		ext:       ext,
	}, nil
}

// Complete returns the full path.
func (l Location) Complete() string { return l.complete }

// Directory returns the containing directory.
func (l Location) Directory() string { return l.directory }

// Name returns the file name including extension.
func (l Location) Name() string { return l.name }

// Root returns the file name without its extension.
func (l Location) Root() string { return l.root }

// Ext returns the extension including the leading dot, as written on disk.
func (l Location) Ext() string { return l.ext }

// IsZero reports whether the Location is the zero value.
func (l Location) IsZero() bool { return l.complete == "" }

// String returns the complete path.
func (l Location) String() string { return l.complete }
