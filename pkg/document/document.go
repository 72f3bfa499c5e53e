// Package document defines the document model shared by the application and
// vault sessions: type classification from file extensions, the export
// compatibility policy, and the live document handle.
package document

import (
	"fmt"
	"strings"

	"github.com/cadforge/solidwrap/pkg/com"
	"github.com/cadforge/solidwrap/pkg/location"
)

// Type is the closed set of document types the sessions handle.
type Type string

const (
	// TypePart is a single modeled component (.sldprt).
	TypePart Type = "part"

	// TypeAssembly is a composition of parts (.sldasm).
	TypeAssembly Type = "assembly"

	// TypeDrawing is a 2D annotated sheet (.slddrw).
	TypeDrawing Type = "drawing"
)

// ValidTypes returns all recognized document types.
func ValidTypes() []Type {
	return []Type{TypePart, TypeAssembly, TypeDrawing}
}

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// Extension returns the vendor file extension for the type, without the dot.
func (t Type) Extension() string {
	switch t {
	case TypePart:
		return "sldprt"
	case TypeAssembly:
		return "sldasm"
	case TypeDrawing:
		return "slddrw"
	default:
		return ""
	}
}

// UnsupportedTypeError reports a location whose extension maps to no
// recognized document type.
type UnsupportedTypeError struct {
	Location location.Location
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported document type: %s (extension %q)",
		e.Location.Name(), e.Location.Ext())
}

// Classify derives the document type from a location's extension. The match
// is case-insensitive: the vendor tooling writes extensions in either case.
// Every location maps to exactly one type or fails with
// *UnsupportedTypeError.
func Classify(loc location.Location) (Type, error) {
	ext := strings.ToLower(strings.TrimPrefix(loc.Ext(), "."))
	for _, t := range ValidTypes() {
		if t.Extension() == ext {
			return t, nil
		}
	}
	return "", &UnsupportedTypeError{Location: loc}
}

// Document wraps a live, externally-owned document reference together with
// its derived identity. It is valid from the open call that produced it until
// the corresponding close; the external process owns the real resource, so
// use after close is undefined.
type Document struct {
	// Model is the live automation object (IModelDoc2).
	Model com.Object

	// Source is the on-disk identity the document was opened from.
	Source location.Location

	// Type is derived from Source's extension.
	Type Type

	// Size is the on-disk size at open time, if known.
	Size FileSize
}
