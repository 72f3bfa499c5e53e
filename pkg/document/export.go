package document

import (
	"fmt"
)

// ExportFormat is the closed set of supported export targets.
type ExportFormat string

const (
	// FormatImage is a raster capture of the staged viewport.
	FormatImage ExportFormat = "image"

	// FormatParasolid is the Parasolid neutral solid format.
	FormatParasolid ExportFormat = "parasolid"

	// FormatStep is the STEP neutral solid format.
	FormatStep ExportFormat = "step"

	// FormatSTL is the mesh format used for printing.
	FormatSTL ExportFormat = "stl"

	// FormatDXF is the 2D exchange format for drawings.
	FormatDXF ExportFormat = "dxf"

	// FormatPDF is the print format for drawings.
	FormatPDF ExportFormat = "pdf"
)

// ValidFormats returns all recognized export formats.
func ValidFormats() []ExportFormat {
	return []ExportFormat{
		FormatImage, FormatParasolid, FormatStep, FormatSTL, FormatDXF, FormatPDF,
	}
}

// ParseFormat resolves a user-supplied format name. Both the format name and
// its file extension are accepted ("image" and "png" resolve the same way).
func ParseFormat(s string) (ExportFormat, error) {
	for _, f := range ValidFormats() {
		if string(f) == s || f.Extension() == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format: %q (valid: %v)", s, ValidFormats())
}

// String returns the string representation of the format.
func (f ExportFormat) String() string {
	return string(f)
}

// Extension returns the output file extension for the format, without the dot.
func (f ExportFormat) Extension() string {
	switch f {
	case FormatImage:
		return "png"
	case FormatParasolid:
		return "x_t"
	case FormatStep:
		return "step"
	case FormatSTL:
		return "stl"
	case FormatDXF:
		return "dxf"
	case FormatPDF:
		return "pdf"
	default:
		return ""
	}
}

// compatibility is the fixed export policy. Drawings only flatten to 2D
// targets; solid geometry only exports to 3D targets and viewport captures.
// The table is total over ValidTypes and never mutated at runtime.
var compatibility = map[Type][]ExportFormat{
	TypePart:     {FormatImage, FormatParasolid, FormatStep, FormatSTL},
	TypeAssembly: {FormatImage, FormatParasolid, FormatStep, FormatSTL},
	TypeDrawing:  {FormatDXF, FormatPDF},
}

// CompatibleFormats returns the export formats legal for the given type.
func CompatibleFormats(t Type) []ExportFormat {
	formats := compatibility[t]
	out := make([]ExportFormat, len(formats))
	copy(out, formats)
	return out
}

// IncompatibleFormatError reports an export format that is not legal for a
// document type.
type IncompatibleFormatError struct {
	Type   Type
	Format ExportFormat
}

func (e *IncompatibleFormatError) Error() string {
	return fmt.Sprintf("format %s is not compatible with %s documents (legal: %v)",
		e.Format, e.Type, CompatibleFormats(e.Type))
}

// CheckCompatible validates format against the export policy for t.
func CheckCompatible(t Type, format ExportFormat) error {
	for _, f := range compatibility[t] {
		if f == format {
			return nil
		}
	}
	return &IncompatibleFormatError{Type: t, Format: format}
}
