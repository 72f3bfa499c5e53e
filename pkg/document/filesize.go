package document

import "fmt"

// FileSize is a byte count with human-readable rendering.
type FileSize int64

// Bytes returns the raw byte count.
func (s FileSize) Bytes() int64 {
	return int64(s)
}

// String renders the size scaled to the largest unit under 1024, with two
// decimals, e.g. "1.21 MB".
func (s FileSize) String() string {
	units := []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	value := float64(s)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", int64(s))
	}
	return fmt.Sprintf("%.2f %s", value, units[i])
}
