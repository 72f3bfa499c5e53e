package location

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantName string
		wantRoot string
		wantExt  string
	}{
		{
			name:     "part file",
			path:     filepath.Join("vault", "parts", "Test_Part_02.SLDPRT"),
			wantName: "Test_Part_02.SLDPRT",
			wantRoot: "Test_Part_02",
			wantExt:  ".SLDPRT",
		},
		{
			name:     "lowercase extension",
			path:     filepath.Join("vault", "bracket.sldasm"),
			wantName: "bracket.sldasm",
			wantRoot: "bracket",
			wantExt:  ".sldasm",
		},
		{
			name:     "no extension",
			path:     filepath.Join("vault", "README"),
			wantName: "README",
			wantRoot: "README",
			wantExt:  "",
		},
		{
			name:     "dotted root keeps inner dots",
			path:     filepath.Join("vault", "rev.A.slddrw"),
			wantName: "rev.A.slddrw",
			wantRoot: "rev.A",
			wantExt:  ".slddrw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := New(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, loc.Name())
			assert.Equal(t, tt.wantRoot, loc.Root())
			assert.Equal(t, tt.wantExt, loc.Ext())
			assert.Equal(t, filepath.Dir(filepath.Clean(tt.path)), loc.Directory())
			assert.Equal(t, filepath.Clean(tt.path), loc.Complete())
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := New("")
		assert.Error(t, err)
	})

	t.Run("directory only", func(t *testing.T) {
		_, err := New(".")
		assert.Error(t, err)
	})
}

func TestLocation_IsZero(t *testing.T) {
	assert.True(t, Location{}.IsZero())

	loc, err := New("a.sldprt")
	require.NoError(t, err)
	assert.False(t, loc.IsZero())
}
