package solidworks

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadforge/solidwrap/pkg/com"
	"github.com/cadforge/solidwrap/pkg/document"
)

func TestExport_OutputPath(t *testing.T) {
	f := newFixture(t, "vault/Test_Part_02.SLDPRT")
	c := f.client(t)

	doc, err := c.Open(f.loc)
	require.NoError(t, err)

	var savedTo string
	f.extension.Methods["SaveAs2"] = func(args ...interface{}) (interface{}, error) {
		savedTo = args[0].(string)
		return true, nil
	}

	dest := filepath.Join("out", "exports")
	out, err := c.Export(doc, document.FormatStep, dest)
	require.NoError(t, err)

	want := filepath.Join(dest, "Test_Part_02.step")
	assert.Equal(t, want, out.Complete())
	assert.Equal(t, want, savedTo)

	// The destination directory was created.
	exists, err := afero.DirExists(f.fs, dest)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExport_FormatExtensions(t *testing.T) {
	tests := []struct {
		format document.ExportFormat
		file   string
	}{
		{document.FormatImage, "Test_Part_02.png"},
		{document.FormatParasolid, "Test_Part_02.x_t"},
		{document.FormatStep, "Test_Part_02.step"},
		{document.FormatSTL, "Test_Part_02.stl"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			f := newFixture(t, "vault/Test_Part_02.SLDPRT")
			c := f.client(t)

			doc, err := c.Open(f.loc)
			require.NoError(t, err)

			out, err := c.Export(doc, tt.format, "exports")
			require.NoError(t, err)
			assert.Equal(t, tt.file, out.Name())
		})
	}
}

func TestExport_IncompatibleFormat(t *testing.T) {
	f := newFixture(t, "vault/panel.SLDDRW")
	c := f.client(t)

	doc, err := c.Open(f.loc)
	require.NoError(t, err)

	_, err = c.Export(doc, document.FormatSTL, "exports")
	require.Error(t, err)

	var incompatible *document.IncompatibleFormatError
	require.True(t, errors.As(err, &incompatible))
	assert.Equal(t, document.TypeDrawing, incompatible.Type)
	assert.Equal(t, document.FormatSTL, incompatible.Format)
	assert.False(t, f.extension.Called("SaveAs2"), "illegal exports never reach the application")
}

func TestExport_StagesSolidGeometry(t *testing.T) {
	f := newFixture(t, "vault/Test_Part_02.SLDPRT")
	c := f.client(t)

	doc, err := c.Open(f.loc)
	require.NoError(t, err)

	_, err = c.Export(doc, document.FormatImage, "exports")
	require.NoError(t, err)

	assert.True(t, f.extension.Called("SetUserPreferenceToggle"))
	assert.True(t, f.model.Called("ShowNamedView2"))
	assert.True(t, f.model.Called("ViewZoomtofit2"))
	assert.True(t, f.extension.Called("InsertScene"))
}

func TestExport_DrawingsSkipStaging(t *testing.T) {
	f := newFixture(t, "vault/panel.SLDDRW")
	c := f.client(t)

	doc, err := c.Open(f.loc)
	require.NoError(t, err)

	_, err = c.Export(doc, document.FormatPDF, "exports")
	require.NoError(t, err)

	assert.False(t, f.model.Called("ShowNamedView2"))
	assert.False(t, f.extension.Called("InsertScene"))
}

func TestExport_StagingFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t, "vault/Test_Part_02.SLDPRT")
	c := f.client(t)

	doc, err := c.Open(f.loc)
	require.NoError(t, err)

	f.extension.Methods["InsertScene"] = func(args ...interface{}) (interface{}, error) {
		return nil, fmt.Errorf("scene asset missing")
	}

	out, err := c.Export(doc, document.FormatImage, "exports")
	require.NoError(t, err, "staging is best-effort")
	assert.Equal(t, "Test_Part_02.png", out.Name())
}

func TestExport_ApplicationErrorCode(t *testing.T) {
	f := newFixture(t, "vault/Test_Part_02.SLDPRT")
	c := f.client(t)

	doc, err := c.Open(f.loc)
	require.NoError(t, err)

	f.extension.Methods["SaveAs2"] = func(args ...interface{}) (interface{}, error) {
		// Write a failure code through the by-reference error slot.
		require.Len(t, args, 8)
		args[6].(*com.ByRef).Value = 2
		return false, nil
	}

	_, err = c.Export(doc, document.FormatStep, "exports")
	assert.Error(t, err)
}

func TestStage_DrawingNoOp(t *testing.T) {
	f := newFixture(t, "vault/panel.SLDDRW")
	c := f.client(t)

	doc, err := c.Open(f.loc)
	require.NoError(t, err)

	require.NoError(t, c.Stage(doc))
	assert.False(t, f.model.Called("ShowNamedView2"))
}

func TestExportDestination_Default(t *testing.T) {
	f := newFixture(t, "vault/Test_Part_02.SLDPRT")
	c := f.client(t)

	dest, err := c.ExportDestination("")
	require.NoError(t, err)
	assert.Equal(t, DefaultExportFolder, filepath.Base(dest))
	assert.Contains(t, dest, "Desktop")
}

func TestExportDestination_ConfiguredDirWins(t *testing.T) {
	f := newFixture(t, "vault/Test_Part_02.SLDPRT")
	c, err := New(Config{
		Version:    2023,
		Dispatcher: f.dispatcher,
		Fs:         f.fs,
		ExportDir:  "configured",
	})
	require.NoError(t, err)

	dest, err := c.ExportDestination("")
	require.NoError(t, err)
	assert.Equal(t, "configured", dest)

	dest, err = c.ExportDestination("override")
	require.NoError(t, err)
	assert.Equal(t, "override", dest)
}
