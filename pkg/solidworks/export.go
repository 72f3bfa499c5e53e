package solidworks

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/cadforge/solidwrap/pkg/com"
	"github.com/cadforge/solidwrap/pkg/document"
	"github.com/cadforge/solidwrap/pkg/location"
)

// ExportDestination resolves the directory exports land in: the explicit
// override wins, then the configured directory, then
// <desktop>/SolidWrap Exports.
func (c *Client) ExportDestination(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if c.exportDir != "" {
		return c.exportDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving export destination: %w", err)
	}
	return filepath.Join(home, "Desktop", DefaultExportFolder), nil
}

// Export writes the document to the destination directory in the given
// format. The format must be legal for the document's type per the export
// compatibility policy; the output file is named <root>.<format extension>.
// The destination directory is created if absent. Non-drawing documents are
// staged first; staging is cosmetic and a staging failure does not abort the
// export.
func (c *Client) Export(doc *document.Document, format document.ExportFormat, destOverride string) (location.Location, error) {
	if err := document.CheckCompatible(doc.Type, format); err != nil {
		return location.Location{}, err
	}

	destination, err := c.ExportDestination(destOverride)
	if err != nil {
		return location.Location{}, err
	}
	if err := c.fs.MkdirAll(destination, 0o755); err != nil {
		return location.Location{}, fmt.Errorf("creating export destination %s: %w", destination, err)
	}

	out, err := location.New(filepath.Join(destination,
		doc.Source.Root()+"."+format.Extension()))
	if err != nil {
		return location.Location{}, err
	}

	c.log.Info("exporting document",
		"name", doc.Source.Name(), "format", format.String(), "output", out.Complete())

	// Drawings are exempt from staging; they have no viewport to prepare.
	if doc.Type != document.TypeDrawing {
		if err := c.Stage(doc); err != nil {
			c.log.Warn("staging failed, exporting as-is", "name", doc.Source.Name(), "error", err)
		}
	}

	ext, err := c.modelExtension(doc)
	if err != nil {
		return location.Location{}, err
	}

	errSlot := com.NewByRef(0)
	warnSlot := com.NewByRef(0)
	if _, err := ext.Call("SaveAs2",
		out.Complete(), 0, 1, nil, "", false, errSlot, warnSlot); err != nil {
		return location.Location{}, fmt.Errorf("exporting %s: %w", doc.Source.Name(), err)
	}
	if errSlot.Value != 0 {
		return location.Location{}, fmt.Errorf("exporting %s: application reported error code %d",
			doc.Source.Name(), errSlot.Value)
	}
	return out, nil
}

// Stage prepares the viewport for a clean capture: hides all reference
// geometry, orients the isometric named view, fits the view to the document
// bounds, and applies the background scene. Drawings are a no-op. Staging is
// purely cosmetic; callers should treat failures as best-effort.
func (c *Client) Stage(doc *document.Document) error {
	if doc.Type == document.TypeDrawing {
		return nil
	}

	c.log.Debug("staging document", "name", doc.Source.Name())

	ext, err := c.modelExtension(doc)
	if err != nil {
		return err
	}

	var result *multierror.Error
	if _, err := ext.Call("SetUserPreferenceToggle", toggleHideAllTypes, 0, true); err != nil {
		result = multierror.Append(result, fmt.Errorf("hiding reference geometry: %w", err))
	}
	if _, err := doc.Model.Call("ShowNamedView2", "Isometric", isometricViewCode); err != nil {
		result = multierror.Append(result, fmt.Errorf("setting isometric view: %w", err))
	}
	if _, err := doc.Model.Call("ViewZoomtofit2"); err != nil {
		result = multierror.Append(result, fmt.Errorf("fitting view: %w", err))
	}
	if _, err := ext.Call("InsertScene", c.scene); err != nil {
		result = multierror.Append(result, fmt.Errorf("applying scene: %w", err))
	}
	return result.ErrorOrNil()
}

// modelExtension returns the document's extension interface, where the
// save-as and preference calls live.
func (c *Client) modelExtension(doc *document.Document) (com.Object, error) {
	result, err := doc.Model.Get("Extension")
	if err != nil {
		return nil, fmt.Errorf("getting model extension for %s: %w", doc.Source.Name(), err)
	}
	ext := result.Object()
	if ext == nil {
		return nil, fmt.Errorf("getting model extension for %s: not an object", doc.Source.Name())
	}
	return ext, nil
}
