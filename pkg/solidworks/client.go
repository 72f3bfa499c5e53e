// Package solidworks manages a session against the CAD application's
// automation surface: one live connection per Client, plus the document
// lifecycle operations (open, save, rebuild, close, export, stage, freeze).
//
// Every operation is a synchronous call into an external process and blocks
// until that process replies; the vendor interface exposes no cancellation or
// timeout, so an unresponsive process blocks the caller indefinitely.
package solidworks

import (
	"fmt"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/cadforge/solidwrap/pkg/com"
	"github.com/cadforge/solidwrap/pkg/document"
	"github.com/cadforge/solidwrap/pkg/location"
)

// ConnectionError reports a failure to dispatch or attach to the application
// process, typically because the release is not installed.
type ConnectionError struct {
	Version int
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to SolidWorks %d: %v", e.Version, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Config holds configuration for an application session.
type Config struct {
	// Version is the application release year, e.g. 2023. Required.
	Version int

	// Headless hides the application window when true.
	Headless bool

	// ExportDir overrides the default export destination
	// (<desktop>/SolidWrap Exports).
	ExportDir string

	// Scene overrides the background scene asset applied during staging.
	Scene string

	// Dispatcher creates the automation connection. Defaults to the
	// platform dispatcher.
	Dispatcher com.Dispatcher

	// Fs is the filesystem used for export destination handling. Defaults to
	// the OS filesystem.
	Fs afero.Fs

	// Logger for session operations.
	Logger hclog.Logger
}

// Client is a session against the application process. At most one live
// connection exists per Client; callers own the Client's lifetime and pass it
// explicitly to whatever needs it.
type Client struct {
	app        com.Object
	version    int
	headless   bool
	exportDir  string
	scene      string
	dispatcher com.Dispatcher
	fs         afero.Fs
	log        hclog.Logger
}

// New creates an application session. No connection is made until Connect.
func New(cfg Config) (*Client, error) {
	if cfg.Version < 1993 {
		return nil, fmt.Errorf("invalid application version %d: expected a release year", cfg.Version)
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = com.NewDispatcher()
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	if cfg.Scene == "" {
		cfg.Scene = defaultScene
	}

	return &Client{
		version:    cfg.Version,
		headless:   cfg.Headless,
		exportDir:  cfg.ExportDir,
		scene:      cfg.Scene,
		dispatcher: cfg.Dispatcher,
		fs:         cfg.Fs,
		log:        cfg.Logger.Named("solidworks"),
	}, nil
}

// Connected reports whether a live connection exists.
func (c *Client) Connected() bool {
	return c.app != nil
}

// Connect establishes the connection to the application process. Connect is
// idempotent: an established session is left untouched.
func (c *Client) Connect() error {
	if c.app != nil {
		c.log.Warn("application connection already established")
		return nil
	}

	c.log.Info("connecting to application", "version", c.version, "headless", c.headless)
	app, err := c.dispatcher.Dispatch(progID(c.version))
	if err != nil {
		return &ConnectionError{Version: c.version, Err: err}
	}
	if err := app.Put("Visible", !c.headless); err != nil {
		app.Release()
		return &ConnectionError{Version: c.version, Err: err}
	}

	c.app = app
	return nil
}

// killProcess terminates the application by executable name. Swappable for
// tests.
var killProcess = func() error {
	return exec.Command("taskkill", "/IM", processName, "/F").Run()
}

// Disconnect releases the connection handle. When force is set, the
// application process is additionally terminated by executable name. That
// fallback is blunt: it kills every instance on the machine, not just the one
// this session owns, and exists only for when graceful shutdown fails.
func (c *Client) Disconnect(force bool) error {
	if c.app != nil {
		c.app.Release()
		c.app = nil
	}

	if force {
		c.log.Warn("force-terminating application process", "process", processName)
		if err := killProcess(); err != nil {
			return fmt.Errorf("terminating %s: %w", processName, err)
		}
	}
	return nil
}

var docTypeCodes = map[document.Type]int{
	document.TypePart:     docTypeCodePart,
	document.TypeAssembly: docTypeCodeAssembly,
	document.TypeDrawing:  docTypeCodeDrawing,
}

// Open opens the document at loc. The document type is classified from the
// location's extension; unrecognized extensions fail with
// *document.UnsupportedTypeError. The open call runs in silent mode so
// interactive error/warning dialogs never block automation.
func (c *Client) Open(loc location.Location) (*document.Document, error) {
	if c.app == nil {
		return nil, fmt.Errorf("not connected")
	}

	docType, err := document.Classify(loc)
	if err != nil {
		return nil, err
	}

	c.log.Info("opening document", "name", loc.Name(), "type", docType)

	errSlot := com.NewByRef(openErrorSeed)
	warnSlot := com.NewByRef(openWarningSeed)
	result, err := c.app.Call("OpenDoc6",
		loc.Complete(), docTypeCodes[docType], openOptionSilent, "", errSlot, warnSlot)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", loc.Name(), err)
	}
	model := result.Object()
	if model == nil {
		return nil, fmt.Errorf("opening %s: application returned no document (error code %d)",
			loc.Name(), errSlot.Value)
	}
	if warnSlot.Value != 0 {
		c.log.Warn("document opened with warnings", "name", loc.Name(), "code", warnSlot.Value)
	}

	doc := &document.Document{
		Model:  model,
		Source: loc,
		Type:   docType,
	}
	if info, err := c.fs.Stat(loc.Complete()); err == nil {
		doc.Size = document.FileSize(info.Size())
	}
	return doc, nil
}

// Save persists the live document. Must be called before Close if changes are
// to be retained.
func (c *Client) Save(doc *document.Document) error {
	c.log.Info("saving document", "name", doc.Source.Name())

	errSlot := com.NewByRef(saveErrorSeed)
	warnSlot := com.NewByRef(saveWarningSeed)
	if _, err := doc.Model.Call("Save3",
		com.NewByRef(saveOptionSilent), errSlot, warnSlot); err != nil {
		return fmt.Errorf("saving %s: %w", doc.Source.Name(), err)
	}
	return nil
}

// Rebuild forces recomputation of the document's dependency graph. topOnly
// limits recomputation depth; its exact semantics belong to the external
// process.
func (c *Client) Rebuild(doc *document.Document, topOnly bool) error {
	c.log.Info("rebuilding document", "name", doc.Source.Name(), "top_only", topOnly)

	flag := int32(0)
	if topOnly {
		flag = 1
	}
	if _, err := doc.Model.Call("ForceRebuild3", com.NewByRef(flag)); err != nil {
		return fmt.Errorf("rebuilding %s: %w", doc.Source.Name(), err)
	}
	return nil
}

// Close releases the external document without saving or rebuilding. The
// handle is invalid afterward.
func (c *Client) Close(doc *document.Document) error {
	if c.app == nil {
		return fmt.Errorf("not connected")
	}

	c.log.Info("closing document", "name", doc.Source.Name())
	if _, err := c.app.Call("CloseDoc", doc.Source.Complete()); err != nil {
		return fmt.Errorf("closing %s: %w", doc.Source.Name(), err)
	}
	doc.Model.Release()
	return nil
}

// SafeClose rebuilds, saves, then closes, in that order. Rebuild and save
// failures do not short-circuit: the close is always attempted so the
// external document is never left open holding the handle. All failures are
// aggregated into the returned error.
func (c *Client) SafeClose(doc *document.Document) error {
	var result *multierror.Error

	if err := c.Rebuild(doc, false); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Save(doc); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Close(doc); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
