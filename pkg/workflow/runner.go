package workflow

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/cadforge/solidwrap/pkg/document"
	"github.com/cadforge/solidwrap/pkg/journal"
	"github.com/cadforge/solidwrap/pkg/location"
	"github.com/cadforge/solidwrap/pkg/vault"
)

// VaultSession is the slice of the vault client a batch job uses.
type VaultSession interface {
	Checkout(loc location.Location) error
	Checkin(loc location.Location, comment string) error
	UndoCheckout(loc location.Location) error
}

// AppSession is the slice of the application client a batch job uses.
type AppSession interface {
	Open(loc location.Location) (*document.Document, error)
	Rebuild(doc *document.Document, topOnly bool) error
	Freeze(doc *document.Document) error
	Export(doc *document.Document, format document.ExportFormat, destOverride string) (location.Location, error)
	SafeClose(doc *document.Document) error
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Vault is required when the manifest checks files out or in.
	Vault VaultSession

	// App is required when the manifest rebuilds, freezes, or exports.
	App AppSession

	// Journal records each step. Optional.
	Journal *journal.Journal

	// Logger for job progress.
	Logger hclog.Logger
}

// Runner executes batch manifests.
type Runner struct {
	vault   VaultSession
	app     AppSession
	journal *journal.Journal
	log     hclog.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	return &Runner{
		vault:   cfg.Vault,
		app:     cfg.App,
		journal: cfg.Journal,
		log:     cfg.Logger.Named("workflow"),
	}, nil
}

// Result summarizes a batch run.
type Result struct {
	// Processed counts files that completed every step.
	Processed int

	// Failed counts files where at least one step failed.
	Failed int

	// Exported lists the files written by export steps.
	Exported []location.Location
}

// Run executes the manifest file by file. A failing file does not stop the
// rest of the batch; per-file errors are aggregated into the returned error.
func (r *Runner) Run(m *Manifest) (*Result, error) {
	if m.NeedsVault() && r.vault == nil {
		return nil, fmt.Errorf("manifest requires a vault session")
	}
	if m.NeedsApplication() && r.app == nil {
		return nil, fmt.Errorf("manifest requires an application session")
	}

	formats, err := m.ExportFormats()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	var errs *multierror.Error

	for _, path := range m.Files {
		loc, err := location.New(path)
		if err != nil {
			result.Failed++
			errs = multierror.Append(errs, err)
			continue
		}

		if err := r.runFile(m, loc, formats, result); err != nil {
			r.log.Error("batch file failed", "name", loc.Name(), "error", err)
			r.record("batch", loc, journal.ResultFailed, err.Error())
			result.Failed++
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", loc.Name(), err))
			continue
		}

		r.record("batch", loc, journal.ResultOK, "")
		result.Processed++
	}

	return result, errs.ErrorOrNil()
}

func (r *Runner) runFile(m *Manifest, loc location.Location, formats []document.ExportFormat, result *Result) error {
	acquired := false
	if m.Checkout {
		err := r.vault.Checkout(loc)
		var already *vault.AlreadyInStateError
		switch {
		case err == nil:
			acquired = true
		case errors.As(err, &already):
		default:
			return fmt.Errorf("checkout: %w", err)
		}
	}

	if m.NeedsApplication() {
		if err := r.runDocument(m, loc, formats, result); err != nil {
			// A job that was going to check the file back in must not
			// strand the lock the batch itself acquired. Locks held
			// before the batch, or by jobs without a checkin step, are
			// left alone.
			if acquired && m.Checkin {
				if undoErr := r.vault.UndoCheckout(loc); undoErr != nil {
					r.log.Warn("failed to release lock after failure", "name", loc.Name(), "error", undoErr)
				}
			}
			return err
		}
	}

	if m.Checkin {
		err := r.vault.Checkin(loc, m.Comment)
		var already *vault.AlreadyInStateError
		if err != nil && !errors.As(err, &already) {
			return fmt.Errorf("checkin: %w", err)
		}
	}
	return nil
}

func (r *Runner) runDocument(m *Manifest, loc location.Location, formats []document.ExportFormat, result *Result) error {
	doc, err := r.app.Open(loc)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	var errs *multierror.Error

	if m.Rebuild {
		if err := r.app.Rebuild(doc, false); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("rebuild: %w", err))
		}
	}
	if m.Freeze {
		if err := r.app.Freeze(doc); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("freeze: %w", err))
		}
	}
	for _, format := range formats {
		out, err := r.app.Export(doc, format, m.Destination)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("export %s: %w", format, err))
			continue
		}
		result.Exported = append(result.Exported, out)
	}

	if err := r.app.SafeClose(doc); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("close: %w", err))
	}
	return errs.ErrorOrNil()
}

func (r *Runner) record(operation string, loc location.Location, result, detail string) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Record(operation, loc.Complete(), result, detail); err != nil {
		r.log.Warn("failed to record journal entry", "operation", operation, "error", err)
	}
}
