package vault

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/cadforge/solidwrap/pkg/location"
)

// Checkout claims the file at loc for editing. Checkout is advisory at this
// layer: if the file is already locked by anyone, the call is a no-op and
// returns *AlreadyInStateError, which callers should treat as a warning.
func (c *Client) Checkout(loc location.Location) error {
	folder, file, err := c.fileHandle(loc)
	if err != nil {
		return err
	}

	locked, err := file.Get("IsLocked")
	if err != nil {
		return fmt.Errorf("reading lock state of %s: %w", loc.Name(), err)
	}
	if locked.Bool() {
		c.log.Warn("file is already checked out", "name", loc.Name())
		return &AlreadyInStateError{Location: loc, State: "checked out"}
	}

	folderID, err := folder.Get("ID")
	if err != nil {
		return fmt.Errorf("reading folder id for %s: %w", loc.Name(), err)
	}

	c.log.Info("checking out file", "name", loc.Name())
	if _, err := file.Call("LockFile", folderID.Int(), 0); err != nil {
		return fmt.Errorf("checking out %s: %w", loc.Name(), err)
	}
	return nil
}

// Checkin releases the file at loc back to the vault. Symmetric to Checkout:
// already-unlocked files are a no-op returning *AlreadyInStateError. The
// automation tag is appended to the caller's comment so vault history
// distinguishes automated from manual actions.
func (c *Client) Checkin(loc location.Location, comment string) error {
	_, file, err := c.fileHandle(loc)
	if err != nil {
		return err
	}

	locked, err := file.Get("IsLocked")
	if err != nil {
		return fmt.Errorf("reading lock state of %s: %w", loc.Name(), err)
	}
	if !locked.Bool() {
		c.log.Warn("file is already checked in", "name", loc.Name())
		return &AlreadyInStateError{Location: loc, State: "checked in"}
	}

	c.log.Info("checking in file", "name", loc.Name())
	if _, err := file.Call("UnlockFile", 0, tagComment(comment)); err != nil {
		return fmt.Errorf("checking in %s: %w", loc.Name(), err)
	}
	return nil
}

// UndoCheckout reverts a checkout without committing local changes. A file
// that is not checked out is a no-op returning *AlreadyInStateError.
func (c *Client) UndoCheckout(loc location.Location) error {
	_, file, err := c.fileHandle(loc)
	if err != nil {
		return err
	}

	locked, err := file.Get("IsLocked")
	if err != nil {
		return fmt.Errorf("reading lock state of %s: %w", loc.Name(), err)
	}
	if !locked.Bool() {
		c.log.Warn("file is not checked out", "name", loc.Name())
		return &AlreadyInStateError{Location: loc, State: "checked in"}
	}

	c.log.Info("undoing checkout", "name", loc.Name())
	if _, err := file.Call("UndoLockFile", 0, false); err != nil {
		return fmt.Errorf("undoing checkout of %s: %w", loc.Name(), err)
	}
	return nil
}

// FileOutcome records one file's fate within a batch.
type FileOutcome struct {
	Location location.Location

	// Skipped is set when the file was already in the target state.
	Skipped bool

	// Err is set when the file genuinely failed.
	Err error
}

// BatchResult summarizes a best-effort batch lock operation.
type BatchResult struct {
	// BatchID correlates the batch's checkin comments in vault history.
	BatchID string

	// Processed counts files whose state actually changed.
	Processed int

	// Skipped counts files that were already in the target state.
	Skipped int

	// Outcomes holds the per-file results, in input order.
	Outcomes []FileOutcome
}

func (r *BatchResult) record(loc location.Location, err error) error {
	var already *AlreadyInStateError
	switch {
	case err == nil:
		r.Processed++
		r.Outcomes = append(r.Outcomes, FileOutcome{Location: loc})
		return nil
	case errors.As(err, &already):
		r.Skipped++
		r.Outcomes = append(r.Outcomes, FileOutcome{Location: loc, Skipped: true})
		return nil
	default:
		r.Outcomes = append(r.Outcomes, FileOutcome{Location: loc, Err: err})
		return err
	}
}

// BatchCheckout checks out each file in turn. The batch is best-effort:
// a failure on one file does not stop the rest, and files already checked
// out are skipped rather than counted as failures. Per-file failures are
// aggregated into the returned error.
func (c *Client) BatchCheckout(locs []location.Location) (*BatchResult, error) {
	result := &BatchResult{BatchID: uuid.NewString()}
	c.log.Info("starting batch checkout", "batch_id", result.BatchID, "files", len(locs))

	var errs *multierror.Error
	for _, loc := range locs {
		if err := result.record(loc, c.Checkout(loc)); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return result, errs.ErrorOrNil()
}

// BatchCheckin checks in each file in turn, best-effort like BatchCheckout.
// Every checkin comment carries the batch's correlation id.
func (c *Client) BatchCheckin(locs []location.Location, comment string) (*BatchResult, error) {
	result := &BatchResult{BatchID: uuid.NewString()}
	c.log.Info("starting batch checkin", "batch_id", result.BatchID, "files", len(locs))

	batchComment := fmt.Sprintf("%s (batch %s)", comment, result.BatchID)
	var errs *multierror.Error
	for _, loc := range locs {
		if err := result.record(loc, c.Checkin(loc, batchComment)); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return result, errs.ErrorOrNil()
}

// tagComment appends the automation tag to a caller-supplied comment.
func tagComment(comment string) string {
	if comment == "" {
		return automationTag
	}
	return comment + " [" + automationTag + "]"
}
