package base

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadforge/solidwrap/pkg/journal"
	"github.com/cadforge/solidwrap/pkg/location"
	"github.com/cadforge/solidwrap/pkg/vault"
)

func testLoc(t *testing.T, path string) location.Location {
	t.Helper()
	loc, err := location.New(path)
	require.NoError(t, err)
	return loc
}

func TestRecordBatchJournal_MixedOutcomes(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"), nil)
	require.NoError(t, err)

	ok := testLoc(t, "parts/A.SLDPRT")
	skipped := testLoc(t, "parts/B.SLDPRT")
	failed := testLoc(t, "parts/C.SLDPRT")

	result := &vault.BatchResult{
		BatchID:   "0b5e7c16-0000-0000-0000-000000000000",
		Processed: 1,
		Skipped:   1,
		Outcomes: []vault.FileOutcome{
			{Location: ok},
			{Location: skipped, Skipped: true},
			{Location: failed, Err: fmt.Errorf("not in vault")},
		},
	}

	c := &Command{Log: hclog.NewNullLogger()}
	c.RecordBatchJournal(j, "checkout", result)

	// Each file's journal entry mirrors its own outcome, not the batch's.
	entries, err := j.ForFile(ok.Complete(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, journal.ResultOK, entries[0].Result)
	assert.Contains(t, entries[0].Detail, result.BatchID)

	entries, err = j.ForFile(skipped.Complete(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, journal.ResultSkipped, entries[0].Result)

	entries, err = j.ForFile(failed.Complete(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, journal.ResultFailed, entries[0].Result)
	assert.Equal(t, "not in vault", entries[0].Detail)
}

func TestRecordBatchJournal_NoJournal(t *testing.T) {
	c := &Command{Log: hclog.NewNullLogger()}

	// Journaling is optional; nil journal and nil result are both no-ops.
	c.RecordBatchJournal(nil, "checkout", &vault.BatchResult{})
	c.RecordBatchJournal(nil, "checkout", nil)
}
