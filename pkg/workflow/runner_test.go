package workflow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadforge/solidwrap/pkg/document"
	"github.com/cadforge/solidwrap/pkg/location"
	"github.com/cadforge/solidwrap/pkg/vault"
)

// fakeVault records lock traffic and can simulate already-held locks.
type fakeVault struct {
	checkedOut []string
	checkedIn  []string
	undone     []string
	heldLocks  map[string]bool

	checkoutErr error
}

func (f *fakeVault) Checkout(loc location.Location) error {
	if f.checkoutErr != nil {
		return f.checkoutErr
	}
	if f.heldLocks[loc.Name()] {
		return &vault.AlreadyInStateError{Location: loc, State: "checked out"}
	}
	f.checkedOut = append(f.checkedOut, loc.Name())
	return nil
}

func (f *fakeVault) Checkin(loc location.Location, comment string) error {
	f.checkedIn = append(f.checkedIn, fmt.Sprintf("%s:%s", loc.Name(), comment))
	return nil
}

func (f *fakeVault) UndoCheckout(loc location.Location) error {
	f.undone = append(f.undone, loc.Name())
	return nil
}

// fakeApp records the document lifecycle per file.
type fakeApp struct {
	steps []string

	openErr   map[string]error
	exportErr error
}

func (f *fakeApp) Open(loc location.Location) (*document.Document, error) {
	if err := f.openErr[loc.Name()]; err != nil {
		return nil, err
	}
	f.steps = append(f.steps, "open "+loc.Name())
	return &document.Document{Source: loc, Type: document.TypePart}, nil
}

func (f *fakeApp) Rebuild(doc *document.Document, topOnly bool) error {
	f.steps = append(f.steps, "rebuild "+doc.Source.Name())
	return nil
}

func (f *fakeApp) Freeze(doc *document.Document) error {
	f.steps = append(f.steps, "freeze "+doc.Source.Name())
	return nil
}

func (f *fakeApp) Export(doc *document.Document, format document.ExportFormat, destOverride string) (location.Location, error) {
	if f.exportErr != nil {
		return location.Location{}, f.exportErr
	}
	f.steps = append(f.steps, fmt.Sprintf("export %s %s", doc.Source.Name(), format))
	out, _ := location.New(fmt.Sprintf("out/%s.%s", doc.Source.Root(), format.Extension()))
	return out, nil
}

func (f *fakeApp) SafeClose(doc *document.Document) error {
	f.steps = append(f.steps, "close "+doc.Source.Name())
	return nil
}

func TestRun_FullPipeline(t *testing.T) {
	v := &fakeVault{heldLocks: map[string]bool{}}
	app := &fakeApp{}
	r, err := NewRunner(RunnerConfig{Vault: v, App: app})
	require.NoError(t, err)

	m, err := ParseManifest([]byte(`
files: [parts/A.SLDPRT]
checkout: true
rebuild: true
freeze: true
exports: [step]
checkin: true
comment: release prep
`))
	require.NoError(t, err)

	result, err := r.Run(m)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Exported, 1)
	assert.Equal(t, "A.step", result.Exported[0].Name())

	assert.Equal(t, []string{"A.SLDPRT"}, v.checkedOut)
	assert.Equal(t, []string{"A.SLDPRT:release prep"}, v.checkedIn)
	assert.Equal(t, []string{
		"open A.SLDPRT",
		"rebuild A.SLDPRT",
		"freeze A.SLDPRT",
		"export A.SLDPRT step",
		"close A.SLDPRT",
	}, app.steps)
}

func TestRun_BestEffortAcrossFiles(t *testing.T) {
	v := &fakeVault{heldLocks: map[string]bool{}}
	app := &fakeApp{openErr: map[string]error{
		"B.SLDPRT": fmt.Errorf("file is corrupt"),
	}}
	r, err := NewRunner(RunnerConfig{Vault: v, App: app})
	require.NoError(t, err)

	m, err := ParseManifest([]byte(`
files: [parts/A.SLDPRT, parts/B.SLDPRT, parts/C.SLDPRT]
checkout: true
rebuild: true
checkin: true
`))
	require.NoError(t, err)

	result, err := r.Run(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B.SLDPRT")

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Failed)

	// The failing file never reaches checkin; the others do. Its lock,
	// acquired by this batch, is released rather than stranded.
	assert.Equal(t, []string{"A.SLDPRT:", "C.SLDPRT:"}, v.checkedIn)
	assert.Equal(t, []string{"B.SLDPRT"}, v.undone)
}

func TestRun_FailureKeepsPreexistingLock(t *testing.T) {
	v := &fakeVault{heldLocks: map[string]bool{"A.SLDPRT": true}}
	app := &fakeApp{openErr: map[string]error{
		"A.SLDPRT": fmt.Errorf("file is corrupt"),
	}}
	r, err := NewRunner(RunnerConfig{Vault: v, App: app})
	require.NoError(t, err)

	m, err := ParseManifest([]byte(`
files: [parts/A.SLDPRT]
checkout: true
rebuild: true
checkin: true
`))
	require.NoError(t, err)

	_, err = r.Run(m)
	require.Error(t, err)

	// The lock predates the batch, so the batch must not release it.
	assert.Empty(t, v.undone)
}

func TestRun_FailureWithoutCheckinKeepsLock(t *testing.T) {
	v := &fakeVault{heldLocks: map[string]bool{}}
	app := &fakeApp{openErr: map[string]error{
		"A.SLDPRT": fmt.Errorf("file is corrupt"),
	}}
	r, err := NewRunner(RunnerConfig{Vault: v, App: app})
	require.NoError(t, err)

	m, err := ParseManifest([]byte(`
files: [parts/A.SLDPRT]
checkout: true
rebuild: true
`))
	require.NoError(t, err)

	_, err = r.Run(m)
	require.Error(t, err)

	// Checkout-only jobs keep their locks for inspection.
	assert.Equal(t, []string{"A.SLDPRT"}, v.checkedOut)
	assert.Empty(t, v.undone)
}

func TestRun_AlreadyCheckedOutIsNotFailure(t *testing.T) {
	v := &fakeVault{heldLocks: map[string]bool{"A.SLDPRT": true}}
	app := &fakeApp{}
	r, err := NewRunner(RunnerConfig{Vault: v, App: app})
	require.NoError(t, err)

	m, err := ParseManifest([]byte(`
files: [parts/A.SLDPRT]
checkout: true
rebuild: true
`))
	require.NoError(t, err)

	result, err := r.Run(m)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, v.checkedOut)
	assert.Contains(t, app.steps, "rebuild A.SLDPRT")
}

func TestRun_MissingSessions(t *testing.T) {
	r, err := NewRunner(RunnerConfig{})
	require.NoError(t, err)

	m, err := ParseManifest([]byte("files: [a.SLDPRT]\ncheckout: true"))
	require.NoError(t, err)

	_, err = r.Run(m)
	assert.Error(t, err)

	m, err = ParseManifest([]byte("files: [a.SLDPRT]\nexports: [step]"))
	require.NoError(t, err)

	_, err = r.Run(m)
	assert.Error(t, err)
}
