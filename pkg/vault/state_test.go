package vault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadforge/solidwrap/pkg/com"
	"github.com/cadforge/solidwrap/pkg/document"
)

// namedTransition scripts one outbound transition on the fixture's workflow
// state.
type namedTransition struct {
	name        string
	destination string
}

// scriptWorkflow wires a workflow state object onto the fixture's file, with
// the given outbound transitions. ChangeState on the file moves the state
// name to the transition's destination.
func (f *fixture) scriptWorkflow(t *testing.T, transitions []namedTransition) {
	t.Helper()

	state := com.NewFakeObject("state")
	state.Getters["Name"] = func(args ...interface{}) (interface{}, error) {
		return f.stateName, nil
	}
	state.Methods["GetFirstTransitionPosition"] = func(args ...interface{}) (interface{}, error) {
		idx := 0
		pos := com.NewFakeObject("pos")
		pos.Getters["IsNull"] = func(args ...interface{}) (interface{}, error) {
			return idx >= len(transitions), nil
		}
		pos.Props["index"] = &idx
		return pos, nil
	}
	state.Methods["GetNextTransition"] = func(args ...interface{}) (interface{}, error) {
		require.Len(t, args, 1)
		pos, ok := args[0].(*com.FakeObject)
		require.True(t, ok)
		idx := pos.Props["index"].(*int)

		tr := transitions[*idx]
		*idx++

		dest := com.NewFakeObject("dest-state")
		dest.Props["Name"] = tr.destination
		item := com.NewFakeObject("transition")
		item.Props["Name"] = tr.name
		item.Props["ToState"] = dest
		return item, nil
	}

	f.file.Getters["CurrentState"] = func(args ...interface{}) (interface{}, error) {
		return state, nil
	}
	f.file.Methods["ChangeState"] = func(args ...interface{}) (interface{}, error) {
		require.Len(t, args, 5)
		f.stateName = args[0].(string)
		return nil, nil
	}
}

// scriptConfigurations wires a configuration list (vendor string list shape)
// onto the fixture's file.
func (f *fixture) scriptConfigurations(t *testing.T, items []string) {
	t.Helper()

	list := com.NewFakeObject("configurations")
	list.Props["Count"] = len(items)
	list.Methods["GetFirstPosition"] = func(args ...interface{}) (interface{}, error) {
		idx := 0
		pos := com.NewFakeObject("pos")
		pos.Getters["IsNull"] = func(args ...interface{}) (interface{}, error) {
			return idx >= len(items), nil
		}
		pos.Props["index"] = &idx
		return pos, nil
	}
	list.Methods["GetNext"] = func(args ...interface{}) (interface{}, error) {
		pos, ok := args[0].(*com.FakeObject)
		require.True(t, ok)
		idx := pos.Props["index"].(*int)
		item := items[*idx]
		*idx++
		return item, nil
	}

	f.file.Methods["GetConfigurations"] = func(args ...interface{}) (interface{}, error) {
		return list, nil
	}
}

func TestState(t *testing.T) {
	f := newFixture(t)
	f.scriptWorkflow(t, nil)
	c := f.client(t)

	state, err := c.State(f.loc)
	require.NoError(t, err)
	assert.Equal(t, "WIP", state)
}

func TestTransitions(t *testing.T) {
	f := newFixture(t)
	f.scriptWorkflow(t, []namedTransition{
		{name: "Submit for Review", destination: "In Review"},
		{name: "Release", destination: "Released"},
	})
	c := f.client(t)

	transitions, err := c.Transitions(f.loc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Submit for Review", "Release"}, transitions)
}

func TestChangeState(t *testing.T) {
	f := newFixture(t)
	f.scriptWorkflow(t, []namedTransition{
		{name: "Release", destination: "Released"},
	})
	c := f.client(t)

	require.NoError(t, c.ChangeState(f.loc, "Release", "ready to ship"))

	// The new state is reflected in subsequent reads.
	state, err := c.State(f.loc)
	require.NoError(t, err)
	assert.Equal(t, "Released", state)
}

func TestChangeState_InvalidTransition(t *testing.T) {
	f := newFixture(t)
	f.scriptWorkflow(t, []namedTransition{
		{name: "Submit for Review", destination: "In Review"},
	})
	c := f.client(t)

	err := c.ChangeState(f.loc, "Release", "")
	require.Error(t, err)

	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "Release", invalid.Transition)
	assert.Equal(t, []string{"Submit for Review"}, invalid.Available)

	// The request never reached the server, and the state is unchanged.
	assert.False(t, f.file.Called("ChangeState"))
	assert.Equal(t, "WIP", f.stateName)
}

func TestChangeState_NoTransitions(t *testing.T) {
	f := newFixture(t)
	f.scriptWorkflow(t, nil)
	c := f.client(t)

	var invalid *InvalidTransitionError
	err := c.ChangeState(f.loc, "Release", "")
	require.True(t, errors.As(err, &invalid))
	assert.Empty(t, invalid.Available)
}

func TestRevision(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	revision, err := c.Revision(f.loc)
	require.NoError(t, err)
	assert.Equal(t, "B.2", revision)
}

func TestCheckoutOwner(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	t.Run("unlocked file has no owner", func(t *testing.T) {
		owner, err := c.CheckoutOwner(f.loc)
		require.NoError(t, err)
		assert.Empty(t, owner)
	})

	t.Run("locked file reports its owner", func(t *testing.T) {
		require.NoError(t, c.Checkout(f.loc))
		owner, err := c.CheckoutOwner(f.loc)
		require.NoError(t, err)
		assert.Equal(t, "automation", owner)
	})
}

func TestConfigurations_FiltersSentinel(t *testing.T) {
	f := newFixture(t)
	f.scriptConfigurations(t, []string{"@", "Default", "Machined"})
	c := f.client(t)

	configurations, err := c.Configurations(f.loc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Default", "Machined"}, configurations)
	assert.NotContains(t, configurations, "@")
}

func TestFileSize(t *testing.T) {
	f := newFixture(t)
	f.file.Methods["GetLocalFileSize2"] = func(args ...interface{}) (interface{}, error) {
		require.Equal(t, 42, args[0])
		return 5 * 1024 * 1024, nil
	}
	c := f.client(t)

	size, err := c.FileSize(f.loc)
	require.NoError(t, err)
	assert.Equal(t, document.FileSize(5*1024*1024), size)
	assert.Equal(t, "5.00 MB", size.String())
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	f.scriptWorkflow(t, nil)
	f.scriptConfigurations(t, []string{"@", "Default"})
	f.file.Methods["GetLocalFileSize2"] = func(args ...interface{}) (interface{}, error) {
		return 2048, nil
	}
	c := f.client(t)

	require.NoError(t, c.Checkout(f.loc))

	status, err := c.Status(f.loc)
	require.NoError(t, err)
	assert.Equal(t, &FileStatus{
		Revision:       "B.2",
		State:          "WIP",
		Owner:          "automation",
		Size:           2048,
		Configurations: []string{"Default"},
	}, status)
}

func TestPureReads_DoNotRequireLock(t *testing.T) {
	f := newFixture(t)
	f.scriptWorkflow(t, nil)
	f.scriptConfigurations(t, []string{"Default"})
	f.file.Methods["GetLocalFileSize2"] = func(args ...interface{}) (interface{}, error) {
		return 1, nil
	}
	c := f.client(t)

	// All reads succeed against an unlocked file, and none of them mutate
	// lock state.
	_, err := c.Revision(f.loc)
	require.NoError(t, err)
	_, err = c.State(f.loc)
	require.NoError(t, err)
	_, err = c.Transitions(f.loc)
	require.NoError(t, err)
	_, err = c.CheckoutOwner(f.loc)
	require.NoError(t, err)
	_, err = c.Configurations(f.loc)
	require.NoError(t, err)
	_, err = c.FileSize(f.loc)
	require.NoError(t, err)

	assert.False(t, f.locked)
	assert.False(t, f.file.Called("LockFile"))
}

func TestTransitions_MalformedEnumeratorTerminates(t *testing.T) {
	f := newFixture(t)

	// A position that never reports null: the walk must still terminate at
	// the cap.
	state := com.NewFakeObject("state")
	state.Getters["Name"] = func(args ...interface{}) (interface{}, error) {
		return "WIP", nil
	}
	state.Methods["GetFirstTransitionPosition"] = func(args ...interface{}) (interface{}, error) {
		pos := com.NewFakeObject("pos")
		pos.Props["IsNull"] = false
		return pos, nil
	}
	calls := 0
	state.Methods["GetNextTransition"] = func(args ...interface{}) (interface{}, error) {
		calls++
		item := com.NewFakeObject(fmt.Sprintf("transition-%d", calls))
		item.Props["Name"] = fmt.Sprintf("loop-%d", calls)
		item.Props["ToState"] = nil
		return item, nil
	}
	f.file.Getters["CurrentState"] = func(args ...interface{}) (interface{}, error) {
		return state, nil
	}

	c := f.client(t)
	transitions, err := c.Transitions(f.loc)
	require.NoError(t, err)
	assert.Len(t, transitions, maxTransitions)
}
