package vault

import (
	"fmt"

	"github.com/cadforge/solidwrap/pkg/com"
	"github.com/cadforge/solidwrap/pkg/document"
	"github.com/cadforge/solidwrap/pkg/location"
)

// configSentinel is the vault's internal placeholder configuration entry; it
// never surfaces to callers.
const configSentinel = "@"

// maxTransitions caps the transition enumeration walk so a malformed
// enumerator linkage cannot loop forever.
const maxTransitions = 128

// Revision returns the file's current revision string. Pure read; does not
// require the file to be locked.
func (c *Client) Revision(loc location.Location) (string, error) {
	_, file, err := c.fileHandle(loc)
	if err != nil {
		return "", err
	}
	revision, err := file.Get("CurrentRevision")
	if err != nil {
		return "", fmt.Errorf("reading revision of %s: %w", loc.Name(), err)
	}
	return revision.String(), nil
}

// State returns the name of the file's current workflow state. Pure read.
func (c *Client) State(loc location.Location) (string, error) {
	_, file, err := c.fileHandle(loc)
	if err != nil {
		return "", err
	}
	state, err := c.currentState(file, loc)
	if err != nil {
		return "", err
	}
	name, err := state.Get("Name")
	if err != nil {
		return "", fmt.Errorf("reading state name of %s: %w", loc.Name(), err)
	}
	return name.String(), nil
}

// Transitions returns the names of the legal outbound transitions from the
// file's current workflow state. Pure read.
func (c *Client) Transitions(loc location.Location) ([]string, error) {
	_, file, err := c.fileHandle(loc)
	if err != nil {
		return nil, err
	}
	state, err := c.currentState(file, loc)
	if err != nil {
		return nil, err
	}

	transitions, err := c.enumerateTransitions(state, loc)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(transitions))
	for i, t := range transitions {
		names[i] = t.name
	}
	return names, nil
}

// ChangeState requests the workflow transition named transitionName for the
// file at loc. The request is valid only if the name exactly matches one of
// the transitions enumerated for the file's current state; otherwise it fails
// with *InvalidTransitionError rather than falling through to a default
// state. The automation tag is appended to the comment.
func (c *Client) ChangeState(loc location.Location, transitionName, comment string) error {
	folder, file, err := c.fileHandle(loc)
	if err != nil {
		return err
	}
	state, err := c.currentState(file, loc)
	if err != nil {
		return err
	}

	transitions, err := c.enumerateTransitions(state, loc)
	if err != nil {
		return err
	}

	var destination string
	found := false
	available := make([]string, len(transitions))
	for i, t := range transitions {
		available[i] = t.name
		if t.name == transitionName {
			destination = t.destination
			found = true
		}
	}
	if !found {
		return &InvalidTransitionError{
			Location:   loc,
			Transition: transitionName,
			Available:  available,
		}
	}

	folderID, err := folder.Get("ID")
	if err != nil {
		return fmt.Errorf("reading folder id for %s: %w", loc.Name(), err)
	}

	c.log.Info("changing workflow state",
		"name", loc.Name(), "transition", transitionName, "destination", destination)
	if _, err := file.Call("ChangeState",
		destination, folderID.Int(), tagComment(comment), 0, 0); err != nil {
		return fmt.Errorf("changing state of %s: %w", loc.Name(), err)
	}
	return nil
}

// CheckoutOwner returns the user holding the file's lock, or "" when the file
// is not checked out. Pure read.
func (c *Client) CheckoutOwner(loc location.Location) (string, error) {
	_, file, err := c.fileHandle(loc)
	if err != nil {
		return "", err
	}

	locked, err := file.Get("IsLocked")
	if err != nil {
		return "", fmt.Errorf("reading lock state of %s: %w", loc.Name(), err)
	}
	if !locked.Bool() {
		return "", nil
	}

	owner, err := file.Get("LockedByUser")
	if err != nil {
		return "", fmt.Errorf("reading lock owner of %s: %w", loc.Name(), err)
	}
	user := owner.Object()
	if user == nil {
		return "", nil
	}
	name, err := user.Get("Name")
	if err != nil {
		return "", fmt.Errorf("reading lock owner name of %s: %w", loc.Name(), err)
	}
	return name.String(), nil
}

// Configurations returns the file's configuration names with the vault's
// internal "@" sentinel entry filtered out. Pure read.
func (c *Client) Configurations(loc location.Location) ([]string, error) {
	_, file, err := c.fileHandle(loc)
	if err != nil {
		return nil, err
	}

	listResult, err := file.Call("GetConfigurations")
	if err != nil {
		return nil, fmt.Errorf("reading configurations of %s: %w", loc.Name(), err)
	}
	list := listResult.Object()
	if list == nil {
		return nil, fmt.Errorf("configurations of %s: not a list", loc.Name())
	}

	countResult, err := list.Get("Count")
	if err != nil {
		return nil, fmt.Errorf("reading configuration count of %s: %w", loc.Name(), err)
	}
	count := countResult.Int()

	posResult, err := list.Call("GetFirstPosition")
	if err != nil {
		return nil, fmt.Errorf("enumerating configurations of %s: %w", loc.Name(), err)
	}
	pos := posResult.Object()

	var names []string
	for i := 0; i < count && pos != nil; i++ {
		isNull, err := pos.Get("IsNull")
		if err != nil {
			return nil, fmt.Errorf("enumerating configurations of %s: %w", loc.Name(), err)
		}
		if isNull.Bool() {
			break
		}
		item, err := list.Call("GetNext", pos)
		if err != nil {
			return nil, fmt.Errorf("enumerating configurations of %s: %w", loc.Name(), err)
		}
		if name := item.String(); name != configSentinel {
			names = append(names, name)
		}
	}
	return names, nil
}

// FileSize returns the file's local size. Pure read.
func (c *Client) FileSize(loc location.Location) (document.FileSize, error) {
	folder, file, err := c.fileHandle(loc)
	if err != nil {
		return 0, err
	}

	folderID, err := folder.Get("ID")
	if err != nil {
		return 0, fmt.Errorf("reading folder id for %s: %w", loc.Name(), err)
	}
	size, err := file.Call("GetLocalFileSize2", folderID.Int())
	if err != nil {
		return 0, fmt.Errorf("reading size of %s: %w", loc.Name(), err)
	}
	return document.FileSize(size.Int()), nil
}

// FileStatus is a point-in-time snapshot of a vaulted file's metadata.
type FileStatus struct {
	Revision       string
	State          string
	Owner          string
	Size           document.FileSize
	Configurations []string
}

// Status gathers the pure reads for loc into one snapshot.
func (c *Client) Status(loc location.Location) (*FileStatus, error) {
	status := &FileStatus{}

	var err error
	if status.Revision, err = c.Revision(loc); err != nil {
		return nil, err
	}
	if status.State, err = c.State(loc); err != nil {
		return nil, err
	}
	if status.Owner, err = c.CheckoutOwner(loc); err != nil {
		return nil, err
	}
	if status.Size, err = c.FileSize(loc); err != nil {
		return nil, err
	}
	if status.Configurations, err = c.Configurations(loc); err != nil {
		return nil, err
	}
	return status, nil
}

// transition pairs a transition name with its destination state name.
type transition struct {
	name        string
	destination string
}

// currentState resolves the file's workflow state object.
func (c *Client) currentState(file com.Object, loc location.Location) (com.Object, error) {
	stateResult, err := file.Get("CurrentState")
	if err != nil {
		return nil, fmt.Errorf("reading workflow state of %s: %w", loc.Name(), err)
	}
	state := stateResult.Object()
	if state == nil {
		return nil, fmt.Errorf("workflow state of %s: not an object", loc.Name())
	}
	return state, nil
}

// enumerateTransitions walks the state's transition enumerator. The walk is
// capped so a malformed position linkage cannot loop forever.
func (c *Client) enumerateTransitions(state com.Object, loc location.Location) ([]transition, error) {
	posResult, err := state.Call("GetFirstTransitionPosition")
	if err != nil {
		return nil, fmt.Errorf("enumerating transitions of %s: %w", loc.Name(), err)
	}
	pos := posResult.Object()

	var transitions []transition
	for i := 0; i < maxTransitions && pos != nil; i++ {
		isNull, err := pos.Get("IsNull")
		if err != nil {
			return nil, fmt.Errorf("enumerating transitions of %s: %w", loc.Name(), err)
		}
		if isNull.Bool() {
			break
		}

		itemResult, err := state.Call("GetNextTransition", pos)
		if err != nil {
			return nil, fmt.Errorf("enumerating transitions of %s: %w", loc.Name(), err)
		}
		item := itemResult.Object()
		if item == nil {
			break
		}

		name, err := item.Get("Name")
		if err != nil {
			return nil, fmt.Errorf("reading transition name for %s: %w", loc.Name(), err)
		}

		destination := ""
		toState, err := item.Get("ToState")
		if err == nil {
			if dest := toState.Object(); dest != nil {
				destName, err := dest.Get("Name")
				if err != nil {
					return nil, fmt.Errorf("reading transition destination for %s: %w", loc.Name(), err)
				}
				destination = destName.String()
			}
		}

		transitions = append(transitions, transition{
			name:        name.String(),
			destination: destination,
		})
	}
	return transitions, nil
}
