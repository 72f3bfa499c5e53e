package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cadforge/solidwrap/internal/cmd/base"
	"github.com/cadforge/solidwrap/pkg/journal"
	"github.com/cadforge/solidwrap/pkg/location"
	"github.com/cadforge/solidwrap/pkg/vault"
)

type Command struct {
	*base.Command

	FlagTransition string
	FlagComment    string
}

func (c *Command) Synopsis() string {
	return "Show or change a file's workflow state"
}

func (c *Command) Help() string {
	return `Usage: solidwrap state [options] FILE

  Without -transition, prints the file's current workflow state and the
  transitions available from it. With -transition, fires the named
  transition and moves the file to its destination state.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := c.NewFlagSet("state")
	f.StringVar(&c.FlagTransition, "transition", "", "Workflow transition to fire")
	f.StringVar(&c.FlagComment, "comment", "", "Comment recorded with the transition")
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if len(f.Args()) != 1 {
		c.UI.Error("exactly one file is required")
		return 1
	}

	loc, err := location.New(f.Args()[0])
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid file path %q: %v", f.Args()[0], err))
		return 1
	}

	client, err := c.VaultClient()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to vault: %v", err))
		return 1
	}
	defer client.Disconnect()

	if c.FlagTransition == "" {
		return c.show(client, loc)
	}
	return c.change(client, loc)
}

func (c *Command) show(client *vault.Client, loc location.Location) int {
	current, err := client.State(loc)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error reading state of %s: %v", loc.Name(), err))
		return 1
	}
	transitions, err := client.Transitions(loc)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error reading transitions of %s: %v", loc.Name(), err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("State: %s", current))
	if len(transitions) == 0 {
		c.UI.Output("Transitions: (none)")
	} else {
		c.UI.Output(fmt.Sprintf("Transitions: %s", strings.Join(transitions, ", ")))
	}
	return 0
}

func (c *Command) change(client *vault.Client, loc location.Location) int {
	j, err := c.Journal()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error opening journal: %v", err))
		return 1
	}

	err = client.ChangeState(loc, c.FlagTransition, c.FlagComment)
	if err != nil {
		var invalid *vault.InvalidTransitionError
		if errors.As(err, &invalid) && len(invalid.Available) > 0 {
			c.UI.Error(fmt.Sprintf("error changing state of %s: %v", loc.Name(), err))
			c.UI.Error(fmt.Sprintf("available transitions: %s", strings.Join(invalid.Available, ", ")))
		} else {
			c.UI.Error(fmt.Sprintf("error changing state of %s: %v", loc.Name(), err))
		}
		c.RecordJournal(j, "change-state", loc.Complete(), journal.ResultFailed, err.Error())
		return 1
	}

	c.RecordJournal(j, "change-state", loc.Complete(), journal.ResultOK, c.FlagTransition)
	c.UI.Output(fmt.Sprintf("Fired transition %q on %s", c.FlagTransition, loc.Name()))
	return 0
}
