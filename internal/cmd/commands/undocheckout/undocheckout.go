package undocheckout

import (
	"errors"
	"fmt"

	"github.com/cadforge/solidwrap/internal/cmd/base"
	"github.com/cadforge/solidwrap/pkg/journal"
	"github.com/cadforge/solidwrap/pkg/location"
	"github.com/cadforge/solidwrap/pkg/vault"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Discard checkouts, reverting local changes"
}

func (c *Command) Help() string {
	return `Usage: solidwrap undo-checkout [options] FILE ...

  Releases the vault lock on each named file WITHOUT recording a new
  version. Local modifications are lost. Files that are not checked out
  are skipped.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	return c.NewFlagSet("undo-checkout")
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if len(f.Args()) == 0 {
		c.UI.Error("at least one file is required")
		return 1
	}

	client, err := c.VaultClient()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to vault: %v", err))
		return 1
	}
	defer client.Disconnect()

	j, err := c.Journal()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error opening journal: %v", err))
		return 1
	}

	failed := 0
	for _, p := range f.Args() {
		loc, err := location.New(p)
		if err != nil {
			c.UI.Error(fmt.Sprintf("invalid file path %q: %v", p, err))
			failed++
			continue
		}

		err = client.UndoCheckout(loc)
		var already *vault.AlreadyInStateError
		switch {
		case err == nil:
			c.RecordJournal(j, "undo-checkout", loc.Complete(), journal.ResultOK, "")
			c.UI.Output(fmt.Sprintf("Reverted %s", loc.Name()))
		case errors.As(err, &already):
			c.RecordJournal(j, "undo-checkout", loc.Complete(), journal.ResultSkipped, already.Error())
			c.UI.Warn(fmt.Sprintf("Skipped %s: %v", loc.Name(), err))
		default:
			c.RecordJournal(j, "undo-checkout", loc.Complete(), journal.ResultFailed, err.Error())
			c.UI.Error(fmt.Sprintf("error reverting %s: %v", loc.Name(), err))
			failed++
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}
