package checkin

import (
	"fmt"

	"github.com/cadforge/solidwrap/internal/cmd/base"
	"github.com/cadforge/solidwrap/pkg/location"
)

type Command struct {
	*base.Command

	FlagComment string
}

func (c *Command) Synopsis() string {
	return "Check files back into the vault"
}

func (c *Command) Help() string {
	return `Usage: solidwrap checkin [options] FILE ...

  Releases the vault lock on each named file, recording the new version.
  Files that are already checked in are skipped.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := c.NewFlagSet("checkin")
	f.StringVar(&c.FlagComment, "comment", "", "Checkin comment recorded in vault history")
	return f
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

	locs := make([]location.Location, 0, len(f.Args()))
	for _, p := range f.Args() {
		loc, err := location.New(p)
		if err != nil {
			c.UI.Error(fmt.Sprintf("invalid file path %q: %v", p, err))
			return 1
		}
		locs = append(locs, loc)
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

	result, err := client.BatchCheckin(locs, c.FlagComment)
	if result != nil {
		c.RecordBatchJournal(j, "checkin", result)
		c.UI.Output(fmt.Sprintf("Checked in %d file(s), skipped %d already checked in", result.Processed, result.Skipped))
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("checkin finished with errors: %v", err))
		return 1
	}
	return 0
}
