package checkout

import (
	"fmt"

	"github.com/cadforge/solidwrap/internal/cmd/base"
	"github.com/cadforge/solidwrap/pkg/location"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Check out files from the vault"
}

func (c *Command) Help() string {
	return `Usage: solidwrap checkout [options] FILE ...

  Acquires the vault lock on each named file so it can be modified locally.
  Files that are already checked out are skipped.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	return c.NewFlagSet("checkout")
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

	locs, err := parseLocations(f.Args())
	if err != nil {
		c.UI.Error(err.Error())
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

	result, err := client.BatchCheckout(locs)
	if result != nil {
		c.RecordBatchJournal(j, "checkout", result)
		c.UI.Output(fmt.Sprintf("Checked out %d file(s), skipped %d already checked out", result.Processed, result.Skipped))
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("checkout finished with errors: %v", err))
		return 1
	}
	return 0
}

func parseLocations(paths []string) ([]location.Location, error) {
	locs := make([]location.Location, 0, len(paths))
	for _, p := range paths {
		loc, err := location.New(p)
		if err != nil {
			return nil, fmt.Errorf("invalid file path %q: %w", p, err)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}
