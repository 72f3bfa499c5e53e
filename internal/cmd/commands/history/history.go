package history

import (
	"fmt"

	"github.com/cadforge/solidwrap/internal/cmd/base"
	"github.com/cadforge/solidwrap/pkg/journal"
)

type Command struct {
	*base.Command

	FlagFile  string
	FlagLimit int
}

func (c *Command) Synopsis() string {
	return "Show recent operations from the local journal"
}

func (c *Command) Help() string {
	return `Usage: solidwrap history [options]

  Lists recent operations recorded in the local journal, newest first.
  Requires a journal block in the configuration file.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := c.NewFlagSet("history")
	f.StringVar(&c.FlagFile, "file", "", "Only show entries for this file")
	f.IntVar(&c.FlagLimit, "limit", 20, "Maximum number of entries to show")
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	j, err := c.Journal()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error opening journal: %v", err))
		return 1
	}
	if j == nil {
		c.UI.Error("no journal configured: add a journal block to the configuration file")
		return 1
	}

	var entries []journal.Entry
	if c.FlagFile != "" {
		entries, err = j.ForFile(c.FlagFile, c.FlagLimit)
	} else {
		entries, err = j.Recent(c.FlagLimit)
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("error reading journal: %v", err))
		return 1
	}

	if len(entries) == 0 {
		c.UI.Output("No journal entries.")
		return 0
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-13s %-7s %s",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Operation, e.Result, e.File)
		if e.Detail != "" {
			line += fmt.Sprintf("  (%s)", e.Detail)
		}
		c.UI.Output(line)
	}
	return 0
}
