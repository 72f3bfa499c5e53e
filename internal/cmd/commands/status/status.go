package status

import (
	"fmt"
	"strings"

	"github.com/cadforge/solidwrap/internal/cmd/base"
	"github.com/cadforge/solidwrap/pkg/location"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Show a vault file's revision, state, owner, and size"
}

func (c *Command) Help() string {
	return `Usage: solidwrap status [options] FILE ...

  Prints a read-only snapshot of each named vault file: its revision,
  workflow state, checkout owner (if any), local size, and the user
  configurations it contains.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	return c.NewFlagSet("status")
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

	failed := 0
	for i, p := range f.Args() {
		loc, err := location.New(p)
		if err != nil {
			c.UI.Error(fmt.Sprintf("invalid file path %q: %v", p, err))
			failed++
			continue
		}

		st, err := client.Status(loc)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error reading status of %s: %v", loc.Name(), err))
			failed++
			continue
		}

		if i > 0 {
			c.UI.Output("")
		}
		c.UI.Output(loc.Name())
		c.UI.Output(fmt.Sprintf("  Revision:       %s", st.Revision))
		c.UI.Output(fmt.Sprintf("  State:          %s", st.State))
		owner := st.Owner
		if owner == "" {
			owner = "(not checked out)"
		}
		c.UI.Output(fmt.Sprintf("  Checked out by: %s", owner))
		c.UI.Output(fmt.Sprintf("  Size:           %s", st.Size))
		c.UI.Output(fmt.Sprintf("  Configurations: %s", strings.Join(st.Configurations, ", ")))
	}

	if failed > 0 {
		return 1
	}
	return 0
}
