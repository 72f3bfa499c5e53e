package version

import (
	"fmt"

	"github.com/cadforge/solidwrap/internal/cmd/base"
	buildinfo "github.com/cadforge/solidwrap/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the CLI version"
}

func (c *Command) Help() string {
	return "Usage: solidwrap version\n\n  Prints the CLI version.\n"
}

func (c *Command) Run(args []string) int {
	c.UI.Output(fmt.Sprintf("solidwrap %s", buildinfo.Version))
	return 0
}
