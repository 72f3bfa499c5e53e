package export

import (
	"fmt"

	"github.com/pkg/browser"

	"github.com/cadforge/solidwrap/internal/cmd/base"
	"github.com/cadforge/solidwrap/pkg/document"
	"github.com/cadforge/solidwrap/pkg/journal"
	"github.com/cadforge/solidwrap/pkg/location"
	"github.com/cadforge/solidwrap/pkg/solidworks"
)

type Command struct {
	*base.Command

	FlagFormat string
	FlagDest   string
	FlagOpen   bool
}

func (c *Command) Synopsis() string {
	return "Export documents to a neutral format"
}

func (c *Command) Help() string {
	return `Usage: solidwrap export [options] FILE ...

  Opens each named document in the application, exports it to the
  requested format, and closes it again. Models are staged (isometric
  view, white scene) before image and geometry exports; drawings are
  exported as-is.

  Parts and assemblies export to image, parasolid, step, and stl.
  Drawings export to dxf and pdf.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := c.NewFlagSet("export")
	f.StringVar(&c.FlagFormat, "format", "step", "Export format or extension (e.g. step, x_t, png, pdf)")
	f.StringVar(&c.FlagDest, "dest", "", "Destination directory (defaults to the configured export folder)")
	f.BoolVar(&c.FlagOpen, "open", false, "Open each exported file with the system default handler")
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

	format, err := document.ParseFormat(c.FlagFormat)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.SolidWorksClient()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to application: %v", err))
		return 1
	}
	defer func() {
		if err := client.Disconnect(false); err != nil {
			c.Log.Warn("failed to disconnect from application", "error", err)
		}
	}()

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

		out, err := c.exportOne(client, loc, format)
		if err != nil {
			c.RecordJournal(j, "export", loc.Complete(), journal.ResultFailed, err.Error())
			c.UI.Error(fmt.Sprintf("error exporting %s: %v", loc.Name(), err))
			failed++
			continue
		}

		c.RecordJournal(j, "export", loc.Complete(), journal.ResultOK, out.Complete())
		c.UI.Output(fmt.Sprintf("Exported %s to %s", loc.Name(), out.Complete()))

		if c.FlagOpen {
			if err := browser.OpenFile(out.Complete()); err != nil {
				c.Log.Warn("failed to open exported file", "path", out.Complete(), "error", err)
			}
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func (c *Command) exportOne(client *solidworks.Client, loc location.Location, format document.ExportFormat) (location.Location, error) {
	doc, err := client.Open(loc)
	if err != nil {
		return location.Location{}, err
	}

	out, exportErr := client.Export(doc, format, c.FlagDest)
	if err := client.Close(doc); err != nil {
		c.Log.Warn("failed to close document after export", "name", loc.Name(), "error", err)
	}
	if exportErr != nil {
		return location.Location{}, exportErr
	}
	return out, nil
}
