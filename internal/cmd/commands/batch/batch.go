package batch

import (
	"fmt"

	"github.com/cadforge/solidwrap/internal/cmd/base"
	"github.com/cadforge/solidwrap/pkg/workflow"
)

type Command struct {
	*base.Command

	FlagManifest string
}

func (c *Command) Synopsis() string {
	return "Run a batch job from a YAML manifest"
}

func (c *Command) Help() string {
	return `Usage: solidwrap batch -manifest=job.yaml [options]

  Runs a scripted batch job: check out a set of files, rebuild, freeze,
  or export them, and check them back in. A failing file does not stop
  the rest of the batch.

  Example manifest:

    files:
      - parts/Test_Part_01.SLDPRT
      - parts/Test_Part_02.SLDPRT
    checkout: true
    rebuild: true
    exports: [step, png]
    checkin: true
    comment: nightly rebuild

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := c.NewFlagSet("batch")
	f.StringVar(&c.FlagManifest, "manifest", "", "Path to the YAML manifest")
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.FlagManifest == "" {
		c.UI.Error("-manifest is required")
		return 1
	}

	manifest, err := workflow.LoadManifest(c.FlagManifest)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	cfg := workflow.RunnerConfig{Logger: c.Log}

	if manifest.NeedsVault() {
		client, err := c.VaultClient()
		if err != nil {
			c.UI.Error(fmt.Sprintf("error connecting to vault: %v", err))
			return 1
		}
		defer client.Disconnect()
		cfg.Vault = client
	}

	if manifest.NeedsApplication() {
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
		cfg.App = client
	}

	j, err := c.Journal()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error opening journal: %v", err))
		return 1
	}
	cfg.Journal = j

	runner, err := workflow.NewRunner(cfg)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	result, err := runner.Run(manifest)
	if result != nil {
		c.UI.Output(fmt.Sprintf("Batch finished: %d processed, %d failed, %d file(s) exported",
			result.Processed, result.Failed, len(result.Exported)))
		for _, out := range result.Exported {
			c.UI.Output(fmt.Sprintf("  %s", out.Complete()))
		}
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("batch finished with errors: %v", err))
		return 1
	}
	return 0
}
