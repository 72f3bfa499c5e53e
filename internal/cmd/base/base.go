// Package base carries the state and helpers shared by every CLI command:
// the UI, the logger, config loading, and session construction.
package base

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/cadforge/solidwrap/internal/config"
	"github.com/cadforge/solidwrap/pkg/journal"
	"github.com/cadforge/solidwrap/pkg/solidworks"
	"github.com/cadforge/solidwrap/pkg/vault"
)

// Command is embedded by every CLI command.
type Command struct {
	UI  cli.Ui
	Log hclog.Logger

	// FlagConfig is the path to the HCL config file, empty for defaults.
	FlagConfig string

	cfg *config.Config
}

// FlagSet wraps flag.FlagSet with help rendering.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet creates a flag set carrying the flags every command accepts.
func (c *Command) NewFlagSet(name string) *FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(nopWriter{})
	f.StringVar(&c.FlagConfig, "config", "", "Path to the HCL configuration file")
	return &FlagSet{FlagSet: f}
}

// Help renders the flag set's usage text.
func (f *FlagSet) Help() string {
	var b strings.Builder
	b.WriteString("Options:\n")
	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "  -%s\n        %s", fl.Name, fl.Usage)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&b, " (default: %s)", fl.DefValue)
		}
		b.WriteString("\n")
	})
	return b.String()
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// Config loads the configuration file named by -config, or the built-in
// defaults when no file was given. The result is cached.
func (c *Command) Config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	if c.FlagConfig == "" {
		c.cfg = config.Default()
		return c.cfg, nil
	}
	cfg, err := config.Load(c.FlagConfig)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.Log.SetLevel(hclog.LevelFromString(cfg.LogLevel))
	return c.cfg, nil
}

// VaultClient builds and connects the vault session from config. Fails when
// no vault block is configured.
func (c *Command) VaultClient() (*vault.Client, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	if cfg.Vault == nil {
		return nil, fmt.Errorf("no vault block in configuration")
	}

	client, err := vault.New(vault.Config{
		Vault:  cfg.Vault.Name,
		Logger: c.Log,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Connect(); err != nil {
		return nil, err
	}
	return client, nil
}

// SolidWorksClient builds and connects the application session from config.
// A freshly started application process takes a while to register its
// automation class, so the initial connect is retried briefly.
func (c *Command) SolidWorksClient() (*solidworks.Client, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}

	client, err := solidworks.New(solidworks.Config{
		Version:   cfg.SolidWorks.Version,
		Headless:  cfg.SolidWorks.Headless,
		ExportDir: cfg.SolidWorks.ExportDir,
		Scene:     cfg.SolidWorks.Scene,
		Logger:    c.Log,
	})
	if err != nil {
		return nil, err
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(2*time.Second), 5)
	if err := backoff.Retry(client.Connect, policy); err != nil {
		return nil, err
	}
	return client, nil
}

// Journal opens the configured operation journal, or returns nil when
// journaling is not configured.
func (c *Command) Journal() (*journal.Journal, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	if cfg.Journal == nil || cfg.Journal.Path == "" {
		return nil, nil
	}
	return journal.Open(cfg.Journal.Path, c.Log)
}

// RecordBatchJournal writes one journal entry per batch file, mirroring each
// file's outcome: ok, skipped, or failed with the error.
func (c *Command) RecordBatchJournal(j *journal.Journal, operation string, result *vault.BatchResult) {
	if j == nil || result == nil {
		return
	}
	detail := fmt.Sprintf("batch %s", result.BatchID)
	for _, outcome := range result.Outcomes {
		switch {
		case outcome.Err != nil:
			c.RecordJournal(j, operation, outcome.Location.Complete(), journal.ResultFailed, outcome.Err.Error())
		case outcome.Skipped:
			c.RecordJournal(j, operation, outcome.Location.Complete(), journal.ResultSkipped, detail)
		default:
			c.RecordJournal(j, operation, outcome.Location.Complete(), journal.ResultOK, detail)
		}
	}
}

// RecordJournal writes an entry if a journal is open. Journal failures are
// reported as warnings and never abort the operation they describe.
func (c *Command) RecordJournal(j *journal.Journal, operation, file, result, detail string) {
	if j == nil {
		return
	}
	if err := j.Record(operation, file, result, detail); err != nil {
		c.Log.Warn("failed to record journal entry", "operation", operation, "error", err)
	}
}
