package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/cadforge/solidwrap/internal/cmd/base"
	"github.com/cadforge/solidwrap/internal/cmd/commands/batch"
	"github.com/cadforge/solidwrap/internal/cmd/commands/checkin"
	"github.com/cadforge/solidwrap/internal/cmd/commands/checkout"
	"github.com/cadforge/solidwrap/internal/cmd/commands/export"
	"github.com/cadforge/solidwrap/internal/cmd/commands/history"
	"github.com/cadforge/solidwrap/internal/cmd/commands/state"
	"github.com/cadforge/solidwrap/internal/cmd/commands/status"
	"github.com/cadforge/solidwrap/internal/cmd/commands/undocheckout"
	versioncmd "github.com/cadforge/solidwrap/internal/cmd/commands/version"
)

// Commands is the mapping of all available CLI commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	newBase := func(name string) *base.Command {
		return &base.Command{
			UI:  ui,
			Log: log.Named(name),
		}
	}

	Commands = map[string]cli.CommandFactory{
		"checkout": func() (cli.Command, error) {
			return &checkout.Command{Command: newBase("checkout")}, nil
		},
		"checkin": func() (cli.Command, error) {
			return &checkin.Command{Command: newBase("checkin")}, nil
		},
		"undo-checkout": func() (cli.Command, error) {
			return &undocheckout.Command{Command: newBase("undo-checkout")}, nil
		},
		"state": func() (cli.Command, error) {
			return &state.Command{Command: newBase("state")}, nil
		},
		"status": func() (cli.Command, error) {
			return &status.Command{Command: newBase("status")}, nil
		},
		"export": func() (cli.Command, error) {
			return &export.Command{Command: newBase("export")}, nil
		},
		"batch": func() (cli.Command, error) {
			return &batch.Command{Command: newBase("batch")}, nil
		},
		"history": func() (cli.Command, error) {
			return &history.Command{Command: newBase("history")}, nil
		},
		"version": func() (cli.Command, error) {
			return &versioncmd.Command{Command: newBase("version")}, nil
		},
	}
}
