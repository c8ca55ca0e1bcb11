package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/taskwell/taskwell/cmd/taskwell/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Dev     bool `help:"Enable development mode (debug logging, console output)."`
		Version kong.VersionFlag
		Server  commands.ServerCmd  `cmd:"" help:"Start the API server"`
		Seed    commands.SeedCmd    `cmd:"" help:"Load development fixtures into the store"`
		Migrate commands.MigrateCmd `cmd:"" help:"Run database migrations"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Dev: cli.Dev, Version: version})
	cmd.FatalIfErrorf(err)
}
