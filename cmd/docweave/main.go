package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docweave/cmd/docweave/commands"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Logger: slog.Default()}
	parser := kong.Parse(cli,
		kong.Bind(global),
		kong.Name("docweave"),
		kong.Description("Static documentation builder with snippet transclusion and wikilinks."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)
	err := parser.Run(cli)
	adapter := ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
	os.Exit(adapter.Report(os.Stderr, err))
}
