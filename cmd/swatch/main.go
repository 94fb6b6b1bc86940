// cmd/swatch/main.go
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"swatch/internal/config"
	"swatch/internal/logging"
)

// Global is passed to every command's Run method.
type Global struct {
	Out io.Writer
}

// CLI is the root of the command tree.
type CLI struct {
	Config  string `short:"c" help:"Project file path" default:"${config_file}"`
	Verbose int    `short:"v" type:"counter" help:"Increase log verbosity (-v info, -vv debug, -vvv trace)"`

	Build   BuildCmd   `cmd:"" help:"Build the documentation site"`
	Serve   ServeCmd   `cmd:"" help:"Serve the docs with rebuild on change and live reload"`
	Init    InitCmd    `cmd:"" help:"Scaffold a new component library"`
	Resolve ResolveCmd `cmd:"" help:"Print the descriptor of one component markup file"`
}

// AfterApply runs after flag parsing and configures logging once.
func (c *CLI) AfterApply() error {
	logging.SetupLogger(c.Verbose)
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("Operation failed")
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("swatch"),
		kong.Description("Builds a documentation site for a library of HTML components."),
		kong.UsageOnError(),
		kong.Vars{"config_file": config.DefaultFile},
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&Global{Out: out}, &cli)
}
