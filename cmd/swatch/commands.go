package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"swatch/internal/builder"
	"swatch/internal/component"
	"swatch/internal/config"
	"swatch/internal/logging"
	"swatch/internal/scaffold"
	"swatch/internal/server"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Clean bool `help:"Empty the output directory before building"`
}

func (b *BuildCmd) Run(g *Global, cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	stats, err := builder.Build(cfg, builder.BuildOptions{Clean: b.Clean})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	fmt.Fprintf(g.Out, "Built %d component pages (%d skipped) into %s\n", stats.DocPages, stats.Skipped, cfg.Dist.Base)
	return nil
}

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port int `short:"p" help:"Port to listen on (overrides serve.port)"`
}

func (s *ServeCmd) Run(_ *Global, cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if s.Port > 0 {
		cfg.Serve.Port = s.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	build := func(clean bool) error {
		// Pick up edits to the project file itself; output paths stay fixed.
		next, err := loadConfig(cli.Config)
		if err != nil {
			return err
		}
		next.Dist = cfg.Dist
		_, err = builder.Build(next, builder.BuildOptions{Clean: clean})
		return err
	}

	return server.Run(ctx, server.Options{
		Port:       cfg.Serve.Port,
		Root:       cfg.Dist.Base,
		WatchPaths: cfg.WatchPaths(),
		Debounce:   cfg.Serve.Debounce,
	}, build)
}

// InitCmd implements the 'init' command.
type InitCmd struct {
	Dir string `arg:"" help:"Directory to create the project in"`
}

func (i *InitCmd) Run(g *Global, _ *CLI) error {
	if err := scaffold.CreateProject(i.Dir); err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Project scaffolded. You can now:")
	fmt.Fprintln(g.Out, "  cd", i.Dir)
	fmt.Fprintln(g.Out, "  swatch build")
	fmt.Fprintln(g.Out, "  swatch serve")
	return nil
}

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Markup string `arg:"" help:"Component markup file"`
}

func (r *ResolveCmd) Run(g *Global, cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(cfg.Src.Components.Root)
	if err != nil {
		return err
	}
	markup, err := filepath.Abs(r.Markup)
	if err != nil {
		return err
	}

	resolver := component.NewResolver(component.Options{Root: root, MetadataExt: cfg.Src.MetadataExt})
	res := resolver.Resolve(markup)
	if !res.Resolved() {
		return fmt.Errorf("%s: %w", r.Markup, res.Skip)
	}

	out, err := json.MarshalIndent(res.Descriptor.Data(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, string(out))
	return nil
}

// loadConfig reads the project file. A missing default project file falls
// back to the built-in defaults relative to the working directory.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == config.DefaultFile && errors.Is(err, fs.ErrNotExist) {
		logger := logging.GetLogger("config")
		logger.Info().Str("file", path).Msg("No project file found, using defaults")
		cfg = config.Default()
		return cfg, cfg.Validate()
	}
	return config.Config{}, err
}
