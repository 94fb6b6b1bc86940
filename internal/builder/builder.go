// internal/builder/builder.go
package builder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"swatch/internal/component"
	"swatch/internal/config"
	"swatch/internal/discover"
	"swatch/internal/logging"
	"swatch/internal/markdown"
	"swatch/internal/styledoc"
)

type BuildOptions struct {
	// Clean empties dist.base before building.
	Clean bool
	// Now stamps the index page; defaults to time.Now.
	Now func() time.Time
}

// Stats summarizes one build.
type Stats struct {
	Statics    int
	Templates  int
	Components int
	Resolved   int
	Skipped    int
	DocPages   int
	DemoPages  int
	StyleItems int
}

// Site runs the stages of a docs build against one configuration.
type Site struct {
	cfg      config.Config
	opts     BuildOptions
	resolver *component.Resolver
	md       *markdown.Renderer
	log      zerolog.Logger
}

// New prepares a Site. Nothing is read from disk until a stage runs.
func New(cfg config.Config, opts BuildOptions) *Site {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Site{
		cfg:  cfg,
		opts: opts,
		resolver: component.NewResolver(component.Options{
			Root:        cfg.Src.Components.Root,
			MetadataExt: cfg.Src.MetadataExt,
		}),
		md:  markdown.New(markdown.Options{Unsafe: cfg.Unsafe, EditML: cfg.EditML}),
		log: logging.GetLogger("builder"),
	}
}

// Build runs every stage in order and stops at the first failure.
func Build(cfg config.Config, opts BuildOptions) (Stats, error) {
	return New(cfg, opts).Build()
}

// Build runs every stage in order and stops at the first failure.
func (s *Site) Build() (Stats, error) {
	done := logging.LogOperationStart(s.log, "build")
	defer done()

	var stats Stats
	if err := os.MkdirAll(s.cfg.Dist.Base, 0755); err != nil {
		return stats, err
	}
	if s.opts.Clean {
		if err := cleanDir(s.cfg.Dist.Base); err != nil {
			return stats, fmt.Errorf("failed to clean %s: %w", s.cfg.Dist.Base, err)
		}
	}

	var err error
	if stats.Statics, err = s.CopyStatics(); err != nil {
		return stats, fmt.Errorf("copy statics: %w", err)
	}

	idx, err := s.RenderIndex()
	if err != nil {
		return stats, fmt.Errorf("render index: %w", err)
	}
	stats.Templates = idx.Templates
	stats.Components = idx.Components
	stats.Resolved = idx.Resolved
	stats.Skipped = idx.Components - idx.Resolved

	if stats.DocPages, err = s.RenderComponents(); err != nil {
		return stats, fmt.Errorf("render components: %w", err)
	}
	if stats.DemoPages, err = s.RenderDemos(); err != nil {
		return stats, fmt.Errorf("render component demos: %w", err)
	}
	if stats.StyleItems, err = s.RenderStyleDocs(); err != nil {
		return stats, fmt.Errorf("render style docs: %w", err)
	}

	s.log.Info().
		Int("components", stats.Components).
		Int("resolved", stats.Resolved).
		Int("skipped", stats.Skipped).
		Int("statics", stats.Statics).
		Int("style_items", stats.StyleItems).
		Msg("Build complete")
	return stats, nil
}

// CopyStatics mirrors the statics source into dist.static.
func (s *Site) CopyStatics() (int, error) {
	if s.cfg.Dist.Static == "" {
		return 0, nil
	}
	files, err := discover.Source(s.cfg.Src.Statics)
	if err != nil {
		return 0, err
	}
	for _, path := range files {
		rel, err := filepath.Rel(s.cfg.Src.Statics.Root, path)
		if err != nil {
			return 0, err
		}
		if err := copyFile(path, filepath.Join(s.cfg.Dist.Static, rel)); err != nil {
			return 0, fmt.Errorf("failed to copy %s: %w", path, err)
		}
	}
	return len(files), nil
}

// RenderStyleDocs extracts stylesheet documentation into dist.styledocs.
func (s *Site) RenderStyleDocs() (int, error) {
	if s.cfg.Dist.StyleDocs == "" || len(s.cfg.Src.Styles) == 0 {
		return 0, nil
	}
	var files []styledoc.File
	seen := make(map[string]bool)
	for _, src := range s.cfg.Src.Styles {
		paths, err := discover.Source(src)
		if err != nil {
			return 0, err
		}
		names, err := discover.Relative(src.Root, paths)
		if err != nil {
			return 0, err
		}
		for i, p := range paths {
			if seen[p] {
				continue
			}
			seen[p] = true
			files = append(files, styledoc.File{Path: p, Name: names[i]})
		}
	}
	return styledoc.Generate(files, s.cfg.Dist.StyleDocs, styledoc.Options{
		IncludePrivate: s.cfg.IncludePrivate,
		Markdown:       s.md,
		Package:        s.cfg.Package,
		Now:            s.opts.Now,
	})
}

// components discovers markup files and resolves each one. Every consumer
// calls it independently and drops unresolved results the same way.
func (s *Site) components() ([]component.Result, error) {
	paths, err := discover.Source(s.cfg.Src.Components)
	if err != nil {
		return nil, err
	}
	results := s.resolver.ResolveAll(paths)
	for _, res := range results {
		if !res.Resolved() {
			s.log.Debug().
				Str("markup", res.MarkupPath).
				Err(res.Skip).
				Msg("Skipping component")
		}
	}
	return results, nil
}

func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(srcPath, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
