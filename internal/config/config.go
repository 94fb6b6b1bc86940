// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the project file looked up when no --config flag is given.
const DefaultFile = "swatch.yaml"

// ErrInvalidConfig is wrapped by every validation failure returned from Load.
var ErrInvalidConfig = errors.New("invalid config")

// Source is a directory plus a glob pattern relative to it.
// Patterns support `**` to cross directory boundaries.
type Source struct {
	Root    string `yaml:"root"`
	Pattern string `yaml:"pattern"`
}

// Src groups every input location of a docs build.
type Src struct {
	Index             string   `yaml:"index"`
	ComponentTemplate string   `yaml:"component_template"`
	DemoTemplate      string   `yaml:"demo_template"`
	Partials          Source   `yaml:"partials"`
	Templates         Source   `yaml:"templates"`
	Components        Source   `yaml:"components"`
	MetadataExt       string   `yaml:"metadata_ext"`
	Statics           Source   `yaml:"statics"`
	Styles            []Source `yaml:"styles"`
}

// Dist groups every output location of a docs build.
type Dist struct {
	Base       string `yaml:"base"`
	Static     string `yaml:"static"`
	Components string `yaml:"components"`
	StyleDocs  string `yaml:"styledocs"`
}

// Serve holds settings for the development server.
type Serve struct {
	Port     int           `yaml:"port"`
	Debounce time.Duration `yaml:"debounce"`
	// Watch lists extra files or directories that trigger a rebuild.
	Watch []string `yaml:"watch"`
}

// Config is the parsed swatch.yaml project file.
type Config struct {
	// Package is free-form project information exposed to templates as `pkg`.
	Package        map[string]any `yaml:"package"`
	Timezone       string         `yaml:"timezone"`
	Unsafe         bool           `yaml:"unsafe"`
	EditML         bool           `yaml:"editml"`
	RenderMarkup   bool           `yaml:"render_markup"`
	IncludePrivate bool           `yaml:"include_private"`
	Src            Src            `yaml:"src"`
	Dist           Dist           `yaml:"dist"`
	Serve          Serve          `yaml:"serve"`

	// Path is the file the config was loaded from, empty for Default().
	Path string `yaml:"-"`
}

// Default returns the configuration used for any key the project file omits.
func Default() Config {
	return Config{
		Package:      map[string]any{},
		Timezone:     "Europe/Amsterdam",
		RenderMarkup: true,
		Src: Src{
			Index:             "docs/index.html",
			ComponentTemplate: "docs/component.html",
			DemoTemplate:      "docs/component-demo.html",
			Partials:          Source{Root: "docs/partials", Pattern: "*.html"},
			Templates:         Source{Root: "src/templates", Pattern: "**/*.html"},
			Components:        Source{Root: "src/components", Pattern: "**/*.html"},
			MetadataExt:       ".yml",
			Statics:           Source{Root: "docs/static", Pattern: "**/*"},
			Styles: []Source{
				{Root: "src/scss", Pattern: "**/*.scss"},
			},
		},
		Dist: Dist{
			Base:       "dist/docs",
			Static:     "dist/docs/static",
			Components: "dist/docs/components",
			StyleDocs:  "dist/docs/styledocs",
		},
		Serve: Serve{
			Port:     3000,
			Debounce: 300 * time.Millisecond,
		},
	}
}

// Load reads a project file, overlays it on Default and validates the result.
// Relative paths in the file are resolved against the file's directory.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	cfg.Path = path
	cfg.Rebase(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Rebase joins every relative path in the config onto dir.
func (c *Config) Rebase(dir string) {
	if dir == "" || dir == "." {
		return
	}
	join := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	joinSource := func(s *Source) { join(&s.Root) }

	join(&c.Src.Index)
	join(&c.Src.ComponentTemplate)
	join(&c.Src.DemoTemplate)
	joinSource(&c.Src.Partials)
	joinSource(&c.Src.Templates)
	joinSource(&c.Src.Components)
	joinSource(&c.Src.Statics)
	for i := range c.Src.Styles {
		joinSource(&c.Src.Styles[i])
	}
	join(&c.Dist.Base)
	join(&c.Dist.Static)
	join(&c.Dist.Components)
	join(&c.Dist.StyleDocs)
	for i := range c.Serve.Watch {
		join(&c.Serve.Watch[i])
	}
}

// Validate reports the first problem that would make a build impossible.
func (c Config) Validate() error {
	required := map[string]string{
		"src.index":              c.Src.Index,
		"src.component_template": c.Src.ComponentTemplate,
		"src.demo_template":      c.Src.DemoTemplate,
		"src.components.root":    c.Src.Components.Root,
		"dist.base":              c.Dist.Base,
		"dist.components":        c.Dist.Components,
	}
	for _, key := range sortedKeys(required) {
		if strings.TrimSpace(required[key]) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, key)
		}
	}
	if !strings.HasPrefix(c.Src.MetadataExt, ".") || len(c.Src.MetadataExt) < 2 {
		return fmt.Errorf("%w: src.metadata_ext must look like \".yml\", got %q", ErrInvalidConfig, c.Src.MetadataExt)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("%w: serve.port %d out of range", ErrInvalidConfig, c.Serve.Port)
	}
	if c.Serve.Debounce < 0 {
		return fmt.Errorf("%w: serve.debounce must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Location returns the timezone used for the index build timestamp.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// WatchPaths lists every file or directory the dev server should watch.
func (c Config) WatchPaths() []string {
	paths := []string{
		c.Src.Index,
		c.Src.ComponentTemplate,
		c.Src.DemoTemplate,
		c.Src.Partials.Root,
		c.Src.Templates.Root,
		c.Src.Components.Root,
		c.Src.Statics.Root,
	}
	for _, s := range c.Src.Styles {
		paths = append(paths, s.Root)
	}
	if c.Path != "" {
		paths = append(paths, c.Path)
	}
	paths = append(paths, c.Serve.Watch...)

	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if p == "" || seen[filepath.Clean(p)] {
			continue
		}
		seen[filepath.Clean(p)] = true
		out = append(out, p)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
