// Package discover expands `**`-capable glob sources into file lists.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"swatch/internal/config"
)

// Glob returns every regular file below root whose slash-separated relative
// path matches pattern. Results are root-joined and in lexical walk order.
// A missing root yields no files and no error.
func Glob(root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "**"
	}
	g, err := compile(pattern)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("glob root %s is not a directory", root)
	}

	var matches []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if g.Match(filepath.ToSlash(rel)) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return matches, nil
}

// matcher matches a path against any of several compiled globs.
type matcher []glob.Glob

func (m matcher) Match(path string) bool {
	for _, g := range m {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// compile builds a matcher where every "**/" may also match zero
// directories, so "**/*.html" matches "card.html" at the root.
func compile(pattern string) (matcher, error) {
	variants := []string{pattern}
	for i := 0; i < len(variants); i++ {
		v := variants[i]
		if idx := strings.Index(v, "**/"); idx >= 0 {
			variants[i] = v[:idx] + "\x00" + v[idx+3:]
			variants = append(variants, v[:idx]+v[idx+3:])
			i--
		}
	}

	m := make(matcher, 0, len(variants))
	for _, v := range variants {
		g, err := glob.Compile(strings.ReplaceAll(v, "\x00", "**/"), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		m = append(m, g)
	}
	return m, nil
}

// Source is Glob applied to a configured source.
func Source(src config.Source) ([]string, error) {
	return Glob(src.Root, src.Pattern)
}

// Relative rewrites paths as slash-separated paths relative to root.
func Relative(root string, paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil, err
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out, nil
}
