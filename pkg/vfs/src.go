package vfs

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/logging"
	"github.com/arthur-debert/fileroutes/pkg/router"
	"github.com/arthur-debert/fileroutes/pkg/stream"
	"github.com/arthur-debert/fileroutes/pkg/types"
	"github.com/spf13/afero"
)

// Glob selects files relative to the source base. A leading "!" excludes.
type Glob struct {
	include []router.Pattern
	exclude []router.Pattern
}

// ParseGlobs compiles include and "!"-prefixed exclude patterns. No
// include pattern means every file.
func ParseGlobs(patterns []string) (*Glob, error) {
	g := &Glob{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		exclude := strings.HasPrefix(p, "!")
		compiled, err := router.Compile(strings.TrimPrefix(p, "!"))
		if err != nil {
			return nil, err
		}
		if exclude {
			g.exclude = append(g.exclude, compiled)
		} else {
			g.include = append(g.include, compiled)
		}
	}
	return g, nil
}

// Match reports whether the slash-separated relative path is selected
func (g *Glob) Match(rel string) bool {
	for _, p := range g.exclude {
		if _, ok := p.Match(rel); ok {
			return false
		}
	}
	if len(g.include) == 0 {
		return true
	}
	for _, p := range g.include {
		if _, ok := p.Match(rel); ok {
			return true
		}
	}
	return false
}

// List walks base and returns the relative paths of selected regular
// files in lexical order.
func List(fsys afero.Fs, base string, g *Glob) ([]string, error) {
	var matches []string
	err := afero.Walk(fsys, base, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if g.Match(rel) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "listing %s", base)
	}
	sort.Strings(matches)
	return matches, nil
}

// Src lists the files under base selected by patterns and returns a
// stream emitting them, ended after the last one. Listing errors are
// returned immediately; read errors are reported on the stream.
func Src(ctx context.Context, fsys afero.Fs, base string, patterns []string, opts ...stream.Option) (*stream.Stream, error) {
	logger := logging.GetLogger("vfs.src")

	g, err := ParseGlobs(patterns)
	if err != nil {
		return nil, err
	}
	rels, err := List(fsys, base, g)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("base", base).Int("files", len(rels)).Msg("Source files listed")

	cwd, _ := filepath.Abs(".")
	opts = append([]stream.Option{stream.WithName("src")}, opts...)
	s := stream.New(ctx, func(_ context.Context, f *types.File) (*types.File, error) {
		return load(fsys, f)
	}, opts...)

	go func() {
		defer s.End()
		for _, rel := range rels {
			f := types.NewFile(cwd, base, filepath.Join(base, filepath.FromSlash(rel)), nil)
			if err := s.Write(f); err != nil {
				return
			}
		}
	}()
	return s, nil
}

func load(fsys afero.Fs, f *types.File) (*types.File, error) {
	info, err := fsys.Stat(f.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "stat %s", f.Path)
	}
	contents, err := afero.ReadFile(fsys, f.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "read %s", f.Path)
	}
	f.Contents = contents
	f.Mode = info.Mode().Perm()
	f.ModTime = info.ModTime()
	return f, nil
}
