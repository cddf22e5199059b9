package config

import (
	"path/filepath"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/router"
)

// Config is the complete fileroutes configuration
type Config struct {
	Source   Source   `koanf:"source"`
	Dest     Dest     `koanf:"dest"`
	Methods  []string `koanf:"methods"`
	Pipeline []string `koanf:"pipeline"`
	Routes   []Route  `koanf:"routes"`

	// Root is the directory relative paths are resolved against
	Root string `koanf:"-"`
}

// Source selects the input files
type Source struct {
	Dir      string   `koanf:"dir"`
	Patterns []string `koanf:"patterns"`
}

// Dest is where processed files are written
type Dest struct {
	Dir string `koanf:"dir"`
}

// Route binds an action to a method and path pattern
type Route struct {
	Method  string                 `koanf:"method"`
	Pattern string                 `koanf:"pattern"`
	Action  string                 `koanf:"action"`
	Options map[string]interface{} `koanf:"options"`
}

// SourceDir returns the source directory resolved against Root
func (c *Config) SourceDir() string {
	return c.resolve(c.Source.Dir)
}

// DestDir returns the destination directory resolved against Root
func (c *Config) DestDir() string {
	return c.resolve(c.Dest.Dir)
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) || c.Root == "" {
		return dir
	}
	return filepath.Join(c.Root, dir)
}

// Validate checks that stages and routes only use known methods and that
// every route is complete.
func (c *Config) Validate() error {
	if c.Source.Dir == "" {
		return errors.New(errors.ErrConfigValid, "source.dir is required")
	}
	if c.Dest.Dir == "" {
		return errors.New(errors.ErrConfigValid, "dest.dir is required")
	}

	known := map[string]bool{router.MethodAll: true}
	for _, m := range c.Methods {
		if m == "" {
			return errors.New(errors.ErrConfigValid, "method names cannot be empty")
		}
		if m == router.MethodAll {
			return errors.Newf(errors.ErrConfigValid, "method %q is built in and cannot be declared", m)
		}
		if known[m] {
			return errors.Newf(errors.ErrConfigValid, "method %q is declared twice", m).
				WithDetail("method", m)
		}
		known[m] = true
	}

	for i, stage := range c.Pipeline {
		if !known[stage] {
			return errors.Newf(errors.ErrConfigValid, "pipeline stage %q is not a declared method", stage).
				WithDetail("index", i)
		}
	}

	for i, r := range c.Routes {
		if r.Pattern == "" || r.Action == "" {
			return errors.Newf(errors.ErrConfigValid, "route %d needs both pattern and action", i).
				WithDetail("index", i)
		}
		if r.Method != "" && !known[r.Method] {
			return errors.Newf(errors.ErrConfigValid, "route %d uses undeclared method %q", i, r.Method).
				WithDetail("index", i).
				WithDetail("method", r.Method)
		}
		if _, err := router.Compile(r.Pattern); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "route %d has an invalid pattern", i).
				WithDetail("index", i)
		}
	}
	return nil
}
