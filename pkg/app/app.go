// Package app wires configuration, router and streams into a runnable
// build: source files are read, routed through one stream per pipeline
// stage and written to the destination directory.
package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/fileroutes/pkg/actions"
	"github.com/arthur-debert/fileroutes/pkg/config"
	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/logging"
	"github.com/arthur-debert/fileroutes/pkg/router"
	"github.com/arthur-debert/fileroutes/pkg/routes"
	"github.com/arthur-debert/fileroutes/pkg/stream"
	"github.com/arthur-debert/fileroutes/pkg/types"
	"github.com/arthur-debert/fileroutes/pkg/vfs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// App holds a configured router and the filesystem it builds on
type App struct {
	cfg      *config.Config
	fs       afero.Fs
	router   *router.Router
	observer routes.Observer
	logger   zerolog.Logger
}

// Option configures an App
type Option func(*App)

// WithObserver reports every dispatch to o
func WithObserver(o routes.Observer) Option {
	return func(a *App) { a.observer = o }
}

// WithLogger replaces the component logger
func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// Result summarises one Run
type Result struct {
	RunID    string
	Read     int
	Written  int
	Failed   int
	Paths    []string
	Errors   []error
	Duration time.Duration
}

// New builds the router described by cfg
func New(cfg *config.Config, fsys afero.Fs, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrInvalidInput, "configuration is required")
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	a := &App{
		cfg:    cfg,
		fs:     fsys,
		logger: logging.GetLogger("app"),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.router = router.New(router.WithMethods(cfg.Methods...), router.WithLogger(a.logger))
	for i, rt := range cfg.Routes {
		if err := a.addRoute(rt); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "route %d", i).
				WithDetail("index", i).
				WithDetail("action", rt.Action)
		}
	}
	a.logger.Debug().Int("routes", len(cfg.Routes)).Strs("methods", a.router.Methods()).Msg("Router built")
	return a, nil
}

func (a *App) addRoute(rt config.Route) error {
	handler, err := actions.Build(rt.Action, rt.Options)
	if err != nil {
		return err
	}
	pattern, err := router.Compile(rt.Pattern)
	if err != nil {
		return err
	}
	if rt.Method == "" || rt.Method == router.MethodAll {
		a.router.All(pattern, handler)
		return nil
	}
	return a.router.Handle(rt.Method, pattern, handler)
}

// Router returns the router streams bind to
func (a *App) Router() routes.Dispatcher {
	return a.router
}

// Routes lists the registered route layers
func (a *App) Routes() []router.RouteInfo {
	return a.router.Routes()
}

// Config returns the configuration the app was built from
func (a *App) Config() *config.Config {
	return a.cfg
}

// Run reads the source tree, pushes every file through the pipeline
// stages and writes the survivors. Per-file failures are reported in the
// Result; the error is only set when the run could not start or was
// cancelled.
func (a *App) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	logger := a.logger.With().Str("run", res.RunID).Logger()
	logger.Info().Str("source", a.cfg.SourceDir()).Str("dest", a.cfg.DestDir()).Msg("Run started")

	rts, err := routes.FromHolder(a, routes.WithObserver(a.observer), routes.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	src, err := vfs.Src(ctx, a.fs, a.cfg.SourceDir(), a.cfg.Source.Patterns)
	if err != nil {
		return nil, err
	}

	var read atomic.Int64
	counter := stream.New(ctx, func(_ context.Context, f *types.File) (*types.File, error) {
		read.Add(1)
		return f, nil
	}, stream.WithName("read"))

	stages := []*stream.Stream{src, counter}
	newStage := rts.Factory()
	pipeline := a.cfg.Pipeline
	if len(pipeline) == 0 {
		pipeline = []string{routes.DefaultMethod}
	}
	for _, method := range pipeline {
		stages = append(stages, newStage(ctx, method))
	}
	for i := 0; i < len(stages)-1; i++ {
		stages[i].Pipe(stages[i+1])
	}

	dest := vfs.Dest(a.fs, a.cfg.DestDir())
	stages[len(stages)-1].PipeTo(dest)

	paths, _ := dest.Wait()
	for _, s := range stages {
		<-s.Done()
		res.Errors = append(res.Errors, s.Failures()...)
	}
	res.Errors = append(res.Errors, dest.Errors()...)

	res.Paths = paths
	res.Read = int(read.Load())
	res.Written = len(paths)
	res.Failed = len(res.Errors)
	res.Duration = time.Since(start)

	for _, e := range res.Errors {
		logger.Debug().Err(e).Msg("File failed")
	}
	logger.Info().
		Int("read", res.Read).
		Int("written", res.Written).
		Int("failed", res.Failed).
		Dur("duration", res.Duration).
		Msg("Run finished")

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}
