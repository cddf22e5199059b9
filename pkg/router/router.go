package router

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/logging"
	"github.com/arthur-debert/fileroutes/pkg/registry"
	"github.com/arthur-debert/fileroutes/pkg/types"
	"github.com/rs/zerolog"
)

// MethodAll is the catch-all method name
const MethodAll = "all"

var (
	// SkipRoute skips the remaining handlers of the current route
	SkipRoute = stderrors.New("router: skip route")

	// Halt ends a dispatch successfully without running further layers
	Halt = stderrors.New("router: halt")
)

// Handler processes a file. It may mutate the file in place.
type Handler func(ctx context.Context, f *types.File) error

// ErrorHandler runs while an error is pending. Returning nil recovers;
// returning an error replaces the pending one.
type ErrorHandler func(ctx context.Context, f *types.File, err error) error

// Method describes a registered method
type Method struct {
	Name    string
	Builtin bool
}

type layerKind int

const (
	kindMiddleware layerKind = iota
	kindRoute
	kindError
)

func (k layerKind) String() string {
	switch k {
	case kindMiddleware:
		return "use"
	case kindError:
		return "error"
	default:
		return "route"
	}
}

type layer struct {
	kind       layerKind
	method     string
	pattern    Pattern
	handlers   []Handler
	errHandler ErrorHandler
}

func (l *layer) appliesTo(method string) bool {
	return l.kind == kindMiddleware || l.method == MethodAll || l.method == method
}

// RouteInfo describes one registered layer
type RouteInfo struct {
	Kind     string
	Method   string
	Pattern  string
	Handlers int
}

// Router dispatches files through ordered layers of handlers
type Router struct {
	mu      sync.RWMutex
	methods registry.Registry[Method]
	stack   []*layer
	logger  zerolog.Logger
}

// Option configures a Router
type Option func(*Router)

// WithMethods declares methods in addition to "all"
func WithMethods(names ...string) Option {
	return func(r *Router) {
		for _, name := range names {
			if err := r.AddMethod(name); err != nil {
				r.logger.Warn().Err(err).Str("method", name).Msg("Method ignored")
			}
		}
	}
}

// WithLogger replaces the router logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// New creates a Router with the catch-all method registered
func New(opts ...Option) *Router {
	r := &Router{
		methods: registry.New[Method](),
		logger:  logging.GetLogger("router"),
	}
	registry.MustRegister(r.methods, MethodAll, Method{Name: MethodAll, Builtin: true})
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddMethod declares a method. Declaring an existing method is an error.
func (r *Router) AddMethod(name string) error {
	if err := r.methods.Register(name, Method{Name: name}); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "cannot add method %q", name)
	}
	return nil
}

// HasMethod reports whether name is a registered method
func (r *Router) HasMethod(name string) bool {
	return r.methods.Has(name)
}

// Methods returns the registered method names in declaration order
func (r *Router) Methods() []string {
	return r.methods.List()
}

// Use registers middleware that runs on every dispatch
func (r *Router) Use(handlers ...Handler) {
	hs := nonNil(handlers)
	if len(hs) == 0 {
		return
	}
	r.push(&layer{kind: kindMiddleware, pattern: Any(), handlers: hs})
}

// UseError registers error middleware
func (r *Router) UseError(handler ErrorHandler) {
	if handler == nil {
		return
	}
	r.push(&layer{kind: kindError, pattern: Any(), errHandler: handler})
}

// All registers a route that runs for every method
func (r *Router) All(p Pattern, handlers ...Handler) {
	// "all" is always registered, so Handle cannot fail on the method.
	_ = r.Handle(MethodAll, p, handlers...)
}

// Handle registers a route for one method
func (r *Router) Handle(method string, p Pattern, handlers ...Handler) error {
	if method == "" {
		method = MethodAll
	}
	if !r.methods.Has(method) {
		return errors.Newf(errors.ErrUnknownMethod, "method %q is not registered", method).
			WithDetail("method", method)
	}
	if p == nil {
		return errors.New(errors.ErrInvalidInput, "route pattern cannot be nil")
	}
	hs := nonNil(handlers)
	if len(hs) == 0 {
		return errors.Newf(errors.ErrInvalidInput, "route %s %s has no handlers", method, p)
	}
	r.push(&layer{kind: kindRoute, method: method, pattern: p, handlers: hs})
	return nil
}

// HandleExpr compiles expr with Compile and registers the route
func (r *Router) HandleExpr(method, expr string, handlers ...Handler) error {
	p, err := Compile(expr)
	if err != nil {
		return err
	}
	return r.Handle(method, p, handlers...)
}

// MethodRoutes registers routes for a single method
type MethodRoutes struct {
	router *Router
	method string
}

// On returns a helper bound to method
func (r *Router) On(method string) *MethodRoutes {
	return &MethodRoutes{router: r, method: method}
}

// Handle registers a route for the bound method
func (m *MethodRoutes) Handle(p Pattern, handlers ...Handler) error {
	return m.router.Handle(m.method, p, handlers...)
}

// Routes lists the registered layers in order
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RouteInfo, 0, len(r.stack))
	for _, l := range r.stack {
		info := RouteInfo{
			Kind:     l.kind.String(),
			Method:   l.method,
			Pattern:  l.pattern.String(),
			Handlers: len(l.handlers),
		}
		if l.kind == kindError {
			info.Handlers = 1
		}
		out = append(out, info)
	}
	return out
}

// Dispatch runs f through every layer that applies to method.
// An empty method dispatches as "all".
func (r *Router) Dispatch(ctx context.Context, f *types.File, method string) error {
	if method == "" {
		method = MethodAll
	}
	if !r.methods.Has(method) {
		return errors.Newf(errors.ErrUnknownMethod, "method %q is not registered", method).
			WithDetail("method", method)
	}
	if f == nil {
		return errors.New(errors.ErrInvalidInput, "cannot dispatch a nil file")
	}

	r.mu.RLock()
	stack := r.stack
	r.mu.RUnlock()

	p := f.SlashPath()
	var pending error

	for _, l := range stack {
		if err := ctx.Err(); err != nil {
			return err
		}

		if l.kind == kindError {
			if pending != nil {
				pending = l.errHandler(ctx, f, pending)
			}
			continue
		}
		if pending != nil || !l.appliesTo(method) {
			continue
		}

		params, ok := l.pattern.Match(p)
		if !ok {
			continue
		}

		r.logger.Trace().
			Str("path", p).
			Str("method", method).
			Str("layer", l.kind.String()).
			Str("pattern", l.pattern.String()).
			Msg("Layer matched")

		lctx := withParams(ctx, params)
		for _, h := range l.handlers {
			err := h(lctx, f)
			if err == nil {
				continue
			}
			if stderrors.Is(err, SkipRoute) {
				break
			}
			if stderrors.Is(err, Halt) {
				return nil
			}
			pending = err
			break
		}
	}

	return pending
}

func (r *Router) push(l *layer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy on write so that running dispatches keep their snapshot.
	stack := make([]*layer, len(r.stack), len(r.stack)+1)
	copy(stack, r.stack)
	r.stack = append(stack, l)
}

func nonNil(handlers []Handler) []Handler {
	out := make([]Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
