package routes

import (
	"context"
	"reflect"
	"time"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/logging"
	"github.com/arthur-debert/fileroutes/pkg/router"
	"github.com/arthur-debert/fileroutes/pkg/stream"
	"github.com/arthur-debert/fileroutes/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultMethod is used when a stream is created without a method name
const DefaultMethod = router.MethodAll

// Dispatcher runs a file through the handlers registered for method
type Dispatcher interface {
	Dispatch(ctx context.Context, f *types.File, method string) error
}

// DispatcherFunc adapts a function to Dispatcher
type DispatcherFunc func(ctx context.Context, f *types.File, method string) error

// Dispatch implements Dispatcher
func (fn DispatcherFunc) Dispatch(ctx context.Context, f *types.File, method string) error {
	return fn(ctx, f, method)
}

// Holder is a value carrying a router, such as an application
type Holder interface {
	Router() Dispatcher
}

// Observer is notified after every dispatch
type Observer interface {
	ObserveDispatch(method string, elapsed time.Duration, err error)
}

// Factory creates a stream for the optional method name
type Factory func(ctx context.Context, method ...string) *stream.Stream

// Option configures Routes
type Option func(*Routes)

// WithLogger replaces the adapter logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Routes) { r.logger = logger }
}

// WithObserver reports every dispatch to o
func WithObserver(o Observer) Option {
	return func(r *Routes) { r.observer = o }
}

// WithBuffer sets the buffer size of created streams
func WithBuffer(n int) Option {
	return func(r *Routes) { r.buffer = n }
}

// Routes creates dispatching streams bound to one router
type Routes struct {
	dispatcher Dispatcher
	logger     zerolog.Logger
	observer   Observer
	buffer     int
}

// Resolve picks the router to use: explicit when present, otherwise the
// one carried by holder. Typed nil values count as absent.
func Resolve(explicit Dispatcher, holder Holder) (Dispatcher, error) {
	if !isNil(explicit) {
		return explicit, nil
	}
	if !isNil(holder) {
		if d := holder.Router(); !isNil(d) {
			return d, nil
		}
	}
	return nil, errors.New(errors.ErrNoRouter, "a router is required: pass one or use a holder that carries one")
}

// New binds the adapter to d. It fails when d is nil.
func New(d Dispatcher, opts ...Option) (*Routes, error) {
	return Bind(d, nil, opts...)
}

// FromHolder binds the adapter to the router carried by h
func FromHolder(h Holder, opts ...Option) (*Routes, error) {
	return Bind(nil, h, opts...)
}

// Bind binds the adapter to explicit, falling back to the router carried
// by h. Resolution happens now, so a missing router is reported before any
// stream is created.
func Bind(explicit Dispatcher, h Holder, opts ...Option) (*Routes, error) {
	d, err := Resolve(explicit, h)
	if err != nil {
		return nil, err
	}

	r := &Routes{
		dispatcher: d,
		logger:     logging.GetLogger("routes"),
		buffer:     stream.DefaultBuffer,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Dispatcher returns the bound router
func (r *Routes) Dispatcher() Dispatcher { return r.dispatcher }

// Stream returns a transform stream dispatching each file under method.
// An empty method means DefaultMethod.
func (r *Routes) Stream(ctx context.Context, method string) *stream.Stream {
	if method == "" {
		method = DefaultMethod
	}
	logger := r.logger.With().Str("method", method).Logger()

	return stream.New(ctx, func(ctx context.Context, f *types.File) (*types.File, error) {
		start := time.Now()
		err := r.dispatcher.Dispatch(ctx, f, method)
		if r.observer != nil {
			r.observer.ObserveDispatch(method, time.Since(start), err)
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrDispatch, "routing %s", f.Relative()).
				WithDetail("path", f.Path).
				WithDetail("method", method)
		}

		logger.Trace().Str("path", f.Path).Dur("elapsed", time.Since(start)).Msg("File routed")
		return f, nil
	},
		stream.WithName("routes:"+method),
		stream.WithBuffer(r.buffer),
		stream.WithLogger(logger),
	)
}

// Factory returns the stream factory in its optional-argument form. Only
// the first method name is used.
func (r *Routes) Factory() Factory {
	return func(ctx context.Context, method ...string) *stream.Stream {
		m := ""
		if len(method) > 0 {
			m = method[0]
		}
		return r.Stream(ctx, m)
	}
}

// Pipeline creates one stream per method, pipes them in order and returns
// the first and last stage. With no methods it is a single DefaultMethod
// stage.
func (r *Routes) Pipeline(ctx context.Context, methods ...string) (head, tail *stream.Stream) {
	if len(methods) == 0 {
		methods = []string{DefaultMethod}
	}
	head = r.Stream(ctx, methods[0])
	tail = head
	for _, m := range methods[1:] {
		tail = tail.Pipe(r.Stream(ctx, m))
	}
	return head, tail
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
