package stream

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/logging"
	"github.com/arthur-debert/fileroutes/pkg/types"
	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"
)

// DefaultBuffer is the number of files buffered on each side of a stream
const DefaultBuffer = 16

// errorBuffer bounds the Errors channel; further errors are only recorded
const errorBuffer = 64

// TransformFunc processes one file. Returning a nil file with a nil error
// drops the file.
type TransformFunc func(ctx context.Context, f *types.File) (*types.File, error)

// Sink is the capability set a pipeline stage needs from its destination
type Sink interface {
	// Accept takes one file, blocking while the sink is full
	Accept(f *types.File) error
	// Complete signals that no more files will be accepted
	Complete()
	// Fail aborts the sink with err
	Fail(err error)
}

// Option configures a Stream
type Option func(*Stream)

// WithBuffer sets the input and output buffer size
func WithBuffer(n int) Option {
	return func(s *Stream) {
		if n >= 0 {
			s.buffer = n
		}
	}
}

// WithName names the stream in logs
func WithName(name string) Option {
	return func(s *Stream) { s.name = name }
}

// WithErrorHandler registers a callback run by the worker for each failed item
func WithErrorHandler(fn func(f *types.File, err error)) Option {
	return func(s *Stream) { s.onError = fn }
}

// WithLogger replaces the stream logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Stream) { s.logger = logger }
}

// Stream is an object-mode transform stream
type Stream struct {
	name    string
	buffer  int
	fn      TransformFunc
	onError func(*types.File, error)
	logger  zerolog.Logger

	t   *tomb.Tomb
	ctx context.Context

	in   chan *types.File
	out  chan *types.File
	errs chan error

	mu    sync.RWMutex
	ended bool

	failMu   sync.Mutex
	failures []error
}

// New starts a stream applying fn to every written file. Cancelling ctx
// stops the stream.
func New(ctx context.Context, fn TransformFunc, opts ...Option) *Stream {
	if fn == nil {
		fn = Identity
	}
	s := &Stream{
		name:   "stream",
		buffer: DefaultBuffer,
		fn:     fn,
		logger: logging.GetLogger("stream"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("stream", s.name).Logger()

	s.in = make(chan *types.File, s.buffer)
	s.out = make(chan *types.File, s.buffer)
	s.errs = make(chan error, errorBuffer)

	s.t, s.ctx = tomb.WithContext(ctx)
	s.t.Go(s.run)
	return s
}

// Identity forwards every file unchanged
func Identity(_ context.Context, f *types.File) (*types.File, error) {
	return f, nil
}

// Name returns the stream name
func (s *Stream) Name() string { return s.name }

// Write queues f for processing. It blocks while the input buffer is full
// and fails once the stream was ended or has stopped.
func (s *Stream) Write(f *types.File) error {
	if f == nil {
		return errors.New(errors.ErrInvalidInput, "cannot write a nil file")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ended {
		return errors.Newf(errors.ErrStreamClosed, "write after end on %s", s.name)
	}
	select {
	case s.in <- f:
		return nil
	case <-s.t.Dying():
		return errors.Newf(errors.ErrStreamClosed, "write on stopped stream %s", s.name)
	}
}

// End signals that no more files will be written. Calling End more than
// once is harmless.
func (s *Stream) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.ended = true
	close(s.in)
}

// Accept implements Sink
func (s *Stream) Accept(f *types.File) error { return s.Write(f) }

// Complete implements Sink
func (s *Stream) Complete() { s.End() }

// Fail stops the stream with err. Buffered and future files are dropped.
func (s *Stream) Fail(err error) {
	if err == nil {
		err = errors.Newf(errors.ErrStreamClosed, "stream %s failed", s.name)
	}
	s.t.Kill(err)
}

// Output returns the channel of processed files. It is closed once the
// stream finished. A stream has a single consumer: read Output or Pipe,
// not both.
func (s *Stream) Output() <-chan *types.File { return s.out }

// Errors returns the channel of per-item errors. It is closed once the
// stream finished.
func (s *Stream) Errors() <-chan error { return s.errs }

// Done is closed once the worker exited
func (s *Stream) Done() <-chan struct{} { return s.t.Dead() }

// Wait blocks until the stream finished and returns the stop cause joined
// with every per-item error, or nil.
func (s *Stream) Wait() error {
	<-s.t.Dead()

	var all []error
	if err := s.t.Err(); err != nil {
		all = append(all, err)
	}

	s.failMu.Lock()
	all = append(all, s.failures...)
	s.failMu.Unlock()

	return stderrors.Join(all...)
}

// Failures returns the per-item errors recorded so far
func (s *Stream) Failures() []error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return append([]error(nil), s.failures...)
}

// Pipe forwards this stream's output into dst, ends dst when this stream
// finishes and returns dst for chaining.
func (s *Stream) Pipe(dst *Stream) *Stream {
	s.PipeTo(dst)
	return dst
}

// PipeTo forwards this stream's output into any Sink. When the sink
// rejects a file the rest of the output is drained and discarded so that
// this stream can finish.
func (s *Stream) PipeTo(dst Sink) {
	go func() {
		rejected := false
		for f := range s.out {
			if rejected {
				continue
			}
			if err := dst.Accept(f); err != nil {
				s.logger.Debug().Err(err).Msg("Pipe destination rejected file, draining")
				rejected = true
			}
		}
		dst.Complete()
	}()
}

func (s *Stream) run() error {
	defer close(s.errs)
	defer close(s.out)

	for {
		select {
		case <-s.t.Dying():
			return tomb.ErrDying
		case f, ok := <-s.in:
			if !ok {
				s.logger.Trace().Msg("Stream input ended")
				return nil
			}

			result, err := s.fn(s.ctx, f)
			if err != nil {
				s.report(f, err)
				continue
			}
			if result == nil {
				continue
			}

			select {
			case s.out <- result:
			case <-s.t.Dying():
				return tomb.ErrDying
			}
		}
	}
}

func (s *Stream) report(f *types.File, err error) {
	s.failMu.Lock()
	s.failures = append(s.failures, err)
	s.failMu.Unlock()

	if s.onError != nil {
		s.onError(f, err)
	}

	select {
	case s.errs <- err:
	default:
	}
}
