package vfs

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/logging"
	"github.com/arthur-debert/fileroutes/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Writer is a stream sink writing every accepted file below a directory,
// at the file's path relative to its base.
type Writer struct {
	fs     afero.Fs
	dir    string
	logger zerolog.Logger

	mu      sync.Mutex
	written []string
	errs    []error
	cause   error
	closed  bool
	done    chan struct{}
}

// Dest creates a Writer targeting dir on fsys
func Dest(fsys afero.Fs, dir string) *Writer {
	return &Writer{
		fs:     fsys,
		dir:    dir,
		logger: logging.GetLogger("vfs.dest"),
		done:   make(chan struct{}),
	}
}

// Accept writes f. A write failure is recorded and does not stop later
// files.
func (w *Writer) Accept(f *types.File) error {
	target := filepath.Join(w.dir, filepath.FromSlash(f.Relative()))

	err := w.write(target, f)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.errs = append(w.errs, err)
		w.logger.Debug().Err(err).Str("path", target).Msg("Write failed")
		return nil
	}
	w.written = append(w.written, target)
	return nil
}

func (w *Writer) write(target string, f *types.File) error {
	if err := w.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "create directory for %s", target)
	}
	mode := f.Mode
	if mode == 0 {
		mode = 0644
	}
	if err := afero.WriteFile(w.fs, target, f.Contents, mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "write %s", target)
	}
	if !f.ModTime.IsZero() {
		// Best effort: MemMapFs and some remote backends ignore it.
		_ = w.fs.Chtimes(target, f.ModTime, f.ModTime)
	}
	return nil
}

// Complete implements stream.Sink
func (w *Writer) Complete() { w.finish(nil) }

// Fail implements stream.Sink
func (w *Writer) Fail(err error) {
	if err == nil {
		err = os.ErrClosed
	}
	w.finish(err)
}

func (w *Writer) finish(cause error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.cause = cause
	close(w.done)
}

// Wait blocks until the writer completed and returns the written paths
// and the joined write errors.
func (w *Writer) Wait() ([]string, error) {
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	all := append([]error(nil), w.errs...)
	if w.cause != nil {
		all = append([]error{w.cause}, all...)
	}
	return append([]string(nil), w.written...), stderrors.Join(all...)
}

// Errors returns the write errors recorded so far
func (w *Writer) Errors() []error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]error(nil), w.errs...)
}
