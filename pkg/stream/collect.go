package stream

import (
	"context"
	"sync"

	"github.com/arthur-debert/fileroutes/pkg/types"
)

// FromFiles returns a stream that emits files and then ends
func FromFiles(ctx context.Context, files []*types.File, opts ...Option) *Stream {
	s := New(ctx, Identity, opts...)
	go func() {
		defer s.End()
		for _, f := range files {
			if err := s.Write(f); err != nil {
				return
			}
		}
	}()
	return s
}

// Collect drains s and returns every emitted file together with the result
// of s.Wait.
func Collect(ctx context.Context, s *Stream) ([]*types.File, error) {
	var files []*types.File
	for {
		select {
		case <-ctx.Done():
			return files, ctx.Err()
		case f, ok := <-s.Output():
			if !ok {
				return files, s.Wait()
			}
			files = append(files, f)
		}
	}
}

// Collector is a Sink that keeps every accepted file in order
type Collector struct {
	mu     sync.Mutex
	files  []*types.File
	err    error
	done   chan struct{}
	closed bool
}

// NewCollector creates an empty Collector
func NewCollector() *Collector {
	return &Collector{done: make(chan struct{})}
}

// Accept implements Sink
func (c *Collector) Accept(f *types.File) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, f)
	return nil
}

// Complete implements Sink
func (c *Collector) Complete() { c.finish(nil) }

// Fail implements Sink
func (c *Collector) Fail(err error) { c.finish(err) }

func (c *Collector) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.err = err
	close(c.done)
}

// Wait blocks until the collector completed or failed
func (c *Collector) Wait() ([]*types.File, error) {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.files, c.err
}
