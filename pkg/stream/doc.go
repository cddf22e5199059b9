// Package stream provides an object-mode transform stream for files.
//
// A Stream owns one worker goroutine that applies a TransformFunc to each
// written file, strictly in arrival order, and emits the results on its
// output channel. Writers block once the input buffer is full, which gives
// the usual backpressure between piped stages.
//
// A failing item does not stop the stream: its error is reported on the
// Errors channel, recorded for Wait, and the item is dropped. Fail stops
// the stream as a whole.
//
// Streams compose with Pipe:
//
//	a.Pipe(b).Pipe(c)
//	a.Write(f)
//	a.End()
//	files, err := stream.Collect(ctx, c)
//
// An item written to a reaches b only after a's transform for it returned.
package stream
