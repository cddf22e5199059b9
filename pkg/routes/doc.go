// Package routes adapts a router to file streams.
//
// Given a router, or a value that carries one, New/FromHolder return a
// Routes value whose Stream method produces one transform stream per
// method name. Every file written to such a stream is dispatched through
// the router under that method ("all" when none is given); the same file
// is forwarded downstream once the dispatch succeeded, and a failed
// dispatch is reported on the stream's error channel instead.
//
//	r := router.New(router.WithMethods("before", "after"))
//	rs, err := routes.New(r)
//	if err != nil {
//		return err // no router: fails before any stream exists
//	}
//	src.Pipe(rs.Stream(ctx, "before")).Pipe(rs.Stream(ctx, "")).Pipe(rs.Stream(ctx, "after"))
//
// The adapter owns no routing logic. Matching, middleware order and
// cancellation are the router's business; the adapter neither retries nor
// logs failures.
package routes
