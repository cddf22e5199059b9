// Package router dispatches files through ordered middleware chains keyed by
// a method name and a path pattern.
//
// A Router holds a single stack of layers in registration order. Three
// kinds of layer exist:
//
//   - middleware, registered with Use, runs for every dispatch
//   - routes, registered with All or Handle, run when their method matches
//     the dispatched method (or is "all") and their pattern matches the
//     file path
//   - error middleware, registered with UseError, runs only while an error
//     is pending and may recover from it
//
// # Methods
//
// "all" is always registered and is the catch-all method: routes added with
// All run for every dispatch, and dispatching with "all" (or "") runs only
// middleware and catch-all routes. Other methods are declared up front:
//
//	r := router.New(router.WithMethods("before", "after"))
//	r.Use(initData)
//	r.All(router.MustCompile("*.js"), markScript)
//	_ = r.Handle("before", router.Any(), stamp)
//
//	err := r.Dispatch(ctx, file, "before")
//
// # Patterns
//
// Patterns are globs matched against the file basename, or against the
// whole slash-separated path when they contain a slash. A leading "**/"
// matches at any depth. A string wrapped in slashes, such as "/\.js$/", is
// compiled as a regular expression; named groups become Params available
// to handlers through ParamsFrom.
//
// # Flow control
//
// A handler returning SkipRoute skips the remaining handlers of its route.
// Returning Halt ends the dispatch successfully. Any other error skips the
// remaining non-error layers until error middleware recovers it.
package router
