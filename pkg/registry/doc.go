// Package registry provides a generic, thread-safe name registry. The
// router keeps its method names in one and the actions package keeps its
// middleware factories in another.
package registry
