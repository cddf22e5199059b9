// Package actions provides named, configurable route handlers.
//
// Configuration files refer to handlers by name ("set", "frontmatter",
// "extname", ...) and pass options as a free-form table. Each name maps to
// a Factory that validates its options and returns a router.Handler.
package actions
