// Package testutil provides helpers shared by fileroutes tests.
//
// Key components:
//   - FileTree: declarative file trees written to any afero filesystem
//   - ReadTree: the inverse, for asserting on a whole output directory
//   - IsolateXDG: points user config and state at temporary directories
//
// Usage guidelines:
//   - Prefer NewMemFS; use the OS filesystem only when a real path is
//     needed (watchers, the CLI)
//   - Define test data inline, not in external files
package testutil
