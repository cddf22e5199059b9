// Package output renders run summaries and route tables for the terminal.
//
// Styles have semantic names (Success, Error, Path, ...) and adaptive
// colors that follow the terminal's light or dark background. When color
// is disabled every style renders as plain text.
package output
