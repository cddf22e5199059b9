// Package types defines the File value that flows through fileroutes
// streams. A File is identified by its pointer: stages mutate it in place
// and forward the same instance downstream.
package types
