// Package vfs connects streams to a filesystem: Src reads matching files
// into a stream and Dest writes the files coming out of one. Both work on
// any afero.Fs, so pipelines run unchanged against the OS or in memory.
package vfs
