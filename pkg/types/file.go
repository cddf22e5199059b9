package types

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// File is a file-like item flowing through a pipeline.
//
// Path is the full path of the file (Base included). Data is a free-form
// bag that middleware uses to annotate the file; it is never shared
// between two files.
type File struct {
	Cwd      string
	Base     string
	Path     string
	Contents []byte
	Data     map[string]interface{}
	Mode     fs.FileMode
	ModTime  time.Time
}

// NewFile creates a file with an initialised data bag
func NewFile(cwd, base, p string, contents []byte) *File {
	return &File{
		Cwd:      cwd,
		Base:     base,
		Path:     p,
		Contents: contents,
		Data:     make(map[string]interface{}),
		Mode:     0644,
	}
}

// Relative returns the path relative to Base, always slash separated.
// Falls back to the basename when Path is not under Base.
func (f *File) Relative() string {
	if f.Base == "" {
		return filepath.ToSlash(f.Path)
	}
	rel, err := filepath.Rel(f.Base, f.Path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return f.Basename()
	}
	return filepath.ToSlash(rel)
}

// Basename returns the last element of Path
func (f *File) Basename() string {
	return filepath.Base(f.Path)
}

// Extname returns the extension of Path including the dot
func (f *File) Extname() string {
	return filepath.Ext(f.Path)
}

// Stem returns the basename without its extension
func (f *File) Stem() string {
	return strings.TrimSuffix(f.Basename(), f.Extname())
}

// SetExtname replaces the extension of Path. ext may omit the leading dot;
// an empty ext removes the extension.
func (f *File) SetExtname(ext string) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f.Path = strings.TrimSuffix(f.Path, f.Extname()) + ext
}

// SlashPath returns Path with forward slashes, the form routers match against
func (f *File) SlashPath() string {
	return path.Clean(filepath.ToSlash(f.Path))
}

// Get returns a value from the data bag
func (f *File) Get(key string) (interface{}, bool) {
	if f.Data == nil {
		return nil, false
	}
	v, ok := f.Data[key]
	return v, ok
}

// Set stores a value in the data bag, creating it when needed
func (f *File) Set(key string, value interface{}) {
	if f.Data == nil {
		f.Data = make(map[string]interface{})
	}
	f.Data[key] = value
}

func (f *File) String() string {
	return fmt.Sprintf("<File %q (%d bytes)>", f.Relative(), len(f.Contents))
}
