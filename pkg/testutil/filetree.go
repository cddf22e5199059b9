package testutil

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// FileTree represents a directory structure for testing. Values are file
// contents (string) or nested directories (FileTree). Keys may contain
// slashes.
type FileTree map[string]interface{}

// CreateFileTree recursively creates tree under basePath
func CreateFileTree(t *testing.T, fsys afero.Fs, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, filepath.FromSlash(name))

		switch v := content.(type) {
		case string:
			if err := fsys.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
				t.Fatalf("Failed to create directory for %s: %v", fullPath, err)
			}
			if err := afero.WriteFile(fsys, fullPath, []byte(v), 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", fullPath, err)
			}
		case FileTree:
			if err := fsys.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			CreateFileTree(t, fsys, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

// NewMemFS returns an in-memory filesystem holding tree under basePath
func NewMemFS(t *testing.T, basePath string, tree FileTree) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	CreateFileTree(t, fsys, basePath, tree)
	return fsys
}

// ReadTree returns every regular file under basePath keyed by its slash
// separated relative path. A missing basePath yields an empty map.
func ReadTree(t *testing.T, fsys afero.Fs, basePath string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	if ok, _ := afero.DirExists(fsys, basePath); !ok {
		return out
	}
	err := afero.Walk(fsys, basePath, func(p string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(basePath, p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to read tree %s: %v", basePath, err)
	}
	return out
}
