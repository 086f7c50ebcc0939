package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem implements the file operations used by reporting and remediation
// on top of the operating system.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// MkdirAll ensures a directory hierarchy exists with the provided permissions.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// ReadFile reads file contents.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file with the supplied permissions.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}

// RepositoryFS exposes the tree under root for read-only analysis.
func (OSFileSystem) RepositoryFS(root string) fs.FS {
	return os.DirFS(root)
}
