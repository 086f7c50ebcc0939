package audit

import "io/fs"

// FileSystem provides the file system operations needed to open a repository.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	RepositoryFS(root string) fs.FS
}
