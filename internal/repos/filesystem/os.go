package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem exposes the filesystem and working directory primitives used by discovery and execution.
type FileSystem interface {
	ReadDir(path string) ([]fs.DirEntry, error)
	Stat(path string) (fs.FileInfo, error)
	EvalSymlinks(path string) (string, error)
	Abs(path string) (string, error)
	Getwd() (string, error)
	Chdir(path string) error
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// NewOSFileSystem constructs a FileSystem backed by the operating system.
func NewOSFileSystem() OSFileSystem {
	return OSFileSystem{}
}

// ReadDir lists directory entries sorted by file name.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// Stat retrieves file metadata, following symbolic links.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// EvalSymlinks resolves every symbolic link in the path.
func (OSFileSystem) EvalSymlinks(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// Getwd reports the process working directory.
func (OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// Chdir changes the process working directory.
func (OSFileSystem) Chdir(path string) error {
	return os.Chdir(path)
}

// Canonicalize returns the absolute path with all symbolic links resolved.
func Canonicalize(fileSystem FileSystem, path string) (string, error) {
	absolutePath, absoluteError := fileSystem.Abs(path)
	if absoluteError != nil {
		return "", absoluteError
	}
	return fileSystem.EvalSymlinks(absolutePath)
}
