package system

import (
	"io/fs"
	"os"
)

// FileSystem captures the folder and metadata primitives the facade relies on.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Lstat(path string) (fs.FileInfo, error)
	Mkdir(path string, permissions fs.FileMode) error
	Remove(path string) error
	Rename(oldPath string, newPath string) error
	Chmod(path string, permissions fs.FileMode) error
	ReadDir(path string) ([]fs.DirEntry, error)
	Getwd() (string, error)
	Chdir(path string) error
	CreateTemp(directory string, pattern string) (*os.File, error)
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata, following symbolic links.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Lstat retrieves file metadata without following a final symbolic link.
func (OSFileSystem) Lstat(path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

// Mkdir creates a single folder.
func (OSFileSystem) Mkdir(path string, permissions fs.FileMode) error {
	return os.Mkdir(path, permissions)
}

// Remove deletes a file or an empty folder.
func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

// Rename renames a path.
func (OSFileSystem) Rename(oldPath string, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Chmod changes permission bits.
func (OSFileSystem) Chmod(path string, permissions fs.FileMode) error {
	return os.Chmod(path, permissions)
}

// ReadDir lists a folder sorted by name.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// Getwd returns the process working directory.
func (OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// Chdir changes the process working directory.
func (OSFileSystem) Chdir(path string) error {
	return os.Chdir(path)
}

// CreateTemp creates a uniquely named file opened for reading and writing.
func (OSFileSystem) CreateTemp(directory string, pattern string) (*os.File, error) {
	return os.CreateTemp(directory, pattern)
}
