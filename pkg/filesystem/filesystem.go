// Package filesystem defines the filesystem capability injected into the
// loading and dependency layers, keeping file I/O mockable in tests.
package filesystem

import (
	"errors"
	"io/fs"
	"os"
)

// FileSystem defines the filesystem operations this layer performs.
// All reads are blocking and synchronous; failures surface immediately.
type FileSystem interface {
	// Stat returns file info.
	Stat(name string) (os.FileInfo, error)

	// ReadFile reads a file.
	ReadFile(name string) ([]byte, error)
}

// OSFileSystem implements FileSystem using the os package.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OS-backed filesystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat returns file info.
func (f *OSFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// ReadFile reads a file.
func (f *OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Exists reports whether the path exists on the given filesystem.
func Exists(fsys FileSystem, name string) bool {
	_, err := fsys.Stat(name)
	return err == nil
}

// IsNotExist reports whether err indicates a missing path.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Ignorer registers paths with an external ignore mechanism so generated or
// tracked files are excluded from workspace scans.
type Ignorer interface {
	Ignore(path string) error
}

// NopIgnorer is an Ignorer that does nothing.
type NopIgnorer struct{}

// Ignore implements Ignorer.
func (NopIgnorer) Ignore(string) error { return nil }
