package filesystem

import (
	"io/fs"
	"os"
	"path"
	"strings"
	"time"
)

// Memory is an in-memory FileSystem used by tests and dry runs.
// Paths are treated verbatim; parent directories of added files exist
// implicitly.
type Memory struct {
	files map[string][]byte
	dirs  map[string]struct{}
}

// NewMemory creates an empty in-memory filesystem.
func NewMemory() *Memory {
	return &Memory{
		files: map[string][]byte{},
		dirs:  map[string]struct{}{},
	}
}

// WriteFile adds or replaces a file.
func (m *Memory) WriteFile(name string, data []byte) *Memory {
	m.files[name] = data
	for dir := path.Dir(name); dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
		m.dirs[dir] = struct{}{}
	}
	return m
}

// Mkdir adds a directory.
func (m *Memory) Mkdir(name string) *Memory {
	m.dirs[strings.TrimSuffix(name, "/")] = struct{}{}
	return m
}

// Remove deletes a file or directory.
func (m *Memory) Remove(name string) {
	delete(m.files, name)
	delete(m.dirs, name)
}

// Stat returns file info.
func (m *Memory) Stat(name string) (os.FileInfo, error) {
	if data, ok := m.files[name]; ok {
		return memInfo{name: path.Base(name), size: int64(len(data))}, nil
	}
	if _, ok := m.dirs[name]; ok {
		return memInfo{name: path.Base(name), dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile reads a file.
func (m *Memory) ReadFile(name string) ([]byte, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

type memInfo struct {
	name string
	size int64
	dir  bool
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return i.mode() }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() any           { return nil }

func (i memInfo) mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}
