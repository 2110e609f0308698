// Package mocks provides mock implementations for testing.
package mocks

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Schrubitteflau/compression-suite/pkg/ports"
)

// FileSystem is a mock implementation of ports.FileSystem.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	ReadFileFunc   func(path string) ([]byte, error)
	WriteFileFunc  func(path string, data []byte) error
	MkdirAllFunc   func(path string) error
	ExistsFunc     func(path string) (bool, error)
	IsDirEmptyFunc func(path string) (bool, error)
	LinkFunc       func(src, dst string) error
	RemoveFunc     func(path string) error

	// Links records src -> dst pairs from Link calls.
	Links [][2]string
}

// NewFileSystem creates a new mock FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.files[path]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("file not found: %s", path)
}

func (m *FileSystem) WriteFile(path string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(path, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	return nil
}

func (m *FileSystem) MkdirAll(path string) error {
	if m.MkdirAllFunc != nil {
		return m.MkdirAllFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
	return nil
}

func (m *FileSystem) Exists(path string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[path]; ok {
		return true, nil
	}
	if _, ok := m.dirs[path]; ok {
		return true, nil
	}
	return false, nil
}

func (m *FileSystem) IsDirEmpty(path string) (bool, error) {
	if m.IsDirEmptyFunc != nil {
		return m.IsDirEmptyFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := strings.TrimSuffix(path, "/") + "/"
	for file := range m.files {
		if strings.HasPrefix(file, prefix) {
			return false, nil
		}
	}
	return true, nil
}

func (m *FileSystem) Link(src, dst string) error {
	if m.LinkFunc != nil {
		return m.LinkFunc(src, dst)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Links = append(m.Links, [2]string{src, dst})
	if data, ok := m.files[src]; ok {
		m.files[dst] = data
	} else {
		m.files[dst] = nil
	}
	return nil
}

func (m *FileSystem) Remove(path string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	delete(m.dirs, path)
	return nil
}

// GetFile returns the contents of a file (for test verification).
func (m *FileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	return data, ok
}

// FilesMatching returns the paths of all stored files whose base name
// matches the glob pattern (for test verification).
func (m *FileSystem) FilesMatching(pattern string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []string
	for path := range m.files {
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			result = append(result, path)
		}
	}
	return result
}

var _ ports.FileSystem = (*FileSystem)(nil)
