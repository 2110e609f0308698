package ports

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories as needed.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// IsDirEmpty reports whether a directory contains no entries.
	IsDirEmpty(path string) (bool, error)

	// Link creates a lightweight alias of src at dst. Implementations
	// try a hard link, then a symlink, then fall back to copying.
	Link(src, dst string) error

	// Remove deletes a file or empty directory.
	Remove(path string) error
}
