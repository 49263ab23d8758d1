//go:generate mockgen -source=$GOFILE -package=mock -destination=./mock/$GOFILE

package storage

import (
	"io"
	"os"
	"path/filepath"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FS abstracts the shared/distributed filesystem the history files live on.
// Every operation is fallible; callers must never assume success.
type FS interface {
	// Create creates (or truncates) the file at path and returns a writable stream.
	Create(path string) (io.WriteCloser, error)
	// Open opens the file at path for reading.
	Open(path string) (io.ReadCloser, error)
	// Exists reports whether path exists.
	Exists(path string) (bool, error)
	// List returns the names of the entries directly under dir.
	List(dir string) ([]string, error)
	// Rename moves oldPath to newPath.
	Rename(oldPath, newPath string) error
	// Delete removes path.
	Delete(path string) error
}

// Local is an FS backed by the local filesystem, used when the history
// directory is a locally mounted share.
type Local struct{}

// NewLocal creates a new local filesystem.
func NewLocal() *Local {
	return &Local{}
}

// Create creates the file at path, creating parent directories as needed.
func (l *Local) Create(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to create parent directory: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to create file: %v", err)
	}

	return f, nil
}

// Open opens the file at path for reading.
func (l *Local) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, status.Errorf(codes.NotFound, "failed to open file: %v", err)
	}

	return f, nil
}

// Exists reports whether path exists.
func (l *Local) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}

	return false, status.Errorf(codes.Internal, "failed to stat path: %v", err)
}

// List returns the names of the entries directly under dir.
func (l *Local) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list directory: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names, nil
}

// Rename moves oldPath to newPath.
func (l *Local) Rename(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return status.Errorf(codes.Internal, "failed to rename file: %v", err)
	}

	return nil
}

// Delete removes path.
func (l *Local) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return status.Errorf(codes.Internal, "failed to delete path: %v", err)
	}

	return nil
}
