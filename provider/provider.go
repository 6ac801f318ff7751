package provider

import (
	"context"
	"time"
)

// FileInfo represents the standard metadata for a file or a directory
// sitting in a watched input directory.
type FileInfo interface {
	Name() string
	Size() int64
	IsDir() bool
	ModTime() time.Time
}

// Provider represents the filesystem the watcher reads arrivals from and
// routes finished sources through.
type Provider interface {
	// Stat returns the FileInfo for the given path.
	Stat(ctx context.Context, path string) (FileInfo, error)

	// List returns the direct entries of the given directory, sorted by name.
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Move relocates path into dir, keeping its base name, and returns the
	// new location. dir is created if missing.
	Move(ctx context.Context, path string, dir string) (string, error)

	// Remove deletes a regular file, or a directory and everything below it.
	Remove(ctx context.Context, path string) error
}
