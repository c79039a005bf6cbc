package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

// FileSystemProvider is the filesystem boundary a traversal pass works through.
// Every method may block; implementations must be safe for concurrent use.
type FileSystemProvider interface {
	// ReadDir returns the names of the immediate entries of the directory at path.
	ReadDir(path string) ([]string, error)

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)

	// ReadFile reads the whole file at path
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the content of the file at path with data in a single write.
	// perm is applied only when the file has to be created.
	WriteFile(path string, data []byte, perm fs.FileMode) error
}

// Op names a FileSystemProvider operation, used for fault injection.
type Op string

const (
	OpReadDir   Op = "readdir"
	OpStat      Op = "stat"
	OpReadFile  Op = "read"
	OpWriteFile Op = "write"
)
