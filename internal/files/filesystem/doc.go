// Package filesystem provides the filesystem boundary used by tree rewrites.
//
// A traversal pass needs four primitive operations, each of which may block:
// listing a directory, reading entry metadata, reading a whole file and
// writing a whole file back. FileSystemProvider captures exactly those.
//
// Implementations:
//   - OSFileSystem: Production implementation using the OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing, with per-path
//     fault injection (FailOn) and read/write accounting
package filesystem
