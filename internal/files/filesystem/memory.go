package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory entries
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryEntry struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

func (e *memoryEntry) info(absPath string) *memoryFileInfo {
	return &memoryFileInfo{
		name:    path.Base(absPath),
		size:    int64(len(e.content)),
		mode:    e.mode,
		modTime: e.modTime,
	}
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Failures can be injected per operation and path with FailOn.
// Safe for concurrent use by multiple goroutines.
type MemoryFileSystem struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	faults  map[Op]map[string]error
	reads   map[string]int
	writes  map[string]int
	root    string
}

var errNotDirectory = errors.New("not a directory")
var errIsDirectory = errors.New("is a directory")

// NewMemoryFileSystem creates a new in-memory filesystem.
// The root path is normalized to use forward slashes for virtual filesystem consistency.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		entries: make(map[string]*memoryEntry),
		faults:  make(map[Op]map[string]error),
		reads:   make(map[string]int),
		writes:  make(map[string]int),
		root:    root,
	}
	mfs.entries[root] = &memoryEntry{mode: 0755 | fs.ModeDir, modTime: time.Now()}
	return mfs
}

// Root returns the normalized root directory.
func (mfs *MemoryFileSystem) Root() string { return mfs.root }

// abs resolves p against the root using forward slashes.
func (mfs *MemoryFileSystem) abs(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if !strings.HasPrefix(p, "/") {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

// AddFile adds a file to the in-memory filesystem, creating parent directories.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.abs(filePath)
	mfs.ensureDirectoriesExist(absPath)
	mfs.entries[absPath] = &memoryEntry{content: []byte(content), mode: 0644, modTime: time.Now()}
}

// AddDir adds an empty directory, creating parent directories.
func (mfs *MemoryFileSystem) AddDir(dirPath string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.abs(dirPath)
	mfs.ensureDirectoriesExist(absPath)
	if _, exists := mfs.entries[absPath]; !exists {
		mfs.entries[absPath] = &memoryEntry{mode: 0755 | fs.ModeDir, modTime: time.Now()}
	}
}

// FailOn makes every subsequent op on filePath return err.
func (mfs *MemoryFileSystem) FailOn(op Op, filePath string, err error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	if mfs.faults[op] == nil {
		mfs.faults[op] = make(map[string]error)
	}
	mfs.faults[op][mfs.abs(filePath)] = err
}

// Content returns the current content of a file.
func (mfs *MemoryFileSystem) Content(filePath string) (string, bool) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	e, ok := mfs.entries[mfs.abs(filePath)]
	if !ok || e.mode.IsDir() {
		return "", false
	}
	return string(e.content), true
}

// Reads returns how many successful ReadFile calls hit filePath.
func (mfs *MemoryFileSystem) Reads(filePath string) int {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.reads[mfs.abs(filePath)]
}

// Writes returns how many successful WriteFile calls hit filePath.
func (mfs *MemoryFileSystem) Writes(filePath string) int {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.writes[mfs.abs(filePath)]
}

// TotalWrites returns the number of successful writes across all files.
func (mfs *MemoryFileSystem) TotalWrites() int {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	total := 0
	for _, n := range mfs.writes {
		total += n
	}
	return total
}

// ensureDirectoriesExist creates directory entries for all parent directories.
// Caller must hold mu.
func (mfs *MemoryFileSystem) ensureDirectoriesExist(filePath string) {
	dir := path.Dir(filePath)
	if dir == filePath {
		return
	}
	if _, exists := mfs.entries[dir]; exists {
		return
	}
	mfs.entries[dir] = &memoryEntry{mode: 0755 | fs.ModeDir, modTime: time.Now()}
	mfs.ensureDirectoriesExist(dir)
}

// fault returns the injected error for op on absPath. Caller must hold mu.
func (mfs *MemoryFileSystem) fault(op Op, absPath string) error {
	if err, ok := mfs.faults[op][absPath]; ok {
		return &fs.PathError{Op: string(op), Path: absPath, Err: err}
	}
	return nil
}

// ReadDir implements FileSystemProvider.ReadDir
func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	absPath := mfs.abs(dirPath)
	if err := mfs.fault(OpReadDir, absPath); err != nil {
		return nil, err
	}

	e, ok := mfs.entries[absPath]
	if !ok {
		return nil, &fs.PathError{Op: string(OpReadDir), Path: absPath, Err: fs.ErrNotExist}
	}
	if !e.mode.IsDir() {
		return nil, &fs.PathError{Op: string(OpReadDir), Path: absPath, Err: errNotDirectory}
	}

	var names []string
	for p := range mfs.entries {
		if p != absPath && path.Dir(p) == absPath {
			names = append(names, path.Base(p))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	absPath := mfs.abs(statPath)
	if err := mfs.fault(OpStat, absPath); err != nil {
		return nil, err
	}

	e, ok := mfs.entries[absPath]
	if !ok {
		return nil, &fs.PathError{Op: string(OpStat), Path: absPath, Err: fs.ErrNotExist}
	}
	return e.info(absPath), nil
}

// ReadFile implements FileSystemProvider.ReadFile
func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.abs(filePath)
	if err := mfs.fault(OpReadFile, absPath); err != nil {
		return nil, err
	}

	e, ok := mfs.entries[absPath]
	if !ok {
		return nil, &fs.PathError{Op: string(OpReadFile), Path: absPath, Err: fs.ErrNotExist}
	}
	if e.mode.IsDir() {
		return nil, &fs.PathError{Op: string(OpReadFile), Path: absPath, Err: errIsDirectory}
	}

	mfs.reads[absPath]++
	out := make([]byte, len(e.content))
	copy(out, e.content)
	return out, nil
}

// WriteFile implements FileSystemProvider.WriteFile
func (mfs *MemoryFileSystem) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.abs(filePath)
	if err := mfs.fault(OpWriteFile, absPath); err != nil {
		return err
	}

	parent, ok := mfs.entries[path.Dir(absPath)]
	if !ok || !parent.mode.IsDir() {
		return &fs.PathError{Op: string(OpWriteFile), Path: absPath, Err: fs.ErrNotExist}
	}

	content := make([]byte, len(data))
	copy(content, data)

	if e, exists := mfs.entries[absPath]; exists {
		if e.mode.IsDir() {
			return &fs.PathError{Op: string(OpWriteFile), Path: absPath, Err: errIsDirectory}
		}
		e.content = content
		e.modTime = time.Now()
	} else {
		mfs.entries[absPath] = &memoryEntry{content: content, mode: perm.Perm(), modTime: time.Now()}
	}

	mfs.writes[absPath]++
	return nil
}

// String lists every entry, one per line; handy in test failure output.
func (mfs *MemoryFileSystem) String() string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	paths := make([]string, 0, len(mfs.entries))
	for p := range mfs.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "%s %s\n", mfs.entries[p].mode, p)
	}
	return b.String()
}

var _ FileSystemProvider = (*MemoryFileSystem)(nil)
