package filesystem

import (
	"errors"
	"io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_ReadDir(t *testing.T) {
	mfs := NewMemoryFileSystem("/site")
	mfs.AddFile("index.html", "<a href=\"http://x\">")
	mfs.AddFile("blog/post.html", "")
	mfs.AddFile("blog/2024/old.html", "")
	mfs.AddDir("empty")

	names, err := mfs.ReadDir("/site")
	require.NoError(t, err)
	assert.Equal(t, []string{"blog", "empty", "index.html"}, names)

	names, err = mfs.ReadDir("/site/blog")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "post.html"}, names)

	names, err = mfs.ReadDir("empty")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryFileSystem_ReadDir_Errors(t *testing.T) {
	mfs := NewMemoryFileSystem("/site")
	mfs.AddFile("index.html", "")

	_, err := mfs.ReadDir("/site/missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = mfs.ReadDir("/site/index.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestMemoryFileSystem_Stat(t *testing.T) {
	mfs := NewMemoryFileSystem("/site")
	mfs.AddFile("index.html", "hello")

	info, err := mfs.Stat("/site/index.html")
	require.NoError(t, err)
	require.False(t, info.IsDir())
	require.True(t, info.Mode().IsRegular())
	require.Equal(t, "index.html", info.Name())
	require.Equal(t, int64(5), info.Size())

	info, err = mfs.Stat("/site")
	require.NoError(t, err)
	require.True(t, info.IsDir())

	_, err = mfs.Stat("/site/nope")
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_ReadWrite(t *testing.T) {
	mfs := NewMemoryFileSystem("/site")
	mfs.AddFile("index.html", "http://a")

	data, err := mfs.ReadFile("/site/index.html")
	require.NoError(t, err)
	require.Equal(t, "http://a", string(data))

	// returned slice must not alias stored content
	data[0] = 'X'
	content, _ := mfs.Content("index.html")
	require.Equal(t, "http://a", content)

	require.NoError(t, mfs.WriteFile("/site/index.html", []byte("https://a"), 0600))
	content, ok := mfs.Content("/site/index.html")
	require.True(t, ok)
	require.Equal(t, "https://a", content)

	info, err := mfs.Stat("/site/index.html")
	require.NoError(t, err)
	require.Equal(t, fs.FileMode(0644), info.Mode().Perm(), "existing mode must be kept on overwrite")

	require.Equal(t, 1, mfs.Reads("index.html"))
	require.Equal(t, 1, mfs.Writes("index.html"))
	require.Equal(t, 1, mfs.TotalWrites())
}

func TestMemoryFileSystem_WriteFile_MissingParent(t *testing.T) {
	mfs := NewMemoryFileSystem("/site")

	err := mfs.WriteFile("/site/nope/a.html", []byte("x"), 0644)
	require.Error(t, err)
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_ReadFile_Directory(t *testing.T) {
	mfs := NewMemoryFileSystem("/site")
	mfs.AddDir("sub")

	_, err := mfs.ReadFile("/site/sub")
	require.Error(t, err)
}

func TestMemoryFileSystem_FailOn(t *testing.T) {
	mfs := NewMemoryFileSystem("/site")
	mfs.AddFile("locked/a.html", "http://a")

	tests := []struct {
		op  Op
		run func() error
	}{
		{OpReadDir, func() error { _, err := mfs.ReadDir("/site/locked"); return err }},
		{OpStat, func() error { _, err := mfs.Stat("/site/locked/a.html"); return err }},
		{OpReadFile, func() error { _, err := mfs.ReadFile("/site/locked/a.html"); return err }},
		{OpWriteFile, func() error { return mfs.WriteFile("/site/locked/a.html", nil, 0644) }},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			require.NoError(t, tt.run(), "no fault injected yet")

			target := "/site/locked/a.html"
			if tt.op == OpReadDir {
				target = "/site/locked"
			}
			mfs.FailOn(tt.op, target, fs.ErrPermission)

			err := tt.run()
			require.Error(t, err)
			require.True(t, errors.Is(err, fs.ErrPermission))

			var pathErr *fs.PathError
			require.True(t, errors.As(err, &pathErr))
			require.Equal(t, target, pathErr.Path)
		})
	}
}

func TestMemoryFileSystem_ConcurrentAccess(t *testing.T) {
	mfs := NewMemoryFileSystem("/site")
	for _, name := range []string{"a.html", "b.html", "c.html"} {
		mfs.AddFile(name, "http://x")
	}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := []string{"/site/a.html", "/site/b.html", "/site/c.html"}[i%3]
			_, _ = mfs.ReadFile(name)
			_ = mfs.WriteFile(name, []byte("https://x"), 0644)
			_, _ = mfs.ReadDir("/site")
		}(i)
	}
	wg.Wait()

	require.Equal(t, 30, mfs.TotalWrites())
}
