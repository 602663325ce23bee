package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	chunks := [][]byte{[]byte("abc"), []byte("de"), []byte("f")}

	size, sum, err := MergeFile(dir, "out.webm", chunks)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.webm"))
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(data))
	assert.Equal(t, int64(6), size)

	want, err := CalMD5(bytes.NewReader([]byte("abcdef")))
	require.NoError(t, err)
	assert.Equal(t, want, sum)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should not be left behind")
}

func TestMergeFileReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	_, _, err := MergeFile(dir, "out.webm", [][]byte{[]byte("old content")})
	require.NoError(t, err)
	_, _, err = MergeFile(dir, "out.webm", [][]byte{[]byte("new")})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.webm"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestMergeFileUnwritableDir(t *testing.T) {
	// outputDir 是一个普通文件，无法创建目录
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, _, err := MergeFile(filepath.Join(blocker, "sub"), "out.webm", [][]byte{[]byte("a")})
	assert.Error(t, err)
}

func TestCalMD5(t *testing.T) {
	sum, err := CalMD5(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", sum)
}
