package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.webm")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	chunks, err := SliceFile(path, 4)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("0123"), []byte("4567"), []byte("89")}, chunks)

	chunks, err = SliceFile(path, 5)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)

	chunks, err = SliceFile(path, 100)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("0123456789")}, chunks)
}

func TestSliceFileEdgeCases(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "empty.webm")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	chunks, err := SliceFile(empty, 4)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	_, err = SliceFile(empty, 0)
	assert.Error(t, err)

	_, err = SliceFile(filepath.Join(t.TempDir(), "missing.webm"), 4)
	assert.Error(t, err)
}

func TestChunksFromDir(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"chunk_10.webm": "k",
		"chunk_2.webm":  "c",
		"chunk_0.webm":  "a",
		"chunk_1.webm":  "b",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	for i := 3; i < 10; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "chunk_"+string(rune('0'+i))+".webm"), []byte{byte('a' + i)}, 0o644))
	}

	chunks, err := ChunksFromDir(dir)
	require.NoError(t, err)
	require.Len(t, chunks, 11)
	assert.Equal(t, "a", string(chunks[0]))
	assert.Equal(t, "c", string(chunks[2]))
	assert.Equal(t, "k", string(chunks[10]))
}

func TestChunksFromDirRejectsGapsAndJunk(t *testing.T) {
	gap := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(gap, "chunk_0.webm"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(gap, "chunk_2.webm"), []byte("c"), 0o644))
	_, err := ChunksFromDir(gap)
	assert.ErrorContains(t, err, "chunk 1 missing")

	junk := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(junk, "notes.txt"), []byte("x"), 0o644))
	_, err = ChunksFromDir(junk)
	assert.Error(t, err)

	dup := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dup, "chunk_0.webm"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dup, "part_00.webm"), []byte("b"), 0o644))
	_, err = ChunksFromDir(dup)
	assert.ErrorContains(t, err, "share index 0")
}
