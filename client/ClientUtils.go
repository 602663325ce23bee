package client

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// SliceFile 将文件按 chunkSize 切分为分片，最后一片可能更小
func SliceFile(fileName string, chunkSize int) ([][]byte, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("invalid chunk size %d", chunkSize)
	}
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	size := stat.Size()
	// 总分片数
	chunkNum := size / int64(chunkSize)
	if size%int64(chunkSize) != 0 {
		chunkNum++
	}

	chunks := make([][]byte, 0, chunkNum)
	for {
		buffer := make([]byte, chunkSize)
		n, err := io.ReadFull(file, buffer)
		if n > 0 {
			chunks = append(chunks, buffer[:n])
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fileName, err)
		}
	}
	return chunks, nil
}

var chunkFilePattern = regexp.MustCompile(`(\d+)(\.[^.]*)?$`)

// ChunksFromDir 读取目录中按时间切片保存的分片文件，例如 chunk_0.webm、chunk_1.webm。
// 文件名末尾的数字即 index，必须从 0 开始连续。
func ChunksFromDir(dir string) ([][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make(map[int]string, len(entries))
	indices := make([]int, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := chunkFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("chunk file %q has no index", entry.Name())
		}
		idx, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("chunk file %q: %w", entry.Name(), err)
		}
		if prev, ok := files[idx]; ok {
			return nil, fmt.Errorf("chunk files %q and %q share index %d", prev, entry.Name(), idx)
		}
		files[idx] = entry.Name()
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	chunks := make([][]byte, 0, len(indices))
	for i, idx := range indices {
		if idx != i {
			return nil, fmt.Errorf("chunk %d missing in %s", i, dir)
		}
		data, err := os.ReadFile(filepath.Join(dir, files[idx]))
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, data)
	}
	return chunks, nil
}
