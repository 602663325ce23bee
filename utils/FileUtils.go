package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MergeFile 按顺序将 chunks 合并为 outputDir/outputFilename。
// 先写入同目录下的临时文件，全部写完后再 rename，失败时不会留下不完整的文件。
func MergeFile(outputDir, outputFilename string, chunks [][]byte) (int64, string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, "", fmt.Errorf("creating output dir: %w", err)
	}
	tmp, err := os.CreateTemp(outputDir, outputFilename+".part-*")
	if err != nil {
		return 0, "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	// rename 成功后 tmpName 已不存在，Remove 只清理失败的情况
	defer os.Remove(tmpName)

	hash := md5.New()
	w := io.MultiWriter(tmp, hash)
	var size int64
	for _, chunk := range chunks {
		n, err := w.Write(chunk)
		size += int64(n)
		if err != nil {
			tmp.Close()
			return 0, "", fmt.Errorf("writing chunk: %w", err)
		}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, "", fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, "", fmt.Errorf("closing temp file: %w", err)
	}

	outputFileName := filepath.Join(outputDir, outputFilename)
	if err := os.Rename(tmpName, outputFileName); err != nil {
		return 0, "", fmt.Errorf("renaming output file: %w", err)
	}
	return size, hex.EncodeToString(hash.Sum(nil)), nil
}
