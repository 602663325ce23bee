package server

import (
	"context"
	"path/filepath"

	"github.com/motongxue/chunkedRecordTransfer/models"
	"github.com/motongxue/chunkedRecordTransfer/utils"
)

// Sink 接收按顺序排列好的分片并写出最终文件
type Sink interface {
	Write(ctx context.Context, chunks [][]byte) (*models.FinalizeResult, error)
}

// FileSink 写入固定路径 Dir/Name
type FileSink struct {
	Dir  string
	Name string
}

func (s *FileSink) Write(_ context.Context, chunks [][]byte) (*models.FinalizeResult, error) {
	size, md5Str, err := utils.MergeFile(s.Dir, s.Name, chunks)
	if err != nil {
		return nil, err
	}
	return &models.FinalizeResult{
		Path: filepath.Join(s.Dir, s.Name),
		Size: size,
		MD5:  md5Str,
	}, nil
}
