package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/motongxue/chunkedRecordTransfer/models"
)

// DefaultMaxAttempts 每个分片默认最多发送的次数
const DefaultMaxAttempts = 3

// ChunkResult 一个分片的上传结果
type ChunkResult struct {
	Index    int
	Attempts int
	// 用完重试次数后最后一次的错误
	Err error
}

func (r ChunkResult) OK() bool {
	return r.Err == nil
}

// Report 一次 UploadAll 的结果
type Report struct {
	Chunks []ChunkResult
	// 用完重试次数仍失败而被放弃的分片
	Abandoned []int
	Result    *models.FinalizeResult
	Err       error
}

// Uploader 按 index 顺序逐个上传分片，一次只有一个请求在途
type Uploader struct {
	transport   Transport
	maxAttempts int
	logger      *zap.Logger
}

func NewUploader(transport Transport, maxAttempts int, logger *zap.Logger) *Uploader {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Uploader{transport: transport, maxAttempts: maxAttempts, logger: logger}
}

// SubmitChunk 发送一个分片，失败立即重试，最多 maxAttempts 次。
// 用完次数后返回带 Err 的结果，由调用方决定如何处理。
func (u *Uploader) SubmitChunk(ctx context.Context, chunk models.Chunk) ChunkResult {
	var lastErr error
	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		err := u.transport.SendChunk(ctx, chunk)
		if err == nil {
			u.logger.Debug("chunk uploaded", zap.Int("index", chunk.Index), zap.Int("attempt", attempt))
			return ChunkResult{Index: chunk.Index, Attempts: attempt}
		}
		lastErr = err
		if attempt < u.maxAttempts {
			u.logger.Warn("retrying chunk", zap.Int("index", chunk.Index), zap.Int("attemptsLeft", u.maxAttempts-attempt), zap.Error(err))
		}
	}
	u.logger.Error("failed to upload chunk after retries", zap.Int("index", chunk.Index), zap.Int("attempts", u.maxAttempts), zap.Error(lastErr))
	return ChunkResult{Index: chunk.Index, Attempts: u.maxAttempts, Err: lastErr}
}

// UploadAll 依次上传 payloads，第 i 个分片的 index 为 i。
// 单个分片失败不会中断上传，全部尝试后发送一次 Finalize 并声明总分片数。
// 返回的 error 只反映 Finalize 的结果。
func (u *Uploader) UploadAll(ctx context.Context, payloads [][]byte) (*Report, error) {
	report := &Report{Chunks: make([]ChunkResult, 0, len(payloads))}
	for i, payload := range payloads {
		result := u.SubmitChunk(ctx, models.Chunk{Index: i, Payload: payload})
		report.Chunks = append(report.Chunks, result)
		if !result.OK() {
			report.Abandoned = append(report.Abandoned, i)
		}
	}
	if len(report.Abandoned) > 0 {
		u.logger.Warn("chunks abandoned, finalize is expected to fail", zap.Ints("abandoned", report.Abandoned))
	}

	report.Result, report.Err = u.transport.Finalize(ctx, len(payloads))
	if report.Err != nil {
		fields := []zap.Field{zap.Error(report.Err)}
		if missing, ok := models.MissingIndex(report.Err); ok {
			fields = append(fields, zap.Int("missing", missing))
		}
		u.logger.Error("failed to finalize the video", fields...)
		return report, report.Err
	}
	u.logger.Info("video finalized", zap.String("id", report.Result.ID), zap.Int("chunks", report.Result.Chunks), zap.String("md5", report.Result.MD5))
	return report, nil
}
