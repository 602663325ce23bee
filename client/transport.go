package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/motongxue/chunkedRecordTransfer/models"
)

// Transport 与服务端之间的一次请求，不做重试
type Transport interface {
	SendChunk(ctx context.Context, chunk models.Chunk) error
	Finalize(ctx context.Context, totalChunks int) (*models.FinalizeResult, error)
}

// HTTPTransport 通过 /upload 与 /finalize 接口与服务端通信
type HTTPTransport struct {
	client *resty.Client
}

func NewHTTPTransport(serverURL string, timeout time.Duration) *HTTPTransport {
	client := resty.New().
		SetBaseURL(serverURL).
		SetTimeout(timeout).
		// 重试由 Uploader 控制
		SetRetryCount(0)
	return &HTTPTransport{client: client}
}

// SendChunk 以 multipart 表单上传一个分片
func (t *HTTPTransport) SendChunk(ctx context.Context, chunk models.Chunk) error {
	var body models.ResponseData
	resp, err := t.client.R().
		SetContext(ctx).
		SetFileReader("videoChunk", fmt.Sprintf("chunk_%d.webm", chunk.Index), bytes.NewReader(chunk.Payload)).
		SetFormData(map[string]string{"chunkIndex": strconv.Itoa(chunk.Index)}).
		SetResult(&body).
		SetError(&body).
		Post("/upload")
	if err != nil {
		return fmt.Errorf("%w: chunk %d: %w", models.ErrTransportFailure, chunk.Index, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: chunk %d: status %d: %s", models.ErrTransportFailure, chunk.Index, resp.StatusCode(), body.Msg)
	}
	return nil
}

// Finalize 请求服务端合并，totalChunks > 0 时一并声明总分片数
func (t *HTTPTransport) Finalize(ctx context.Context, totalChunks int) (*models.FinalizeResult, error) {
	req := t.client.R().SetContext(ctx)
	if totalChunks > 0 {
		req.SetQueryParam("totalChunks", strconv.Itoa(totalChunks))
	}
	var body models.ResponseData
	resp, err := req.SetResult(&body).SetError(&body).Post("/finalize")
	if err != nil {
		return nil, fmt.Errorf("%w: finalize: %w", models.ErrTransportFailure, err)
	}
	if resp.IsSuccess() {
		var result models.FinalizeResult
		if err := json.Unmarshal(body.Data, &result); err != nil {
			return nil, fmt.Errorf("decoding finalize result: %w", err)
		}
		return &result, nil
	}
	return nil, finalizeError(resp.StatusCode(), body)
}

// Status 获取服务端当前会话的接收情况
func (t *HTTPTransport) Status(ctx context.Context) (models.TransferInfo, error) {
	var body models.ResponseData
	resp, err := t.client.R().SetContext(ctx).SetResult(&body).SetError(&body).Get("/status")
	if err != nil {
		return models.TransferInfo{}, fmt.Errorf("%w: status: %w", models.ErrTransportFailure, err)
	}
	if !resp.IsSuccess() {
		return models.TransferInfo{}, fmt.Errorf("%w: status %d: %s", models.ErrTransportFailure, resp.StatusCode(), body.Msg)
	}
	var info models.TransferInfo
	if err := json.Unmarshal(body.Data, &info); err != nil {
		return models.TransferInfo{}, fmt.Errorf("decoding status: %w", err)
	}
	return info, nil
}

// finalizeError 将服务端的错误响应还原为 models 中的错误
func finalizeError(status int, body models.ResponseData) error {
	switch body.Code {
	case models.CodeIncomplete:
		var missing models.MissingChunk
		if err := json.Unmarshal(body.Data, &missing); err == nil {
			return &models.IncompleteUploadError{Missing: missing.Missing}
		}
		return fmt.Errorf("%w: %s", models.ErrIncompleteUpload, body.Msg)
	case models.CodeNothingToFinalize:
		return models.ErrNothingToFinalize
	case models.CodeFinalizeInProgress:
		return models.ErrFinalizeInProgress
	case models.CodeMalformed:
		return fmt.Errorf("%w: %s", models.ErrMalformedSubmission, body.Msg)
	case models.CodeWriteFailure:
		if status == http.StatusInternalServerError {
			return fmt.Errorf("%w: %s", models.ErrWriteFailure, body.Msg)
		}
	}
	return fmt.Errorf("%w: finalize: status %d: %s", models.ErrTransportFailure, status, body.Msg)
}
