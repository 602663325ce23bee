package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/motongxue/chunkedRecordTransfer/models"
)

const (
	fieldChunk       = "videoChunk"
	fieldChunkIndex  = "chunkIndex"
	fieldTotalChunks = "totalChunks"
)

// Limits 单个请求的上限，0 表示不限制
type Limits struct {
	MaxChunkBytes int64
	// chunkIndex 必须小于 MaxChunks，totalChunks 不能超过 MaxChunks
	MaxChunks int
}

type Handler struct {
	acc      *Accumulator
	notifier Notifier
	logger   *zap.Logger
	limits   Limits
}

func NewHandler(acc *Accumulator, notifier Notifier, logger *zap.Logger, limits Limits) *Handler {
	return &Handler{acc: acc, notifier: notifier, logger: logger, limits: limits}
}

// RegisterRoutes 注册全部接口
func RegisterRoutes(engine *gin.Engine, h *Handler) {
	engine.POST("/upload", h.Upload)
	engine.POST("/finalize", h.Finalize)
	engine.GET("/status", h.Status)
	engine.GET("/healthz", h.Healthz)
}

// Upload 接收一个分片
func (h *Handler) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile(fieldChunk)
	if err != nil {
		respond(ctx, http.StatusBadRequest, models.CodeMalformed, "Missing file or chunk index", nil)
		return
	}
	rawIndex, ok := ctx.GetPostForm(fieldChunkIndex)
	if !ok || rawIndex == "" {
		respond(ctx, http.StatusBadRequest, models.CodeMalformed, "Missing file or chunk index", nil)
		return
	}
	index, err := parseDecimal(rawIndex)
	if err != nil {
		respond(ctx, http.StatusBadRequest, models.CodeMalformed, fmt.Sprintf("Invalid chunk index %q", rawIndex), nil)
		return
	}
	if h.limits.MaxChunks > 0 && index >= h.limits.MaxChunks {
		respond(ctx, http.StatusBadRequest, models.CodeMalformed, fmt.Sprintf("Chunk index %d exceeds limit of %d chunks", index, h.limits.MaxChunks), nil)
		return
	}
	if h.limits.MaxChunkBytes > 0 && fileHeader.Size > h.limits.MaxChunkBytes {
		respond(ctx, http.StatusRequestEntityTooLarge, models.CodeMalformed, fmt.Sprintf("Chunk %d exceeds %d bytes", index, h.limits.MaxChunkBytes), nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("opening uploaded chunk failed", zap.Int("index", index), zap.Error(err))
		respond(ctx, http.StatusInternalServerError, models.CodeMalformed, "Error reading chunk", nil)
		return
	}
	payload, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		h.logger.Error("reading uploaded chunk failed", zap.Int("index", index), zap.Error(err))
		respond(ctx, http.StatusInternalServerError, models.CodeMalformed, "Error reading chunk", nil)
		return
	}

	accepted, err := h.acc.AcceptChunk(ctx.Request.Context(), index, payload)
	if err != nil {
		if errors.Is(err, models.ErrMalformedSubmission) {
			respond(ctx, http.StatusBadRequest, models.CodeMalformed, err.Error(), nil)
			return
		}
		h.logger.Error("storing chunk failed", zap.Int("index", index), zap.Error(err))
		respond(ctx, http.StatusInternalServerError, models.CodeWriteFailure, "Error storing chunk", nil)
		return
	}
	h.logger.Info("received chunk", zap.Int("index", accepted))
	respond(ctx, http.StatusOK, models.CodeOK, fmt.Sprintf("Chunk %d uploaded successfully", accepted), models.ChunkAck{Index: accepted})
}

// Finalize 合并分片
func (h *Handler) Finalize(ctx *gin.Context) {
	rawTotal := ctx.Query(fieldTotalChunks)
	if rawTotal == "" {
		rawTotal = ctx.PostForm(fieldTotalChunks)
	}
	total := 0
	if rawTotal != "" {
		var err error
		total, err = parseDecimal(rawTotal)
		if err != nil {
			respond(ctx, http.StatusBadRequest, models.CodeMalformed, fmt.Sprintf("Invalid total chunks %q", rawTotal), nil)
			return
		}
		if h.limits.MaxChunks > 0 && total > h.limits.MaxChunks {
			respond(ctx, http.StatusBadRequest, models.CodeMalformed, fmt.Sprintf("Total chunks %d exceeds limit of %d", total, h.limits.MaxChunks), nil)
			return
		}
	}

	result, err := h.acc.Finalize(ctx.Request.Context(), total)
	if !errors.Is(err, models.ErrFinalizeInProgress) {
		// 客户端断开也要完成通知
		notifyCtx := context.WithoutCancel(ctx.Request.Context())
		if nerr := h.notifier.Notify(notifyCtx, outcomeOf(result, err)); nerr != nil {
			h.logger.Warn("notifying finalize outcome failed", zap.Error(nerr))
		}
	}

	switch {
	case err == nil:
		respond(ctx, http.StatusOK, models.CodeOK, "Video file saved successfully", result)
	case errors.Is(err, models.ErrIncompleteUpload):
		missing, _ := models.MissingIndex(err)
		respond(ctx, http.StatusBadRequest, models.CodeIncomplete, fmt.Sprintf("Not all chunks have been uploaded: missing chunk %d", missing), models.MissingChunk{Missing: missing})
	case errors.Is(err, models.ErrNothingToFinalize):
		respond(ctx, http.StatusBadRequest, models.CodeNothingToFinalize, "No chunks have been uploaded", nil)
	case errors.Is(err, models.ErrMalformedSubmission):
		respond(ctx, http.StatusBadRequest, models.CodeMalformed, err.Error(), nil)
	case errors.Is(err, models.ErrFinalizeInProgress):
		respond(ctx, http.StatusConflict, models.CodeFinalizeInProgress, "Finalize already in progress", nil)
	default:
		h.logger.Error("finalize failed", zap.Error(err))
		respond(ctx, http.StatusInternalServerError, models.CodeWriteFailure, "Error saving video file", nil)
	}
}

// Status 返回当前会话的接收情况
func (h *Handler) Status(ctx *gin.Context) {
	info, err := h.acc.Info(ctx.Request.Context())
	if err != nil {
		h.logger.Error("reading session status failed", zap.Error(err))
		respond(ctx, http.StatusInternalServerError, models.CodeWriteFailure, "Error reading status", nil)
		return
	}
	respond(ctx, http.StatusOK, models.CodeOK, "ok", info)
}

func (h *Handler) Healthz(ctx *gin.Context) {
	respond(ctx, http.StatusOK, models.CodeOK, "ok", nil)
}

// parseDecimal 只接受不带符号的十进制数字
func parseDecimal(raw string) (int, error) {
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid decimal %q", raw)
		}
	}
	return strconv.Atoi(raw)
}

func respond(ctx *gin.Context, status, code int, msg string, data any) {
	body := models.ResponseData{Code: code, Msg: msg}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, models.ResponseData{Code: models.CodeWriteFailure, Msg: "Error encoding response"})
			return
		}
		body.Data = raw
	}
	ctx.JSON(status, body)
}
