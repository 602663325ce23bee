package server

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/motongxue/chunkedRecordTransfer/models"
)

// Accumulator 保存一次录制会话的分片，并在 Finalize 时按 index 顺序合并为一个文件。
//
// 分片的写入、expected 的更新以及整个 Finalize 都在 mu 下执行，
// 因此 Finalize 校验和写文件期间到达的分片会等到 Finalize 结束后才被接收。
type Accumulator struct {
	mu       sync.Mutex
	store    ChunkStore
	sink     Sink
	logger   *zap.Logger
	expected int
	state    models.SessionState

	// 正在 Finalize，第二个 Finalize 直接拒绝
	finalizing atomic.Bool
	now        func() time.Time
}

func NewAccumulator(store ChunkStore, sink Sink, logger *zap.Logger) *Accumulator {
	return &Accumulator{
		store:  store,
		sink:   sink,
		logger: logger,
		state:  models.StateEmpty,
		now:    time.Now,
	}
}

// AcceptChunk 保存 index 处的分片，重复的 index 覆盖旧值
func (a *Accumulator) AcceptChunk(ctx context.Context, index int, payload []byte) (int, error) {
	if index < 0 {
		return 0, fmt.Errorf("%w: negative chunk index %d", models.ErrMalformedSubmission, index)
	}
	if len(payload) == 0 {
		return 0, fmt.Errorf("%w: empty payload for chunk %d", models.ErrMalformedSubmission, index)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Put(ctx, index, payload); err != nil {
		return 0, fmt.Errorf("storing chunk %d: %w", index, err)
	}
	if index+1 > a.expected {
		a.expected = index + 1
	}
	a.state = models.StateAccumulating
	a.logger.Debug("received chunk", zap.Int("index", index), zap.Int("bytes", len(payload)), zap.Int("expected", a.expected))
	return index, nil
}

// Finalize 校验 0..expected-1 全部到齐后按顺序写出文件并清空会话。
// declaredTotal > 0 时表示客户端声明的总分片数，用于发现丢失的最后一个分片。
// 缺失分片或写文件失败时会话保持不变，可以补传后再次 Finalize。
func (a *Accumulator) Finalize(ctx context.Context, declaredTotal int) (*models.FinalizeResult, error) {
	if declaredTotal < 0 {
		return nil, fmt.Errorf("%w: negative total %d", models.ErrMalformedSubmission, declaredTotal)
	}
	if !a.finalizing.CompareAndSwap(false, true) {
		return nil, models.ErrFinalizeInProgress
	}
	defer a.finalizing.Store(false)

	a.mu.Lock()
	defer a.mu.Unlock()

	// 声明的总数只用于本次校验，失败时不写回会话
	expected := max(a.expected, declaredTotal)
	if expected == 0 {
		return nil, models.ErrNothingToFinalize
	}
	prev := a.state
	a.state = models.StateFinalizing
	// 未成功时恢复原状态，成功时下面会改为 Empty
	defer func() {
		if a.state == models.StateFinalizing {
			a.state = prev
		}
	}()

	indices, err := a.store.Indices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	if missing := firstMissing(indices, expected); missing >= 0 {
		a.logger.Warn("finalize rejected, chunk missing", zap.Int("missing", missing), zap.Int("expected", expected), zap.Int("received", len(indices)))
		return nil, &models.IncompleteUploadError{Missing: missing}
	}

	order := make([]int, expected)
	for i := range order {
		order[i] = i
	}
	chunks, err := a.store.Load(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	result, err := a.sink.Write(ctx, chunks)
	if err != nil {
		a.logger.Error("writing output failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", models.ErrWriteFailure, err)
	}
	// 文件已写出，清空失败时保留会话，重试 Finalize 会重写同一个文件
	if err := a.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clearing session: %w", err)
	}

	result.ID = uuid.NewString()
	result.Chunks = expected
	result.FinishedAt = a.now()
	a.expected = 0
	a.state = models.StateEmpty
	return result, nil
}

// Info 返回当前会话的快照
func (a *Accumulator) Info(ctx context.Context) (models.TransferInfo, error) {
	if a.finalizing.Load() {
		return models.TransferInfo{State: models.StateFinalizing, Unreceived: []int{}}, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	indices, err := a.store.Indices(ctx)
	if err != nil {
		return models.TransferInfo{}, fmt.Errorf("listing chunks: %w", err)
	}
	info := models.TransferInfo{
		State:      a.state,
		Expected:   a.expected,
		Received:   len(indices),
		Unreceived: []int{},
	}
	// indices 升序，只记录相邻 index 之间的空缺
	next := 0
	for _, idx := range indices {
		if idx >= a.expected {
			break
		}
		for ; next < idx; next++ {
			info.Unreceived = append(info.Unreceived, next)
		}
		next = idx + 1
	}
	for ; next < a.expected; next++ {
		info.Unreceived = append(info.Unreceived, next)
	}
	return info, nil
}

// Reset 丢弃当前会话的全部分片
func (a *Accumulator) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	a.expected = 0
	a.state = models.StateEmpty
	return nil
}

// firstMissing 返回 0..expected-1 中第一个不在 indices 里的值，全部存在时返回 -1。
// indices 必须升序且不重复。
func firstMissing(indices []int, expected int) int {
	next := 0
	for _, idx := range indices {
		if idx >= expected {
			break
		}
		if idx != next {
			return next
		}
		next++
	}
	if next < expected {
		return next
	}
	return -1
}
