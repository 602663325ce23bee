package server

import (
	"context"
	"fmt"
	"sort"
)

// ChunkStore 按 index 保存分片内容。实现不需要并发安全，所有调用都由 Accumulator 串行化
type ChunkStore interface {
	// Put 保存分片，同一 index 覆盖旧值
	Put(ctx context.Context, index int, payload []byte) error
	// Indices 返回已保存的 index，升序
	Indices(ctx context.Context) ([]int, error)
	// Load 按 indices 的顺序取出分片内容
	Load(ctx context.Context, indices []int) ([][]byte, error)
	// Clear 删除全部分片
	Clear(ctx context.Context) error
}

// MemoryStore 进程内的 ChunkStore
type MemoryStore struct {
	chunks map[int][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[int][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, index int, payload []byte) error {
	// 复制一份，调用方之后复用 payload 不影响已保存的内容
	s.chunks[index] = append([]byte(nil), payload...)
	return nil
}

func (s *MemoryStore) Indices(_ context.Context) ([]int, error) {
	indices := make([]int, 0, len(s.chunks))
	for idx := range s.chunks {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

func (s *MemoryStore) Load(_ context.Context, indices []int) ([][]byte, error) {
	chunks := make([][]byte, 0, len(indices))
	for _, idx := range indices {
		chunk, ok := s.chunks[idx]
		if !ok {
			return nil, fmt.Errorf("chunk %d not in store", idx)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.chunks = make(map[int][]byte)
	return nil
}
