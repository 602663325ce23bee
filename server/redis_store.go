package server

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-redis/redis/v8"
)

const chunksKey = "chunks"

// RedisStore 将分片保存在 Redis 的 hash 中，field 为 index
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, key: keyPrefix + chunksKey}
}

func (s *RedisStore) Put(ctx context.Context, index int, payload []byte) error {
	return s.client.HSet(ctx, s.key, strconv.Itoa(index), payload).Err()
}

func (s *RedisStore) Indices(ctx context.Context) ([]int, error) {
	fields, err := s.client.HKeys(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	indices := make([]int, 0, len(fields))
	for _, field := range fields {
		idx, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("unexpected field %q in %s", field, s.key)
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

func (s *RedisStore) Load(ctx context.Context, indices []int) ([][]byte, error) {
	if len(indices) == 0 {
		return nil, nil
	}
	fields := make([]string, len(indices))
	for i, idx := range indices {
		fields[i] = strconv.Itoa(idx)
	}
	values, err := s.client.HMGet(ctx, s.key, fields...).Result()
	if err != nil {
		return nil, err
	}
	chunks := make([][]byte, len(values))
	for i, value := range values {
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("chunk %d not in store", indices[i])
		}
		chunks[i] = []byte(str)
	}
	return chunks, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
