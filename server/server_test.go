package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/motongxue/chunkedRecordTransfer/utils"
)

func testConfig(t *testing.T) *utils.Config {
	t.Helper()
	return &utils.Config{
		Server: utils.ServerConfig{
			HttpPort:      "0",
			OutputDir:     t.TempDir(),
			OutputName:    "final_video.webm",
			Store:         "memory",
			MaxChunkBytes: 1 << 20,
			MaxChunks:     1000,
		},
		Redis: utils.RedisConfig{KeyPrefix: "record:"},
	}
}

func TestNewWithRedisStoreClearsStaleChunks(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.HSet("record:chunks", "5", "stale")

	cfg := testConfig(t)
	cfg.Server.Store = "redis"
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Channel = "record:finalized"

	s, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, mr.Exists("record:chunks"))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewFailsWithoutRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Server.Store = "redis"
	_, err = New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	s, err := New(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
