package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/motongxue/chunkedRecordTransfer/utils"
)

// Server 组装 Accumulator、存储、通知与 gin 路由
type Server struct {
	cfg         *utils.Config
	engine      *gin.Engine
	acc         *Accumulator
	redisClient *redis.Client
	logger      *zap.Logger
}

func New(ctx context.Context, cfg *utils.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{cfg: cfg, logger: logger}

	if cfg.Redis.Addr != "" {
		// 创建一个Redis客户端连接
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		// 使用Ping检查是否成功连接到Redis
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			s.redisClient.Close()
			return nil, fmt.Errorf("failed to connect to redis %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr), zap.Int("db", cfg.Redis.DB))
	}

	var store ChunkStore = NewMemoryStore()
	if cfg.Server.Store == "redis" {
		if s.redisClient == nil {
			return nil, errors.New("redis store requires redis.addr")
		}
		store = NewRedisStore(s.redisClient, cfg.Redis.KeyPrefix)
	}
	sink := &FileSink{Dir: cfg.Server.OutputDir, Name: cfg.Server.OutputName}
	s.acc = NewAccumulator(store, sink, logger.Named("accumulator"))
	// 只支持一个会话，启动时丢弃上次遗留的分片
	if err := s.acc.Reset(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("resetting chunk store: %w", err)
	}

	notifiers := Notifiers{NewLogNotifier(logger.Named("notifier"))}
	if s.redisClient != nil && cfg.Redis.Channel != "" {
		notifiers = append(notifiers, NewRedisNotifier(s.redisClient, cfg.Redis.Channel))
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.MaxMultipartMemory = cfg.Server.MaxChunkBytes
	s.engine.Use(requestLogger(logger.Named("http")), gin.Recovery())
	RegisterRoutes(s.engine, NewHandler(s.acc, notifiers, logger.Named("handler"), Limits{
		MaxChunkBytes: cfg.Server.MaxChunkBytes,
		MaxChunks:     cfg.Server.MaxChunks,
	}))
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 监听 httpPort 直到 ctx 结束
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Server.HttpPort,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) Close() error {
	if s.redisClient != nil {
		return s.redisClient.Close()
	}
	return nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		logger.Debug("request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
