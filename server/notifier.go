package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/motongxue/chunkedRecordTransfer/models"
)

// Notifier 接收每一次合并的结果
type Notifier interface {
	Notify(ctx context.Context, outcome models.FinalizeOutcome) error
}

// LogNotifier 只记录日志
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, outcome models.FinalizeOutcome) error {
	if outcome.Success {
		n.logger.Info("recording finalized",
			zap.String("id", outcome.Result.ID),
			zap.String("path", outcome.Result.Path),
			zap.Int("chunks", outcome.Result.Chunks),
			zap.Int64("size", outcome.Result.Size),
			zap.String("md5", outcome.Result.MD5))
		return nil
	}
	fields := []zap.Field{zap.String("error", outcome.Error)}
	if outcome.Missing != nil {
		fields = append(fields, zap.Int("missing", *outcome.Missing))
	}
	n.logger.Warn("recording finalize failed", fields...)
	return nil
}

// RedisNotifier 将结果以 JSON 发布到 Redis 频道
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, outcome models.FinalizeOutcome) error {
	body, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("redis notifier: marshal outcome: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, body).Err(); err != nil {
		return fmt.Errorf("redis notifier: publish: %w", err)
	}
	return nil
}

// Notifiers 依次通知所有 Notifier
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, outcome models.FinalizeOutcome) error {
	var errs []error
	for _, n := range ns {
		if err := n.Notify(ctx, outcome); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// outcomeOf 将 Finalize 的返回值转换为通知内容
func outcomeOf(result *models.FinalizeResult, err error) models.FinalizeOutcome {
	if err == nil {
		return models.FinalizeOutcome{Success: true, Result: result}
	}
	outcome := models.FinalizeOutcome{Error: err.Error()}
	if missing, ok := models.MissingIndex(err); ok {
		outcome.Missing = &missing
	}
	return outcome
}
