package repository

import (
	"context"
	"time"

	"FlowScan/internal/domain/models"
	pkgredis "FlowScan/pkg/redis"
)

// RedisClient is the part of pkg/redis.Client the sink needs.
type RedisClient interface {
	Publish(ctx context.Context, channel string, value interface{}) (int64, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Close() error
}

var _ RedisClient = (*pkgredis.Client)(nil)

// RedisSink pushes alerts over pub/sub and keeps the latest report of each mode
// under a key for external dashboards.
type RedisSink struct {
	client  RedisClient
	channel string
	ttl     time.Duration
}

func NewRedisSink(client RedisClient, channel string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, channel: channel, ttl: ttl}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) PublishFlowReport(ctx context.Context, r *models.FlowReport) error {
	return s.client.Set(ctx, "flow:latest", r, s.ttl)
}

func (s *RedisSink) PublishPatternSignal(ctx context.Context, sig models.PatternSignal) error {
	_, err := s.client.Publish(ctx, s.channel, sig)
	return err
}

func (s *RedisSink) PublishPatternReport(ctx context.Context, r *models.PatternReport) error {
	return s.client.Set(ctx, "patterns:latest", r, s.ttl)
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
