package service

import (
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/redis"
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	orderLockTTL     = 5 * time.Second
	orderLockRetries = 40
)

// OrderLocker 串行化同一帖子的排序值分配
type OrderLocker interface {
	WithPostLock(ctx context.Context, postID uint64, fn func(ctx context.Context) error) error
}

// NewOrderLocker 配置了 Redis 时使用分布式锁，否则直接执行 (读后写存在竞争)
func NewOrderLocker() OrderLocker {
	if redis.Enabled() {
		return &RedisOrderLocker{ttl: orderLockTTL, retries: orderLockRetries}
	}
	return NoopOrderLocker{}
}

type RedisOrderLocker struct {
	ttl     time.Duration
	retries int
}

func (s *RedisOrderLocker) WithPostLock(ctx context.Context, postID uint64, fn func(ctx context.Context) error) error {
	key := consts.PostOrderLock + strconv.FormatUint(postID, 10)
	owner := uuid.NewString()

	ok, err := redis.TryLock(ctx, key, owner, s.ttl, s.retries)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPostBusy
	}
	defer redis.UnLock(context.WithoutCancel(ctx), key, owner)

	return fn(ctx)
}

type NoopOrderLocker struct{}

func (NoopOrderLocker) WithPostLock(ctx context.Context, _ uint64, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
