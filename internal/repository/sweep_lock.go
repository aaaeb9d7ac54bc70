package repository

import (
	"context"
	"time"
)

// 複数プロセスで同じtickにスイープしないためのリース。
// 取れなくても正しさは条件付き更新で守られる（最適化のみ）。
type SweepLock interface {
	TryAcquire(ctx context.Context, ttl time.Duration) (bool, error)
}

// ロックなし（単一プロセス/redisなし）
type NoopSweepLock struct{}

func (NoopSweepLock) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	return true, nil
}
