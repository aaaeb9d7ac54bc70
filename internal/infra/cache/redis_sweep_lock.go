package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sweepLockKey = "chefconnect:sweep:lock"

// RedisSweepLock はSETNXのリースで1tickに1プロセスだけスイープさせる。
// 解放はせずTTL切れに任せる（tick間隔より短いTTLを渡す）。
type RedisSweepLock struct {
	client *redis.Client
	owner  string
}

func NewRedisSweepLock(client *redis.Client, owner string) *RedisSweepLock {
	return &RedisSweepLock{client: client, owner: owner}
}

func (l *RedisSweepLock) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, sweepLockKey, l.owner, ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
