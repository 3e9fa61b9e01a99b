package kvstore

import (
	"context"
	"errors"

	"github.com/Kate44725/computing-management/pkg/redis"
)

// redisBackend 由 pkg/redis.Client 满足，测试时可替换
type redisBackend interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte) error
}

// Redis 以 Redis 字符串保存集合
type Redis struct {
	client redisBackend
}

// NewRedis 基于已连接的 Redis 客户端创建存储
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.GetBytes(ctx, key)
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrKeyNotFound
	}
	return b, err
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.SetBytes(ctx, key, value)
}
