// Package kvstore 提供整块读写的键值存储抽象。
// 每个 key 存放一个完整集合（JSON 数组），写入即整体替换，不提供事务。
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound key 从未写入过
var ErrKeyNotFound = errors.New("kvstore: key 不存在")

// Store 键值存储接口
type Store interface {
	// Get 读取 key 的完整值；key 不存在时返回 ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 整体覆盖 key 的值
	Set(ctx context.Context, key string, value []byte) error
}
