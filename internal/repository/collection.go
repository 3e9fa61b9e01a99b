package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Kate44725/computing-management/pkg/kvstore"
)

// ErrNotFound 集合中不存在该 id 的记录
var ErrNotFound = errors.New("记录不存在")

// Collection 单个集合的整块读写接口
// Load 返回完整集合（key 不存在时为空切片），Save 整体覆盖
type Collection[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
	GetByID(ctx context.Context, id string) (*T, error)
}

// collection Collection 的 kvstore 实现，值为 JSON 数组
type collection[T any] struct {
	store kvstore.Store
	key   string
	idOf  func(*T) string
}

func newCollection[T any](store kvstore.Store, key string, idOf func(*T) string) *collection[T] {
	return &collection[T]{store: store, key: key, idOf: idOf}
}

func (c *collection[T]) Load(ctx context.Context) ([]T, error) {
	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("读取集合 %s 失败: %w", c.key, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("解析集合 %s 失败: %w", c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *collection[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("序列化集合 %s 失败: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("写入集合 %s 失败: %w", c.key, err)
	}
	return nil
}

func (c *collection[T]) GetByID(ctx context.Context, id string) (*T, error) {
	items, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(items, id, c.idOf); i >= 0 {
		return &items[i], nil
	}
	return nil, ErrNotFound
}

// indexOf 返回 id 所在下标，不存在返回 -1
func indexOf[T any](items []T, id string, idOf func(*T) string) int {
	for i := range items {
		if idOf(&items[i]) == id {
			return i
		}
	}
	return -1
}
