package kvstore

import (
	"context"
	"sync"
)

// Memory 进程内存储，用于开发模式与测试
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory 创建空的内存存储
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	// 返回副本，调用方修改不影响已存储的值
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}
