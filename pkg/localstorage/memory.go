package localstorage

import (
	"context"
	"sync"
)

var _ Storage = (*Memory)(nil)

// Memory はプロセス内のmapに値を保持するStorage実装。
// テストや永続化が不要な一時利用で使用する。
type Memory struct {
	mu     sync.RWMutex
	items  map[string]string
	closed bool
}

// NewMemory は空のインメモリストアを生成する。
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

// GetItem はキーに対応する値を返す。
func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem はキーに値を保存する。
func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.items[key] = value
	return nil
}

// RemoveItem はキーを削除する。
func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

// Close はストアを閉じる。以降の操作はErrClosedを返す。
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
