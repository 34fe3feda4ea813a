// internal/service/inventory/application/locker.go
package application

import (
	"context"
	"sync"
)

// Locker 对单个商品的台账变更做互斥。
// 默认实现是进程内按商品分键的互斥锁；多实例部署可换成
// 基础设施层提供的 ZooKeeper 分布式锁。
type Locker interface {
	// Acquire 获取 productID 对应的锁，返回释放函数。
	Acquire(ctx context.Context, productID uint64) (release func(), err error)
}

type localLocker struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewLocalLocker 返回进程内的按商品互斥锁。
func NewLocalLocker() Locker {
	return &localLocker{locks: make(map[uint64]*sync.Mutex)}
}

func (l *localLocker) Acquire(_ context.Context, productID uint64) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[productID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[productID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
