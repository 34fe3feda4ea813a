// internal/service/inventory/infrastructure/zk_locker.go
package infrastructure

import (
	"context"
	"fmt"

	"vertex/internal/pkg/logger"
	"vertex/internal/pkg/zookeeper"
	"vertex/internal/service/inventory/application"
)

// ZkLocker 基于 ZooKeeper 分布式锁实现 application.Locker，
// 多实例部署时对同一商品的台账变更做跨进程串行化。
type ZkLocker struct {
	conn *zookeeper.Conn
}

var _ application.Locker = (*ZkLocker)(nil)

func NewZkLocker(conn *zookeeper.Conn) *ZkLocker {
	return &ZkLocker{conn: conn}
}

func (z *ZkLocker) Acquire(ctx context.Context, productID uint64) (func(), error) {
	lock, err := zookeeper.NewDistributedLock(z.conn, fmt.Sprintf("stock-%d", productID))
	if err != nil {
		return nil, fmt.Errorf("init lock for product %d: %w", productID, err)
	}
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire lock for product %d: %w", productID, err)
	}
	release := func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Uint64("product_id", productID).Msg("Failed to release zookeeper lock")
		}
	}
	return release, nil
}
