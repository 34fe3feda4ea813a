// internal/service/inventory/domain/repository.go
package domain

import "context"

// StockRepository 定义了库存聚合的持久化接口，由基础设施层实现。
type StockRepository interface {
	// Create 新建记录，productId 已存在时返回 ErrConflict。
	Create(ctx context.Context, record *StockRecord) error

	// Save 保存一条已存在记录的变更。
	Save(ctx context.Context, record *StockRecord) error

	// FindByID 按记录 ID 查找，不存在时返回 ErrNotFound。
	FindByID(ctx context.Context, id uint64) (*StockRecord, error)

	// FindByProductID 按商品 ID 查找，不存在时返回 ErrNotFound。
	FindByProductID(ctx context.Context, productID uint64) (*StockRecord, error)

	// FindAll 返回全部库存记录。
	FindAll(ctx context.Context) ([]*StockRecord, error)

	// DeleteByID 删除记录，不存在时返回 ErrNotFound。
	DeleteByID(ctx context.Context, id uint64) error
}
