// internal/service/order/domain/repository.go
package domain

import "context"

// OrderRepository 定义了订单聚合的持久化接口。
// 它位于领域层，由基础设施层实现。
type OrderRepository interface {
	// Save 保存订单聚合（创建或更新）。
	Save(ctx context.Context, order *Order) error

	// FindByID 根据 ID 查找订单。
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByUserID 返回某用户的全部订单。
	FindByUserID(ctx context.Context, userID string) ([]*Order, error)

	// FindByStatus 返回某状态下的全部订单。
	FindByStatus(ctx context.Context, status Status) ([]*Order, error)

	// FindAll 返回全部订单。
	FindAll(ctx context.Context) ([]*Order, error)

	// DeleteByID 删除订单，不存在时返回 ErrNotFound。
	DeleteByID(ctx context.Context, id string) error
}
