// internal/service/order/domain/port/inventory.go
package port

import "context"

// InventoryService 是库存服务的出站端口。
// 下单流程只依赖这两个操作，释放/确认不在本服务的调用面上。
type InventoryService interface {
	// CheckAvailability 查询某商品的可用量是否满足请求量。
	CheckAvailability(ctx context.Context, productID uint64, quantity int) (bool, error)

	// ReserveStock 预占库存，可用量不足时返回 false。
	ReserveStock(ctx context.Context, productID uint64, quantity int) (bool, error)
}
