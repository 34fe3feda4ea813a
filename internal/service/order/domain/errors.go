// internal/service/order/domain/errors.go
package domain

import "errors"

var (
	// ErrNotFound 订单不存在。
	ErrNotFound = errors.New("order not found")
	// ErrInvalidOrder 下单请求本身不合法（缺用户、空明细、非正数量等）。
	ErrInvalidOrder = errors.New("invalid order request")
	// ErrInsufficientStock 某商品可用库存不足，下单被拒绝。
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInventoryUnreachable 库存服务不可达或预占调用失败，与缺货是两种失败。
	ErrInventoryUnreachable = errors.New("inventory service unreachable")
	// ErrInvalidStatus 状态值不在枚举内。
	ErrInvalidStatus = errors.New("invalid order status")
)
