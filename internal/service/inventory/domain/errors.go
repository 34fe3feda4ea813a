// internal/service/inventory/domain/errors.go
package domain

import "errors"

var (
	// ErrNotFound 表示目标库存记录不存在。
	ErrNotFound = errors.New("stock record not found")

	// ErrConflict 表示同一商品已存在库存记录（productId 唯一）。
	ErrConflict = errors.New("stock record already exists for product")

	// ErrInvalidQuantity 表示数量参数非法（必须为正数），在触碰任何记录之前拒绝。
	ErrInvalidQuantity = errors.New("quantity must be positive")
)
