// internal/service/order/domain/order.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderItem 是订单明细值对象，单价在下单时刻快照。
type OrderItem struct {
	ProductID uint64
	Quantity  int
	UnitPrice float64
}

// Subtotal 是该行金额。
func (i OrderItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Order 是订单聚合的根实体。
type Order struct {
	ID          string
	UserID      string
	Items       []OrderItem
	Status      Status
	TotalAmount float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder 创建一个待处理的新订单并计算总额。
func NewOrder(userID string, items []OrderItem) (*Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidOrder)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrInvalidOrder)
	}
	var total float64
	for _, item := range items {
		if item.ProductID == 0 {
			return nil, fmt.Errorf("%w: item product id is required", ErrInvalidOrder)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", ErrInvalidOrder)
		}
		if item.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: item unit price must not be negative", ErrInvalidOrder)
		}
		total += item.Subtotal()
	}

	now := time.Now()
	return &Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		Items:       items,
		Status:      StatusPending,
		TotalAmount: total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkConfirmed 在全部预占成功后把订单置为已确认。
func (o *Order) MarkConfirmed() {
	o.Status = StatusConfirmed
	o.UpdatedAt = time.Now()
}

// SetStatus 直接覆盖状态。管理接口用，除枚举合法性外不校验流转路径，
// 比如 DELIVERED 也可以被改回 PENDING。
func (o *Order) SetStatus(status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}
