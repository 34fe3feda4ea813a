// internal/service/order/infrastructure/models.go
package infrastructure

import (
	"time"

	"vertex/internal/service/order/domain"
)

// OrderModel 是订单聚合在数据库中的表示，明细单独一张表。
type OrderModel struct {
	ID          string           `gorm:"primaryKey;size:36"`
	UserID      string           `gorm:"column:user_id;index;not null"`
	Status      string           `gorm:"index;not null"`
	TotalAmount float64          `gorm:"column:total_amount;not null"`
	Items       []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

type OrderItemModel struct {
	ID        uint64  `gorm:"primaryKey"`
	OrderID   string  `gorm:"column:order_id;index;size:36;not null"`
	ProductID uint64  `gorm:"column:product_id;not null"`
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"column:unit_price;not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

func toOrderModel(o *domain.Order) *OrderModel {
	items := make([]OrderItemModel, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemModel{
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return &OrderModel{
		ID:          o.ID,
		UserID:      o.UserID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toDomainOrder(m *OrderModel) *domain.Order {
	items := make([]domain.OrderItem, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return &domain.Order{
		ID:          m.ID,
		UserID:      m.UserID,
		Items:       items,
		Status:      domain.Status(m.Status),
		TotalAmount: m.TotalAmount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
