// internal/service/order/domain/events.go
package domain

import "time"

// OrderPlacedItem 是事件里的订单明细。
type OrderPlacedItem struct {
	ProductID uint64  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// OrderPlaced 在订单确认落库后对外发布，供下游（推送、结算、报表）消费。
type OrderPlaced struct {
	OrderID     string            `json:"orderId"`
	UserID      string            `json:"userId"`
	Items       []OrderPlacedItem `json:"items"`
	TotalAmount float64           `json:"totalAmount"`
	Status      Status            `json:"status"`
	PlacedAt    time.Time         `json:"placedAt"`
}

// NewOrderPlaced 从订单聚合构造事件。
func NewOrderPlaced(order *Order) *OrderPlaced {
	items := make([]OrderPlacedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderPlacedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return &OrderPlaced{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Items:       items,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		PlacedAt:    time.Now(),
	}
}
