// internal/service/order/application/dto.go
package application

import (
	"vertex/internal/service/order/domain"
)

// CreateOrderItem 是下单请求里的一行明细。
type CreateOrderItem struct {
	ProductID uint64  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// CreateOrderRequest 是创建订单用例的输入数据。
type CreateOrderRequest struct {
	UserID string            `json:"userId"`
	Items  []CreateOrderItem `json:"items"`
}

// ToOrderItems 转换为领域层的明细值对象。
func (req *CreateOrderRequest) ToOrderItems() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return items
}
