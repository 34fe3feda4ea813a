// internal/service/order/infrastructure/memory_repository.go
package infrastructure

import (
	"context"
	"sync"

	"vertex/internal/service/order/domain"
)

// MemoryOrderRepository 是进程内的 OrderRepository 实现，
// 用于测试和无数据库的本地运行模式。
type MemoryOrderRepository struct {
	mu   sync.RWMutex
	byID map[string]*domain.Order
}

var _ domain.OrderRepository = (*MemoryOrderRepository)(nil)

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{byID: make(map[string]*domain.Order)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	clone.Items = make([]domain.OrderItem, len(o.Items))
	copy(clone.Items, o.Items)
	return &clone
}

func (r *MemoryOrderRepository) Save(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[order.ID] = cloneOrder(order)
	return nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *MemoryOrderRepository) FindByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var orders []*domain.Order
	for _, order := range r.byID {
		if order.UserID == userID {
			orders = append(orders, cloneOrder(order))
		}
	}
	return orders, nil
}

func (r *MemoryOrderRepository) FindByStatus(_ context.Context, status domain.Status) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var orders []*domain.Order
	for _, order := range r.byID {
		if order.Status == status {
			orders = append(orders, cloneOrder(order))
		}
	}
	return orders, nil
}

func (r *MemoryOrderRepository) FindAll(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := make([]*domain.Order, 0, len(r.byID))
	for _, order := range r.byID {
		orders = append(orders, cloneOrder(order))
	}
	return orders, nil
}

func (r *MemoryOrderRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
