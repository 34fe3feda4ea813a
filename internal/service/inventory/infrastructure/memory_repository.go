// internal/service/inventory/infrastructure/memory_repository.go
package infrastructure

import (
	"context"
	"sync"

	"vertex/internal/service/inventory/domain"
)

// MemoryStockRepository 是进程内的 StockRepository 实现，
// 用于测试和无数据库的本地运行模式。
type MemoryStockRepository struct {
	mu     sync.RWMutex
	byID   map[uint64]*domain.StockRecord
	nextID uint64
}

var _ domain.StockRepository = (*MemoryStockRepository)(nil)

func NewMemoryStockRepository() *MemoryStockRepository {
	return &MemoryStockRepository{byID: make(map[uint64]*domain.StockRecord)}
}

func (r *MemoryStockRepository) Create(_ context.Context, record *domain.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.ProductID == record.ProductID {
			return domain.ErrConflict
		}
	}
	r.nextID++
	record.ID = r.nextID
	clone := *record
	r.byID[clone.ID] = &clone
	return nil
}

func (r *MemoryStockRepository) Save(_ context.Context, record *domain.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[record.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *record
	r.byID[clone.ID] = &clone
	return nil
}

func (r *MemoryStockRepository) FindByID(_ context.Context, id uint64) (*domain.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (r *MemoryStockRepository) FindByProductID(_ context.Context, productID uint64) (*domain.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.byID {
		if record.ProductID == productID {
			clone := *record
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryStockRepository) FindAll(_ context.Context) ([]*domain.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]*domain.StockRecord, 0, len(r.byID))
	for _, record := range r.byID {
		clone := *record
		records = append(records, &clone)
	}
	return records, nil
}

func (r *MemoryStockRepository) DeleteByID(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
