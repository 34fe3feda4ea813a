// internal/service/inventory/application/service.go
package application

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"vertex/internal/pkg/logger"
	"vertex/internal/service/inventory/domain"
)

// 台账变更操作名，透传给监听方（缓存失效、看板推送、低库存告警）。
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpReserve = "reserve"
	OpRelease = "release"
	OpConfirm = "confirm"
	OpRestock = "restock"
	OpDelete  = "delete"
)

// ChangeListener 在一次台账变更成功提交后被调用。
// 监听方不允许让主流程失败，所以没有返回值。
type ChangeListener interface {
	StockChanged(ctx context.Context, record *domain.StockRecord, op string)
}

// StockCache 是管理读路径上的可选缓存。
// 预占/校验路径永远不读缓存，台账本身是唯一事实来源。
type StockCache interface {
	Get(ctx context.Context, productID uint64) (*domain.StockRecord, bool)
	Set(ctx context.Context, record *domain.StockRecord)
	Invalidate(ctx context.Context, productID uint64)
}

// UpdateStockInput 是管理侧直接覆盖描述性字段的输入。
// 它绕过 reserve/confirm 的记账逻辑，不属于预占协议。
type UpdateStockInput struct {
	Quantity          int
	WarehouseLocation string
	ReorderLevel      int
}

// InventoryService 是库存台账的应用服务，所有同商品的变更在这里被串行化。
type InventoryService struct {
	repo      domain.StockRepository
	locks     Locker
	tracer    trace.Tracer
	cache     StockCache
	listeners []ChangeListener
}

func NewInventoryService(repo domain.StockRepository, locks Locker, tracer trace.Tracer) *InventoryService {
	return &InventoryService{repo: repo, locks: locks, tracer: tracer}
}

// SetCache 挂接管理读路径缓存。
func (s *InventoryService) SetCache(cache StockCache) {
	s.cache = cache
}

// AddListener 注册台账变更监听方。
func (s *InventoryService) AddListener(l ChangeListener) {
	s.listeners = append(s.listeners, l)
}

// CheckAvailability 判断可用量是否满足请求。只读，无任何副作用。
// 记录不存在时返回 false 而不是错误。
func (s *InventoryService) CheckAvailability(ctx context.Context, productID uint64, qty int) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.CheckAvailability")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", int64(productID)), attribute.Int("quantity", qty))

	if qty <= 0 {
		return false, fmt.Errorf("check availability for product %d: %w", productID, domain.ErrInvalidQuantity)
	}

	record, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		span.RecordError(err)
		return false, err
	}
	return record.HasAvailable(qty), nil
}

// ReserveStock 预占库存。记录不存在或可用量不足时返回 false 且不做任何修改。
func (s *InventoryService) ReserveStock(ctx context.Context, productID uint64, qty int) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.ReserveStock")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", int64(productID)), attribute.Int("quantity", qty))

	if qty <= 0 {
		return false, fmt.Errorf("reserve for product %d: %w", productID, domain.ErrInvalidQuantity)
	}

	release, err := s.locks.Acquire(ctx, productID)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	defer release()

	record, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Ctx(ctx).Warn().Uint64("product_id", productID).Msg("Reserve failed: stock record not found")
			recordOperation(OpReserve, "rejected")
			return false, nil
		}
		span.RecordError(err)
		return false, err
	}

	if !record.Reserve(qty) {
		logger.Ctx(ctx).Warn().
			Uint64("product_id", productID).
			Int("available", record.Available()).
			Int("requested", qty).
			Msg("Reserve failed: insufficient stock")
		recordOperation(OpReserve, "rejected")
		return false, nil
	}

	if err := s.repo.Save(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist reservation")
		recordOperation(OpReserve, "error")
		return false, err
	}

	s.notify(ctx, record, OpReserve)
	recordOperation(OpReserve, "ok")
	return true, nil
}

// ReleaseStock 释放预占。超量释放按 0 截断，只要记录存在就返回 true。
func (s *InventoryService) ReleaseStock(ctx context.Context, productID uint64, qty int) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.ReleaseStock")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", int64(productID)), attribute.Int("quantity", qty))

	if qty <= 0 {
		return false, fmt.Errorf("release for product %d: %w", productID, domain.ErrInvalidQuantity)
	}

	release, err := s.locks.Acquire(ctx, productID)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	defer release()

	record, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		span.RecordError(err)
		return false, err
	}

	record.Release(qty)
	if err := s.repo.Save(ctx, record); err != nil {
		span.RecordError(err)
		recordOperation(OpRelease, "error")
		return false, err
	}

	s.notify(ctx, record, OpRelease)
	recordOperation(OpRelease, "ok")
	return true, nil
}

// ConfirmReservation 把预占转为实际扣减。
// 不校验 qty 是否已被预占，可能把 Quantity 扣成负数（见 StockRecord.Confirm）。
func (s *InventoryService) ConfirmReservation(ctx context.Context, productID uint64, qty int) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.ConfirmReservation")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", int64(productID)), attribute.Int("quantity", qty))

	if qty <= 0 {
		return false, fmt.Errorf("confirm for product %d: %w", productID, domain.ErrInvalidQuantity)
	}

	release, err := s.locks.Acquire(ctx, productID)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	defer release()

	record, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		span.RecordError(err)
		return false, err
	}

	record.Confirm(qty)
	if record.Quantity < 0 {
		logger.Ctx(ctx).Error().
			Uint64("product_id", productID).
			Int("quantity", record.Quantity).
			Msg("Confirm drove quantity negative")
	}
	if err := s.repo.Save(ctx, record); err != nil {
		span.RecordError(err)
		recordOperation(OpConfirm, "error")
		return false, err
	}

	s.notify(ctx, record, OpConfirm)
	recordOperation(OpConfirm, "ok")
	return true, nil
}

// RestockInventory 入库补货，记录不存在时返回 ErrNotFound。
func (s *InventoryService) RestockInventory(ctx context.Context, productID uint64, qty int) (*domain.StockRecord, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.Restock")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", int64(productID)), attribute.Int("quantity", qty))

	if qty <= 0 {
		return nil, fmt.Errorf("restock for product %d: %w", productID, domain.ErrInvalidQuantity)
	}

	release, err := s.locks.Acquire(ctx, productID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer release()

	record, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}

	record.Restock(qty)
	if err := s.repo.Save(ctx, record); err != nil {
		span.RecordError(err)
		recordOperation(OpRestock, "error")
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Uint64("product_id", productID).
		Int("quantity", record.Quantity).
		Msg("Restocked product")
	s.notify(ctx, record, OpRestock)
	recordOperation(OpRestock, "ok")
	return record, nil
}

// CreateInventory 新建库存记录，同商品已有记录时返回 ErrConflict。
func (s *InventoryService) CreateInventory(ctx context.Context, record *domain.StockRecord) (*domain.StockRecord, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.Create")
	defer span.End()

	if record.Quantity < 0 || record.Reserved < 0 {
		return nil, fmt.Errorf("create stock for product %d: %w", record.ProductID, domain.ErrInvalidQuantity)
	}

	if err := s.repo.Create(ctx, record); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.notify(ctx, record, OpCreate)
	recordOperation(OpCreate, "ok")
	return record, nil
}

// UpdateInventory 管理侧覆盖描述性字段，绕过预占记账。
func (s *InventoryService) UpdateInventory(ctx context.Context, id uint64, in UpdateStockInput) (*domain.StockRecord, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.Update")
	defer span.End()

	// 第一次读只为解析 productID 拿锁；拿到锁后必须重读，
	// 否则锁外读到的快照会把并发预占静默写回去。
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, record.ProductID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer release()

	record, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	record.Quantity = in.Quantity
	record.WarehouseLocation = in.WarehouseLocation
	record.ReorderLevel = in.ReorderLevel
	if err := s.repo.Save(ctx, record); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.notify(ctx, record, OpUpdate)
	recordOperation(OpUpdate, "ok")
	return record, nil
}

// GetInventoryByID 按记录 ID 查询。
func (s *InventoryService) GetInventoryByID(ctx context.Context, id uint64) (*domain.StockRecord, error) {
	return s.repo.FindByID(ctx, id)
}

// GetInventoryByProductID 按商品查询，管理读路径，带可选缓存。
func (s *InventoryService) GetInventoryByProductID(ctx context.Context, productID uint64) (*domain.StockRecord, error) {
	if s.cache != nil {
		if record, ok := s.cache.Get(ctx, productID); ok {
			return record, nil
		}
	}
	record, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, record)
	}
	return record, nil
}

// GetAllInventories 返回全部库存记录。
func (s *InventoryService) GetAllInventories(ctx context.Context) ([]*domain.StockRecord, error) {
	return s.repo.FindAll(ctx)
}

// DeleteInventory 删除库存记录。
func (s *InventoryService) DeleteInventory(ctx context.Context, id uint64) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, record, OpDelete)
	recordOperation(OpDelete, "ok")
	return nil
}

func (s *InventoryService) notify(ctx context.Context, record *domain.StockRecord, op string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, record.ProductID)
	}
	for _, l := range s.listeners {
		l.StockChanged(ctx, record, op)
	}
}
