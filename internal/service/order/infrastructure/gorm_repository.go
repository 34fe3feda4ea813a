// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"vertex/internal/service/order/domain"
)

// GormOrderRepository 是 OrderRepository 的 GORM/MySQL 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

var _ domain.OrderRepository = (*GormOrderRepository)(nil)

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// AutoMigrate 建表，开发环境使用；生产建议走迁移脚本。
func (r *GormOrderRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&OrderModel{}, &OrderItemModel{})
}

// Save 覆盖式保存订单与明细。明细行没有独立生命周期，更新时先删后插。
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model := toOrderModel(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", model.ID).Delete(&OrderItemModel{}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainOrder(&model), nil
}

func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).Preload("Items").Where("user_id = ?", userID).Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainOrders(models), nil
}

func (r *GormOrderRepository) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).Preload("Items").Where("status = ?", string(status)).Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainOrders(models), nil
}

func (r *GormOrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	var models []OrderModel
	if err := r.db.WithContext(ctx).Preload("Items").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(models), nil
}

func (r *GormOrderRepository) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&OrderItemModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&OrderModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func toDomainOrders(models []OrderModel) []*domain.Order {
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toDomainOrder(&models[i]))
	}
	return orders
}
