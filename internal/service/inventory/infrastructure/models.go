// internal/service/inventory/infrastructure/models.go
package infrastructure

import (
	"time"

	"vertex/internal/service/inventory/domain"
)

// StockRecordModel 是 StockRecord 在数据库中的表示。
type StockRecordModel struct {
	ID                uint64    `gorm:"primaryKey"`
	ProductID         uint64    `gorm:"column:product_id;uniqueIndex;not null"`
	Quantity          int       `gorm:"not null"`
	Reserved          int       `gorm:"column:reserved_quantity;not null"`
	WarehouseLocation string    `gorm:"column:warehouse_location"`
	ReorderLevel      int       `gorm:"column:reorder_level"`
	LastRestocked     time.Time `gorm:"column:last_restocked;default:null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (StockRecordModel) TableName() string {
	return "inventory"
}

func toStockModel(r *domain.StockRecord) *StockRecordModel {
	return &StockRecordModel{
		ID:                r.ID,
		ProductID:         r.ProductID,
		Quantity:          r.Quantity,
		Reserved:          r.Reserved,
		WarehouseLocation: r.WarehouseLocation,
		ReorderLevel:      r.ReorderLevel,
		LastRestocked:     r.LastRestocked,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toDomainStock(m *StockRecordModel) *domain.StockRecord {
	return &domain.StockRecord{
		ID:                m.ID,
		ProductID:         m.ProductID,
		Quantity:          m.Quantity,
		Reserved:          m.Reserved,
		WarehouseLocation: m.WarehouseLocation,
		ReorderLevel:      m.ReorderLevel,
		LastRestocked:     m.LastRestocked,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
