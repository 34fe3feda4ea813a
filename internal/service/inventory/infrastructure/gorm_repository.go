// internal/service/inventory/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"vertex/internal/service/inventory/domain"
)

const mysqlDuplicateEntry = 1062

// GormStockRepository 是 StockRepository 的 GORM/MySQL 实现。
type GormStockRepository struct {
	db *gorm.DB
}

var _ domain.StockRepository = (*GormStockRepository)(nil)

func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// AutoMigrate 建表，开发环境使用；生产建议走迁移脚本。
func (r *GormStockRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&StockRecordModel{})
}

func (r *GormStockRepository) Create(ctx context.Context, record *domain.StockRecord) error {
	model := toStockModel(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrConflict
		}
		return err
	}
	record.ID = model.ID
	return nil
}

func (r *GormStockRepository) Save(ctx context.Context, record *domain.StockRecord) error {
	return r.db.WithContext(ctx).Save(toStockModel(record)).Error
}

func (r *GormStockRepository) FindByID(ctx context.Context, id uint64) (*domain.StockRecord, error) {
	var model StockRecordModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainStock(&model), nil
}

func (r *GormStockRepository) FindByProductID(ctx context.Context, productID uint64) (*domain.StockRecord, error) {
	var model StockRecordModel
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainStock(&model), nil
}

func (r *GormStockRepository) FindAll(ctx context.Context) ([]*domain.StockRecord, error) {
	var models []StockRecordModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	records := make([]*domain.StockRecord, 0, len(models))
	for i := range models {
		records = append(records, toDomainStock(&models[i]))
	}
	return records, nil
}

func (r *GormStockRepository) DeleteByID(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&StockRecordModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
