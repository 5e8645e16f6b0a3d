package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocationStockRepository 库位库存仓库
type LocationStockRepository struct {
	db *gorm.DB
}

// NewLocationStockRepository 创建库位库存仓库
func NewLocationStockRepository(db *gorm.DB) *LocationStockRepository {
	return &LocationStockRepository{db: db}
}

// GetQuantity 获取指定商品在指定库位的数量，无记录按0处理
func (r *LocationStockRepository) GetQuantity(ctx context.Context, tenantID, productID, locationID string) (float64, error) {
	var row entity.LocationStock
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Quantity, nil
}

// ListByProduct 获取某商品所有库位的库存
func (r *LocationStockRepository) ListByProduct(ctx context.Context, tenantID, productID string) ([]entity.LocationStock, error) {
	var rows []entity.LocationStock
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("location_id ASC").
		Find(&rows).Error
	return rows, err
}

// GetLocation 获取库位
func (r *LocationStockRepository) GetLocation(ctx context.Context, tenantID, id string) (*entity.Location, error) {
	var loc entity.Location
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&loc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// CreateLocation 创建库位
func (r *LocationStockRepository) CreateLocation(ctx context.Context, loc *entity.Location) error {
	if loc.ID == "" {
		loc.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(loc).Error
}

// AdjustQuantity 原子增减库位库存，首次写入时创建记录
func (r *LocationStockRepository) AdjustQuantity(tx *gorm.DB, tenantID, productID, locationID string, delta float64) error {
	now := time.Now()
	row := &entity.LocationStock{
		ID:         generateID(),
		TenantID:   tenantID,
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   delta,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "location_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("location_stocks.quantity + ?", delta),
			"updated_at": now,
		}),
	}).Create(row).Error
}
