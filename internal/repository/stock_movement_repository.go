package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"gorm.io/gorm"
)

// StockMovementRepository 库存流水仓库，业务侧只追加
type StockMovementRepository struct {
	db *gorm.DB
}

// NewStockMovementRepository 创建库存流水仓库
func NewStockMovementRepository(db *gorm.DB) *StockMovementRepository {
	return &StockMovementRepository{db: db}
}

// Append 在事务内追加一条流水
func (r *StockMovementRepository) Append(tx *gorm.DB, mv *entity.StockMovement) error {
	if mv.ID == "" {
		mv.ID = generateID()
	}
	if mv.CreatedAt.IsZero() {
		mv.CreatedAt = time.Now()
	}
	return tx.Create(mv).Error
}

// MovementListParams 流水查询参数
type MovementListParams struct {
	ProductID    string
	MovementType string
	ReferenceID  string
	Page         int
	Size         int
}

// List 分页查询流水
func (r *StockMovementRepository) List(ctx context.Context, tenantID string, params MovementListParams) ([]entity.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.StockMovement{}).Where("tenant_id = ?", tenantID)
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.MovementType != "" {
		query = query.Where("movement_type = ?", params.MovementType)
	}
	if params.ReferenceID != "" {
		query = query.Where("reference_id = ?", params.ReferenceID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}

	var movements []entity.StockMovement
	err := query.
		Preload("Product").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).
		Limit(params.Size).
		Find(&movements).Error
	return movements, total, err
}

// ListAll 按条件取全部流水用于导出
func (r *StockMovementRepository) ListAll(ctx context.Context, tenantID string, params MovementListParams) ([]entity.StockMovement, error) {
	query := r.db.WithContext(ctx).Model(&entity.StockMovement{}).Where("tenant_id = ?", tenantID)
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.MovementType != "" {
		query = query.Where("movement_type = ?", params.MovementType)
	}
	if params.ReferenceID != "" {
		query = query.Where("reference_id = ?", params.ReferenceID)
	}

	var movements []entity.StockMovement
	err := query.Preload("Product").Order("created_at DESC").Find(&movements).Error
	return movements, err
}
