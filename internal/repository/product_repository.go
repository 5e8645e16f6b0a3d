package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"gorm.io/gorm"
)

// ProductRepository 商品目录仓库
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品目录仓库
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID 获取商品，租户不匹配视同不存在
func (r *ProductRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Create 创建商品
func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

// ProductListParams 商品查询参数
type ProductListParams struct {
	Keyword string
	Page    int
	Size    int
}

// List 分页查询商品
func (r *ProductRepository) List(ctx context.Context, tenantID string, params ProductListParams) ([]entity.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Product{}).Where("tenant_id = ?", tenantID)
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("sku ILIKE ? OR name ILIKE ?", kw, kw)
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

	var products []entity.Product
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).
		Limit(params.Size).
		Find(&products).Error
	return products, total, err
}

// AdjustQuantity 原子增减全局库存数量，增减在存储层完成以保证并发写安全
func (r *ProductRepository) AdjustQuantity(tx *gorm.DB, tenantID, productID string, delta float64) error {
	result := tx.Model(&entity.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		UpdateColumns(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
