package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"gorm.io/gorm"
)

// AssemblyRepository 装配单仓库
type AssemblyRepository struct {
	db *gorm.DB
}

// NewAssemblyRepository 创建装配单仓库
func NewAssemblyRepository(db *gorm.DB) *AssemblyRepository {
	return &AssemblyRepository{db: db}
}

// GetByID 获取装配单，携带配方及行项用于展示
func (r *AssemblyRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.AssemblyOrder, error) {
	var order entity.AssemblyOrder
	err := r.db.WithContext(ctx).
		Preload("BOM").
		Preload("BOM.FinishedProduct").
		Preload("BOM.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("BOM.Items.Component").
		Preload("Location").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// NextNumber 生成下一个装配单号
func (r *AssemblyRepository) NextNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.WithContext(ctx).Raw("SELECT nextval('assembly_number_seq')").Scan(&n).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("ASM-%06d", n), nil
}

// Create 在事务内创建装配单
func (r *AssemblyRepository) Create(tx *gorm.DB, order *entity.AssemblyOrder) error {
	return tx.Create(order).Error
}

// AssemblyListParams 装配单查询参数
type AssemblyListParams struct {
	Search    string
	Status    string
	OrderType string
	Page      int
	Size      int
}

// List 分页查询装配单，支持按单号/配方单号/成品名称模糊搜索
func (r *AssemblyRepository) List(ctx context.Context, tenantID string, params AssemblyListParams) ([]entity.AssemblyOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.AssemblyOrder{}).
		Joins("JOIN boms ON boms.id = assembly_orders.bom_id").
		Joins("JOIN products ON products.id = boms.finished_product_id").
		Where("assembly_orders.tenant_id = ?", tenantID)

	if params.Search != "" {
		kw := "%" + params.Search + "%"
		query = query.Where("assembly_orders.number ILIKE ? OR boms.number ILIKE ? OR products.name ILIKE ?", kw, kw, kw)
	}
	if params.Status != "" {
		query = query.Where("assembly_orders.status = ?", params.Status)
	}
	if params.OrderType != "" {
		query = query.Where("assembly_orders.order_type = ?", params.OrderType)
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

	var orders []entity.AssemblyOrder
	err := query.
		Preload("BOM").
		Preload("BOM.FinishedProduct").
		Order("assembly_orders.created_at DESC").
		Offset((params.Page - 1) * params.Size).
		Limit(params.Size).
		Find(&orders).Error
	return orders, total, err
}
