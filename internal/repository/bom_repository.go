package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"gorm.io/gorm"
)

// BOMRepository 配方仓库
type BOMRepository struct {
	db *gorm.DB
}

// NewBOMRepository 创建配方仓库
func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

// GetByID 获取配方及其行项
func (r *BOMRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.BillOfMaterial, error) {
	var bom entity.BillOfMaterial
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("Items.Component").
		Preload("FinishedProduct").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&bom).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bom, nil
}

// NextNumber 生成下一个配方单号
func (r *BOMRepository) NextNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.WithContext(ctx).Raw("SELECT nextval('bom_number_seq')").Scan(&n).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("BOM-%06d", n), nil
}

// MaxVersion 读取成品的当前最大版本号。与插入同在一个事务中，
// 唯一索引 idx_boms_product_version 把并发下的重复版本变成可重试冲突
func (r *BOMRepository) MaxVersion(tx *gorm.DB, tenantID, finishedProductID string) (int, error) {
	var maxVersion int
	err := tx.Model(&entity.BillOfMaterial{}).
		Select("COALESCE(MAX(version), 0)").
		Where("tenant_id = ? AND finished_product_id = ?", tenantID, finishedProductID).
		Scan(&maxVersion).Error
	return maxVersion, err
}

// Create 创建配方及行项（gorm级联写入，同一事务）
func (r *BOMRepository) Create(tx *gorm.DB, bom *entity.BillOfMaterial) error {
	return tx.Create(bom).Error
}

// UpdateMeta 更新配方头字段
func (r *BOMRepository) UpdateMeta(tx *gorm.DB, tenantID, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := tx.Model(&entity.BillOfMaterial{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceItems 整组替换配方行项：先删后插，调用方保证在同一事务内
func (r *BOMRepository) ReplaceItems(tx *gorm.DB, bomID string, items []entity.BOMItem) error {
	if err := tx.Where("bom_id = ?", bomID).Delete(&entity.BOMItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = generateID()
		}
		items[i].BOMID = bomID
		items[i].Sequence = i + 1
	}
	return tx.Create(&items).Error
}

// CountInProgressOrders 统计配方下进行中的装配单
func (r *BOMRepository) CountInProgressOrders(tx *gorm.DB, tenantID, bomID string) (int64, error) {
	var count int64
	err := tx.Model(&entity.AssemblyOrder{}).
		Where("tenant_id = ? AND bom_id = ? AND status = ?", tenantID, bomID, entity.AssemblyStatusInProgress).
		Count(&count).Error
	return count, err
}

// ListVersions 获取某成品的全部配方版本
func (r *BOMRepository) ListVersions(ctx context.Context, tenantID, finishedProductID string) ([]entity.BillOfMaterial, error) {
	var boms []entity.BillOfMaterial
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND finished_product_id = ?", tenantID, finishedProductID).
		Order("version DESC").
		Find(&boms).Error
	return boms, err
}

// BOMListParams 配方查询参数
type BOMListParams struct {
	Search string
	Status string
	Page   int
	Size   int
}

// List 分页查询配方，支持按单号/名称/成品名称模糊搜索
func (r *BOMRepository) List(ctx context.Context, tenantID string, params BOMListParams) ([]entity.BillOfMaterial, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.BillOfMaterial{}).
		Joins("JOIN products ON products.id = boms.finished_product_id").
		Where("boms.tenant_id = ?", tenantID)

	if params.Search != "" {
		kw := "%" + params.Search + "%"
		query = query.Where("boms.number ILIKE ? OR boms.name ILIKE ? OR products.name ILIKE ?", kw, kw, kw)
	}
	if params.Status != "" {
		query = query.Where("boms.status = ?", params.Status)
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

	var boms []entity.BillOfMaterial
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("Items.Component").
		Preload("FinishedProduct").
		Order("boms.created_at DESC").
		Offset((params.Page - 1) * params.Size).
		Limit(params.Size).
		Find(&boms).Error
	return boms, total, err
}
