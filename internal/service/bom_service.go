package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"github.com/bitfantasy/nimo-ims/internal/repository"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	bomCacheTTL = 5 * time.Minute

	// 并发创建同一成品的配方时版本号唯一索引会触发冲突，整个事务重试
	versionRetries = 3
)

// BOMService 配方管理服务
type BOMService struct {
	bomRepo     *repository.BOMRepository
	productRepo *repository.ProductRepository
	db          *gorm.DB
	rdb         *redis.Client
}

// NewBOMService 创建配方管理服务
func NewBOMService(bomRepo *repository.BOMRepository, productRepo *repository.ProductRepository, db *gorm.DB, rdb *redis.Client) *BOMService {
	return &BOMService{bomRepo: bomRepo, productRepo: productRepo, db: db, rdb: rdb}
}

// BOMItemRequest 配方行项请求
type BOMItemRequest struct {
	ComponentProductID string  `json:"component_product_id" binding:"required"`
	Quantity           float64 `json:"quantity" binding:"required,gt=0"`
	WastagePercent     float64 `json:"wastage_percent" binding:"gte=0"`
	Notes              string  `json:"notes"`
}

// CreateBOMRequest 创建配方请求
type CreateBOMRequest struct {
	FinishedProductID string           `json:"finished_product_id" binding:"required"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Status            string           `json:"status"`
	Items             []BOMItemRequest `json:"items" binding:"required"`
}

// UpdateBOMRequest 更新配方请求，nil 字段不修改
type UpdateBOMRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Status      *string          `json:"status"`
	Items       []BOMItemRequest `json:"items"`
}

// Create 创建配方。版本号取当前最大值+1，与插入同在一个事务，
// 并发冲突由唯一索引拦截后重试
func (s *BOMService) Create(ctx context.Context, tenantID, userID string, req *CreateBOMRequest) (*entity.BillOfMaterial, error) {
	status := req.Status
	if status == "" {
		status = entity.BOMStatusDraft
	}
	if status != entity.BOMStatusDraft && status != entity.BOMStatusActive {
		return nil, fmt.Errorf("%w: initial status must be DRAFT or ACTIVE", ErrValidation)
	}

	if _, err := s.productRepo.GetByID(ctx, tenantID, req.FinishedProductID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: finished product %s", ErrNotFound, req.FinishedProductID)
		}
		return nil, fmt.Errorf("get finished product: %w", err)
	}

	items, err := s.buildItems(ctx, tenantID, req.FinishedProductID, req.Items)
	if err != nil {
		return nil, err
	}

	var bom *entity.BillOfMaterial
	for attempt := 0; attempt < versionRetries; attempt++ {
		number, err := s.bomRepo.NextNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("next bom number: %w", err)
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			maxVersion, err := s.bomRepo.MaxVersion(tx, tenantID, req.FinishedProductID)
			if err != nil {
				return fmt.Errorf("read max version: %w", err)
			}

			now := time.Now()
			bom = &entity.BillOfMaterial{
				ID:                generateID(),
				TenantID:          tenantID,
				Number:            number,
				FinishedProductID: req.FinishedProductID,
				Version:           maxVersion + 1,
				Status:            status,
				Name:              req.Name,
				Description:       req.Description,
				CreatedBy:         userID,
				CreatedAt:         now,
				UpdatedAt:         now,
				Items:             items,
			}
			return s.bomRepo.Create(tx, bom)
		})
		if err == nil {
			return s.bomRepo.GetByID(ctx, tenantID, bom.ID)
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create bom: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: concurrent version assignment for product %s", ErrConflict, req.FinishedProductID)
}

// buildItems 校验并构造行项：行项不能为空，组件必须在租户内存在且不等于成品自身
func (s *BOMService) buildItems(ctx context.Context, tenantID, finishedProductID string, reqs []BOMItemRequest) ([]entity.BOMItem, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: a bom requires at least one item", ErrValidation)
	}

	now := time.Now()
	items := make([]entity.BOMItem, 0, len(reqs))
	for i, req := range reqs {
		if req.ComponentProductID == finishedProductID {
			return nil, fmt.Errorf("%w: component equals finished product %s", ErrInvalidReference, finishedProductID)
		}
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", ErrValidation)
		}
		if req.WastagePercent < 0 {
			return nil, fmt.Errorf("%w: wastage percent must not be negative", ErrValidation)
		}
		if _, err := s.productRepo.GetByID(ctx, tenantID, req.ComponentProductID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: component product %s", ErrNotFound, req.ComponentProductID)
			}
			return nil, fmt.Errorf("get component product: %w", err)
		}

		items = append(items, entity.BOMItem{
			ID:                 generateID(),
			ComponentProductID: req.ComponentProductID,
			Quantity:           req.Quantity,
			WastagePercent:     req.WastagePercent,
			Sequence:           i + 1,
			Notes:              req.Notes,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}
	return items, nil
}

// Update 更新配方。归档配方不可修改；行项如提供则整组替换，与头表更新同一事务
func (s *BOMService) Update(ctx context.Context, tenantID, id string, req *UpdateBOMRequest) (*entity.BillOfMaterial, error) {
	bom, err := s.bomRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: bom %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get bom: %w", err)
	}
	if bom.Status == entity.BOMStatusArchived {
		return nil, fmt.Errorf("%w: archived bom is immutable", ErrInvalidState)
	}
	if req.Status != nil && !entity.ValidBOMStatus(*req.Status) {
		return nil, fmt.Errorf("%w: unknown status %s", ErrValidation, *req.Status)
	}

	var items []entity.BOMItem
	if req.Items != nil {
		items, err = s.buildItems(ctx, tenantID, bom.FinishedProductID, req.Items)
		if err != nil {
			return nil, err
		}
	}

	// 状态门禁在行锁下复核，避免与并发归档交错后把配方带出 ARCHIVED 终态
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entity.BillOfMaterial
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: bom %s", ErrNotFound, id)
			}
			return fmt.Errorf("lock bom: %w", err)
		}
		if current.Status == entity.BOMStatusArchived {
			return fmt.Errorf("%w: archived bom is immutable", ErrInvalidState)
		}

		fields := map[string]interface{}{}
		if req.Name != nil {
			fields["name"] = *req.Name
		}
		if req.Description != nil {
			fields["description"] = *req.Description
		}
		if req.Status != nil && *req.Status != current.Status {
			if *req.Status == entity.BOMStatusArchived || !entity.CanTransitionBOMStatus(current.Status, *req.Status) {
				// 归档只能走显式归档操作
				return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidState, current.Status, *req.Status)
			}
			fields["status"] = *req.Status
		}

		if len(fields) > 0 {
			if err := s.bomRepo.UpdateMeta(tx, tenantID, id, fields); err != nil {
				return fmt.Errorf("update bom: %w", err)
			}
		}
		if items != nil {
			if err := s.bomRepo.ReplaceItems(tx, id, items); err != nil {
				return fmt.Errorf("replace items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID, id)
	return s.bomRepo.GetByID(ctx, tenantID, id)
}

// Archive 归档配方。行锁 + 进行中装配单计数在同一事务内完成，
// 避免与并发的建单/完成操作交错
func (s *BOMService) Archive(ctx context.Context, tenantID, id string) (*entity.BillOfMaterial, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bom entity.BillOfMaterial
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			First(&bom).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: bom %s", ErrNotFound, id)
			}
			return fmt.Errorf("lock bom: %w", err)
		}
		if bom.Status == entity.BOMStatusArchived {
			return fmt.Errorf("%w: bom already archived", ErrInvalidState)
		}

		inProgress, err := s.bomRepo.CountInProgressOrders(tx, tenantID, id)
		if err != nil {
			return fmt.Errorf("count in-progress orders: %w", err)
		}
		if inProgress > 0 {
			return fmt.Errorf("%w: bom has %d in-progress assembly orders", ErrConflict, inProgress)
		}

		return s.bomRepo.UpdateMeta(tx, tenantID, id, map[string]interface{}{
			"status": entity.BOMStatusArchived,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID, id)
	return s.bomRepo.GetByID(ctx, tenantID, id)
}

// Get 获取配方，短TTL缓存读投影
func (s *BOMService) Get(ctx context.Context, tenantID, id string) (*entity.BillOfMaterial, error) {
	cacheKey := fmt.Sprintf("bom:%s:%s", tenantID, id)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var bom entity.BillOfMaterial
			if json.Unmarshal([]byte(cached), &bom) == nil {
				return &bom, nil
			}
		}
	}

	bom, err := s.bomRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: bom %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get bom: %w", err)
	}

	if s.rdb != nil {
		if data, err := json.Marshal(bom); err == nil {
			s.rdb.Set(ctx, cacheKey, data, bomCacheTTL)
		}
	}
	return bom, nil
}

// invalidate 失效配方缓存
func (s *BOMService) invalidate(ctx context.Context, tenantID, id string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, fmt.Sprintf("bom:%s:%s", tenantID, id))
	}
}

// List 分页查询配方
func (s *BOMService) List(ctx context.Context, tenantID string, params repository.BOMListParams) ([]entity.BillOfMaterial, int64, error) {
	return s.bomRepo.List(ctx, tenantID, params)
}

// ListVersions 获取某成品的配方版本列表
func (s *BOMService) ListVersions(ctx context.Context, tenantID, finishedProductID string) ([]entity.BillOfMaterial, error) {
	if _, err := s.productRepo.GetByID(ctx, tenantID, finishedProductID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, finishedProductID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return s.bomRepo.ListVersions(ctx, tenantID, finishedProductID)
}
