package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"github.com/bitfantasy/nimo-ims/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventPublisher 领域事件发布接口，nil 表示不发布
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
}

// AssemblyService 装配执行引擎。建单只声明意图，库存在完成时一次性变动
type AssemblyService struct {
	assemblyRepo *repository.AssemblyRepository
	bomRepo      *repository.BOMRepository
	productRepo  *repository.ProductRepository
	locationRepo *repository.LocationStockRepository
	movementRepo *repository.StockMovementRepository
	db           *gorm.DB
	publisher    EventPublisher
	logger       *zap.Logger
}

// NewAssemblyService 创建装配执行引擎
func NewAssemblyService(
	assemblyRepo *repository.AssemblyRepository,
	bomRepo *repository.BOMRepository,
	productRepo *repository.ProductRepository,
	locationRepo *repository.LocationStockRepository,
	movementRepo *repository.StockMovementRepository,
	db *gorm.DB,
	publisher EventPublisher,
	logger *zap.Logger,
) *AssemblyService {
	return &AssemblyService{
		assemblyRepo: assemblyRepo,
		bomRepo:      bomRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		movementRepo: movementRepo,
		db:           db,
		publisher:    publisher,
		logger:       logger,
	}
}

// CreateOrderRequest 创建装配单请求
type CreateOrderRequest struct {
	BOMID      string  `json:"bom_id" binding:"required"`
	OrderType  string  `json:"order_type"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	LocationID string  `json:"location_id"`
	Notes      string  `json:"notes"`
}

// CreateOrder 创建装配单。配方行加共享锁校验 ACTIVE 状态，
// 与并发归档互斥；此时不触碰任何库存
func (s *AssemblyService) CreateOrder(ctx context.Context, tenantID, userID string, req *CreateOrderRequest) (*entity.AssemblyOrder, error) {
	orderType := req.OrderType
	if orderType == "" {
		orderType = entity.AssemblyTypeAssembly
	}
	if !entity.ValidAssemblyType(orderType) {
		return nil, fmt.Errorf("%w: unknown order type %s", ErrValidation, orderType)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	if req.LocationID != "" {
		if _, err := s.locationRepo.GetLocation(ctx, tenantID, req.LocationID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: location %s", ErrNotFound, req.LocationID)
			}
			return nil, fmt.Errorf("get location: %w", err)
		}
	}

	number, err := s.assemblyRepo.NextNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("next assembly number: %w", err)
	}

	var order *entity.AssemblyOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bom entity.BillOfMaterial
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("tenant_id = ? AND id = ?", tenantID, req.BOMID).
			First(&bom).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: bom %s", ErrNotFound, req.BOMID)
			}
			return fmt.Errorf("lock bom: %w", err)
		}
		if bom.Status != entity.BOMStatusActive {
			return fmt.Errorf("%w: bom status is %s, only ACTIVE boms can be executed", ErrInvalidState, bom.Status)
		}

		now := time.Now()
		order = &entity.AssemblyOrder{
			ID:         generateID(),
			TenantID:   tenantID,
			Number:     number,
			BOMID:      req.BOMID,
			OrderType:  orderType,
			Quantity:   req.Quantity,
			LocationID: req.LocationID,
			Status:     entity.AssemblyStatusInProgress,
			Notes:      req.Notes,
			CreatedBy:  userID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return s.assemblyRepo.Create(tx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.assemblyRepo.GetByID(ctx, tenantID, order.ID)
}

// Complete 完成装配单。配方行项在此刻重新读取，不使用建单时的快照；
// 不做库存充足性复查，数量允许变为负数。
// 全部组件变动、成品变动、流水追加与状态流转在一个事务内提交
func (s *AssemblyService) Complete(ctx context.Context, tenantID, userID, orderID string) (*entity.AssemblyOrder, error) {
	var orderNumber string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order entity.AssemblyOrder
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", tenantID, orderID).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: assembly order %s", ErrNotFound, orderID)
			}
			return fmt.Errorf("lock order: %w", err)
		}
		if order.Status != entity.AssemblyStatusInProgress {
			return fmt.Errorf("%w: order is already %s", ErrInvalidState, order.Status)
		}
		orderNumber = order.Number

		var bom entity.BillOfMaterial
		err = tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("tenant_id = ? AND id = ?", tenantID, order.BOMID).
			First(&bom).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: bom %s", ErrNotFound, order.BOMID)
			}
			return fmt.Errorf("lock bom: %w", err)
		}

		var items []entity.BOMItem
		if err := tx.Where("bom_id = ?", bom.ID).Order("sequence ASC").Find(&items).Error; err != nil {
			return fmt.Errorf("read bom items: %w", err)
		}
		if len(items) == 0 {
			return fmt.Errorf("bom %s has no items", bom.Number)
		}

		now := time.Now()
		switch order.OrderType {
		case entity.AssemblyTypeAssembly:
			// 先扣组件，再入成品
			for _, item := range items {
				required := float64(RequiredQuantity(item.Quantity, item.WastagePercent, order.Quantity))
				if err := s.moveStock(tx, tenantID, userID, &order, item.ComponentProductID,
					entity.MovementAssemblyConsume, -required, now); err != nil {
					return err
				}
			}
			if err := s.moveStock(tx, tenantID, userID, &order, bom.FinishedProductID,
				entity.MovementAssemblyProduce, order.Quantity, now); err != nil {
				return err
			}
		case entity.AssemblyTypeDisassembly:
			// 镜像方向：先回收组件，再扣成品
			for _, item := range items {
				required := float64(RequiredQuantity(item.Quantity, item.WastagePercent, order.Quantity))
				if err := s.moveStock(tx, tenantID, userID, &order, item.ComponentProductID,
					entity.MovementAssemblyProduce, required, now); err != nil {
					return err
				}
			}
			if err := s.moveStock(tx, tenantID, userID, &order, bom.FinishedProductID,
				entity.MovementAssemblyConsume, -order.Quantity, now); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown order type %s", ErrValidation, order.OrderType)
		}

		return tx.Model(&entity.AssemblyOrder{}).
			Where("tenant_id = ? AND id = ?", tenantID, orderID).
			Updates(map[string]interface{}{
				"status":       entity.AssemblyStatusCompleted,
				"completed_at": now,
				"updated_at":   now,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		// 库存变动已提交，事件发布失败只记录不回滚
		err := s.publisher.Publish(ctx, "assembly.order.completed", orderID, map[string]interface{}{
			"tenant_id": tenantID,
			"order_id":  orderID,
			"number":    orderNumber,
		})
		if err != nil && s.logger != nil {
			s.logger.Warn("Failed to publish completion event",
				zap.String("order_id", orderID),
				zap.String("number", orderNumber),
				zap.Error(err),
			)
		}
	}

	return s.assemblyRepo.GetByID(ctx, tenantID, orderID)
}

// moveStock 对一个商品应用带符号的数量变动并追加一条流水。
// 全局数量与库位数量都在存储层做原子增减
func (s *AssemblyService) moveStock(tx *gorm.DB, tenantID, userID string, order *entity.AssemblyOrder, productID, movementType string, delta float64, now time.Time) error {
	if err := s.productRepo.AdjustQuantity(tx, tenantID, productID, delta); err != nil {
		return fmt.Errorf("adjust product %s: %w", productID, err)
	}
	if order.LocationID != "" {
		if err := s.locationRepo.AdjustQuantity(tx, tenantID, productID, order.LocationID, delta); err != nil {
			return fmt.Errorf("adjust location stock %s: %w", productID, err)
		}
	}

	reason := "assembly order " + order.Number
	if order.OrderType == entity.AssemblyTypeDisassembly {
		reason = "disassembly order " + order.Number
	}
	return s.movementRepo.Append(tx, &entity.StockMovement{
		TenantID:        tenantID,
		ProductID:       productID,
		LocationID:      order.LocationID,
		MovementType:    movementType,
		Quantity:        delta,
		Reason:          reason,
		ReferenceType:   entity.ReferenceTypeAssemblyOrder,
		ReferenceID:     order.ID,
		ReferenceNumber: order.Number,
		CreatedBy:       userID,
		CreatedAt:       now,
	})
}

// Cancel 取消装配单。建单时未动库存，取消也不动库存
func (s *AssemblyService) Cancel(ctx context.Context, tenantID, orderID string) (*entity.AssemblyOrder, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order entity.AssemblyOrder
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", tenantID, orderID).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: assembly order %s", ErrNotFound, orderID)
			}
			return fmt.Errorf("lock order: %w", err)
		}
		if order.Status != entity.AssemblyStatusInProgress {
			return fmt.Errorf("%w: order is already %s", ErrInvalidState, order.Status)
		}

		return tx.Model(&entity.AssemblyOrder{}).
			Where("tenant_id = ? AND id = ?", tenantID, orderID).
			Updates(map[string]interface{}{
				"status":     entity.AssemblyStatusCancelled,
				"updated_at": time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.assemblyRepo.GetByID(ctx, tenantID, orderID)
}

// Get 获取装配单
func (s *AssemblyService) Get(ctx context.Context, tenantID, orderID string) (*entity.AssemblyOrder, error) {
	order, err := s.assemblyRepo.GetByID(ctx, tenantID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: assembly order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// List 分页查询装配单
func (s *AssemblyService) List(ctx context.Context, tenantID string, params repository.AssemblyListParams) ([]entity.AssemblyOrder, int64, error) {
	return s.assemblyRepo.List(ctx, tenantID, params)
}
