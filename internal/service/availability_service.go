package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-ims/internal/repository"
)

// AvailabilityService 可装配性检查服务。只读不预留，
// 检查结果在并发装配下可能立即过期
type AvailabilityService struct {
	bomRepo      *repository.BOMRepository
	locationRepo *repository.LocationStockRepository
}

// NewAvailabilityService 创建可装配性检查服务
func NewAvailabilityService(bomRepo *repository.BOMRepository, locationRepo *repository.LocationStockRepository) *AvailabilityService {
	return &AvailabilityService{bomRepo: bomRepo, locationRepo: locationRepo}
}

// AvailabilityLine 单个组件的需求与缺口
type AvailabilityLine struct {
	ComponentProductID string  `json:"component_product_id"`
	ComponentSKU       string  `json:"component_sku"`
	ComponentName      string  `json:"component_name"`
	PerUnitQuantity    float64 `json:"per_unit_quantity"`
	WastagePercent     float64 `json:"wastage_percent"`
	RequiredQuantity   int64   `json:"required_quantity"`
	AvailableQuantity  float64 `json:"available_quantity"`
	ShortfallQuantity  int64   `json:"shortfall_quantity"`
	Sufficient         bool    `json:"sufficient"`
}

// AvailabilityResult 可装配性检查结果
type AvailabilityResult struct {
	BOMID         string             `json:"bom_id"`
	BOMNumber     string             `json:"bom_number"`
	BuildQuantity float64            `json:"build_quantity"`
	LocationID    string             `json:"location_id,omitempty"`
	CanAssemble   bool               `json:"can_assemble"`
	Lines         []AvailabilityLine `json:"lines"`
}

// Check 逐行计算需求量与缺口。指定库位时读库位库存（无记录按0），
// 否则读商品全局库存
func (s *AvailabilityService) Check(ctx context.Context, tenantID, bomID string, buildQty float64, locationID string) (*AvailabilityResult, error) {
	if buildQty <= 0 {
		return nil, fmt.Errorf("%w: build quantity must be positive", ErrValidation)
	}

	bom, err := s.bomRepo.GetByID(ctx, tenantID, bomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: bom %s", ErrNotFound, bomID)
		}
		return nil, fmt.Errorf("get bom: %w", err)
	}

	if locationID != "" {
		if _, err := s.locationRepo.GetLocation(ctx, tenantID, locationID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: location %s", ErrNotFound, locationID)
			}
			return nil, fmt.Errorf("get location: %w", err)
		}
	}

	result := &AvailabilityResult{
		BOMID:         bom.ID,
		BOMNumber:     bom.Number,
		BuildQuantity: buildQty,
		LocationID:    locationID,
		CanAssemble:   true,
		Lines:         make([]AvailabilityLine, 0, len(bom.Items)),
	}

	for _, item := range bom.Items {
		required := RequiredQuantity(item.Quantity, item.WastagePercent, buildQty)

		var available float64
		if locationID != "" {
			available, err = s.locationRepo.GetQuantity(ctx, tenantID, item.ComponentProductID, locationID)
			if err != nil {
				return nil, fmt.Errorf("get location stock: %w", err)
			}
		} else if item.Component != nil {
			available = item.Component.Quantity
		}

		shortfall := ShortfallQuantity(required, available)
		line := AvailabilityLine{
			ComponentProductID: item.ComponentProductID,
			PerUnitQuantity:    item.Quantity,
			WastagePercent:     item.WastagePercent,
			RequiredQuantity:   required,
			AvailableQuantity:  available,
			ShortfallQuantity:  shortfall,
			Sufficient:         shortfall == 0,
		}
		if item.Component != nil {
			line.ComponentSKU = item.Component.SKU
			line.ComponentName = item.Component.Name
		}
		if !line.Sufficient {
			result.CanAssemble = false
		}
		result.Lines = append(result.Lines, line)
	}

	return result, nil
}
