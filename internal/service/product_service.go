package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"github.com/bitfantasy/nimo-ims/internal/repository"
	"gorm.io/gorm"
)

// ProductService 商品目录服务
type ProductService struct {
	productRepo  *repository.ProductRepository
	locationRepo *repository.LocationStockRepository
}

// NewProductService 创建商品目录服务
func NewProductService(productRepo *repository.ProductRepository, locationRepo *repository.LocationStockRepository) *ProductService {
	return &ProductService{productRepo: productRepo, locationRepo: locationRepo}
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	SKU      string  `json:"sku" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
	Cost     float64 `json:"cost" binding:"gte=0"`
}

// Create 创建商品，SKU 在租户内唯一
func (s *ProductService) Create(ctx context.Context, tenantID string, req *CreateProductRequest) (*entity.Product, error) {
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}

	now := time.Now()
	product := &entity.Product{
		ID:        generateID(),
		TenantID:  tenantID,
		SKU:       req.SKU,
		Name:      req.Name,
		Unit:      unit,
		Quantity:  req.Quantity,
		Cost:      req.Cost,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: sku %s already exists", ErrConflict, req.SKU)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// Get 获取商品
func (s *ProductService) Get(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// List 分页查询商品
func (s *ProductService) List(ctx context.Context, tenantID string, params repository.ProductListParams) ([]entity.Product, int64, error) {
	return s.productRepo.List(ctx, tenantID, params)
}

// LocationStocks 获取商品的库位库存分布
func (s *ProductService) LocationStocks(ctx context.Context, tenantID, productID string) ([]entity.LocationStock, error) {
	if _, err := s.productRepo.GetByID(ctx, tenantID, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return s.locationRepo.ListByProduct(ctx, tenantID, productID)
}

// CreateLocationRequest 创建库位请求
type CreateLocationRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// CreateLocation 创建库位
func (s *ProductService) CreateLocation(ctx context.Context, tenantID string, req *CreateLocationRequest) (*entity.Location, error) {
	now := time.Now()
	loc := &entity.Location{
		ID:        generateID(),
		TenantID:  tenantID,
		Code:      req.Code,
		Name:      req.Name,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.locationRepo.CreateLocation(ctx, loc); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: location code %s already exists", ErrConflict, req.Code)
		}
		return nil, fmt.Errorf("create location: %w", err)
	}
	return loc, nil
}
