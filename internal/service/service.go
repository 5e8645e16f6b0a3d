package service

import (
	"strings"

	"github.com/bitfantasy/nimo-ims/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// generateID 生成32位ID
func generateID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:32]
}

// Services 服务集合
type Services struct {
	Product       *ProductService
	BOM           *BOMService
	Availability  *AvailabilityService
	Assembly      *AssemblyService
	StockMovement *StockMovementService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, publisher EventPublisher, logger *zap.Logger) *Services {
	return &Services{
		Product:       NewProductService(repos.Product, repos.LocationStock),
		BOM:           NewBOMService(repos.BOM, repos.Product, db, rdb),
		Availability:  NewAvailabilityService(repos.BOM, repos.LocationStock),
		Assembly:      NewAssemblyService(repos.Assembly, repos.BOM, repos.Product, repos.LocationStock, repos.StockMovement, db, publisher, logger),
		StockMovement: NewStockMovementService(repos.StockMovement),
	}
}
