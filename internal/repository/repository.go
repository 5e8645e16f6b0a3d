package repository

import (
	"errors"
	"strings"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// generateID 生成32位ID
func generateID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:32]
}

// Repositories 仓库集合
type Repositories struct {
	Product       *ProductRepository
	LocationStock *LocationStockRepository
	BOM           *BOMRepository
	Assembly      *AssemblyRepository
	StockMovement *StockMovementRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:       NewProductRepository(db),
		LocationStock: NewLocationStockRepository(db),
		BOM:           NewBOMRepository(db),
		Assembly:      NewAssemblyRepository(db),
		StockMovement: NewStockMovementRepository(db),
	}
}

// Migrate 建表并创建单号序列
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Product{},
		&entity.Location{},
		&entity.LocationStock{},
		&entity.BillOfMaterial{},
		&entity.BOMItem{},
		&entity.AssemblyOrder{},
		&entity.StockMovement{},
	); err != nil {
		return err
	}
	if err := db.Exec("CREATE SEQUENCE IF NOT EXISTS bom_number_seq START 1").Error; err != nil {
		return err
	}
	return db.Exec("CREATE SEQUENCE IF NOT EXISTS assembly_number_seq START 1").Error
}
