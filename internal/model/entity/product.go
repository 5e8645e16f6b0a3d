package entity

import (
	"time"
)

// Product 商品目录
type Product struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID  string    `json:"tenant_id" gorm:"size:32;not null;uniqueIndex:idx_products_tenant_sku,priority:1"`
	SKU       string    `json:"sku" gorm:"size:64;not null;uniqueIndex:idx_products_tenant_sku,priority:2"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Unit      string    `json:"unit" gorm:"size:16;not null;default:pcs"`
	Quantity  float64   `json:"quantity" gorm:"type:decimal(15,4);not null;default:0"`
	Cost      float64   `json:"cost" gorm:"type:decimal(15,4);default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Location 库位
type Location struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID  string    `json:"tenant_id" gorm:"size:32;not null;uniqueIndex:idx_locations_tenant_code,priority:1"`
	Code      string    `json:"code" gorm:"size:32;not null;uniqueIndex:idx_locations_tenant_code,priority:2"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Address   string    `json:"address" gorm:"size:256"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Location) TableName() string {
	return "locations"
}

// LocationStock 库位库存，每行对应一个(商品, 库位)组合，首次写入时创建
type LocationStock struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID   string    `json:"tenant_id" gorm:"size:32;not null;uniqueIndex:idx_location_stocks_row,priority:1"`
	ProductID  string    `json:"product_id" gorm:"size:32;not null;uniqueIndex:idx_location_stocks_row,priority:2"`
	LocationID string    `json:"location_id" gorm:"size:32;not null;uniqueIndex:idx_location_stocks_row,priority:3"`
	Quantity   float64   `json:"quantity" gorm:"type:decimal(15,4);not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Product  *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Location *Location `json:"location,omitempty" gorm:"foreignKey:LocationID"`
}

func (LocationStock) TableName() string {
	return "location_stocks"
}
