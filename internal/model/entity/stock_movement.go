package entity

import (
	"time"
)

// MovementType 库存变动类型
const (
	MovementAssemblyConsume = "ASSEMBLY_CONSUME" // 装配消耗（负数）
	MovementAssemblyProduce = "ASSEMBLY_PRODUCE" // 装配产出（正数）
	MovementPurchaseIn      = "PURCHASE_IN"      // 采购入库（外部子系统写入）
	MovementSalesOut        = "SALES_OUT"        // 销售出库（外部子系统写入）
	MovementAdjust          = "ADJUST"           // 库存调整
)

// ReferenceType 变动来源单据类型
const (
	ReferenceTypeAssemblyOrder = "ASSEMBLY_ORDER"
	ReferenceTypePurchaseOrder = "PURCHASE_ORDER"
	ReferenceTypeSalesOrder    = "SALES_ORDER"
)

// StockMovement 库存变动流水，只追加不修改
type StockMovement struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID        string    `json:"tenant_id" gorm:"size:32;not null;index"`
	ProductID       string    `json:"product_id" gorm:"size:32;not null;index"`
	LocationID      string    `json:"location_id" gorm:"size:32"`
	MovementType    string    `json:"movement_type" gorm:"size:32;not null;index"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(15,4);not null"` // 正=入，负=出
	Reason          string    `json:"reason" gorm:"size:256"`
	ReferenceType   string    `json:"reference_type" gorm:"size:32"`
	ReferenceID     string    `json:"reference_id" gorm:"size:32;index"`
	ReferenceNumber string    `json:"reference_number" gorm:"size:32"`
	CreatedBy       string    `json:"created_by" gorm:"size:32"`
	CreatedAt       time.Time `json:"created_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}
