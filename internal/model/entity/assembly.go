package entity

import (
	"time"
)

// AssemblyType 装配方向
const (
	AssemblyTypeAssembly    = "ASSEMBLY"    // 消耗组件，产出成品
	AssemblyTypeDisassembly = "DISASSEMBLY" // 拆解成品，回收组件
)

// AssemblyStatus 装配单状态
const (
	AssemblyStatusInProgress = "IN_PROGRESS"
	AssemblyStatusCompleted  = "COMPLETED"
	AssemblyStatusCancelled  = "CANCELLED"
)

// assemblyTransitions 装配单状态流转表。COMPLETED 和 CANCELLED 均为终态
var assemblyTransitions = map[string][]string{
	AssemblyStatusInProgress: {AssemblyStatusCompleted, AssemblyStatusCancelled},
	AssemblyStatusCompleted:  {},
	AssemblyStatusCancelled:  {},
}

// CanTransitionAssemblyStatus 判断装配单状态流转是否允许
func CanTransitionAssemblyStatus(from, to string) bool {
	for _, s := range assemblyTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidAssemblyType 判断装配方向是否合法
func ValidAssemblyType(t string) bool {
	return t == AssemblyTypeAssembly || t == AssemblyTypeDisassembly
}

// AssemblyOrder 装配单。对配方是弱引用，完成时重新读取配方行项
type AssemblyOrder struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	TenantID    string     `json:"tenant_id" gorm:"size:32;not null;uniqueIndex:idx_assembly_orders_tenant_number,priority:1"`
	Number      string     `json:"number" gorm:"size:32;not null;uniqueIndex:idx_assembly_orders_tenant_number,priority:2"`
	BOMID       string     `json:"bom_id" gorm:"size:32;not null;index"`
	OrderType   string     `json:"order_type" gorm:"size:16;not null;default:ASSEMBLY"`
	Quantity    float64    `json:"quantity" gorm:"type:decimal(15,4);not null"`
	LocationID  string     `json:"location_id" gorm:"size:32"`
	Status      string     `json:"status" gorm:"size:16;not null;default:IN_PROGRESS"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedBy   string     `json:"created_by" gorm:"size:32;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	BOM      *BillOfMaterial `json:"bom,omitempty" gorm:"foreignKey:BOMID"`
	Location *Location       `json:"location,omitempty" gorm:"foreignKey:LocationID"`
}

func (AssemblyOrder) TableName() string {
	return "assembly_orders"
}
