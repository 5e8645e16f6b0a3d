package entity

import (
	"time"
)

// BOMStatus 配方状态
const (
	BOMStatusDraft    = "DRAFT"
	BOMStatusActive   = "ACTIVE"
	BOMStatusArchived = "ARCHIVED"
)

// bomTransitions 配方状态流转表。ARCHIVED 为终态，只能通过归档操作进入
var bomTransitions = map[string][]string{
	BOMStatusDraft:    {BOMStatusActive, BOMStatusArchived},
	BOMStatusActive:   {BOMStatusDraft, BOMStatusArchived},
	BOMStatusArchived: {},
}

// CanTransitionBOMStatus 判断配方状态流转是否允许
func CanTransitionBOMStatus(from, to string) bool {
	for _, s := range bomTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidBOMStatus 判断状态值是否合法
func ValidBOMStatus(status string) bool {
	switch status {
	case BOMStatusDraft, BOMStatusActive, BOMStatusArchived:
		return true
	}
	return false
}

// BillOfMaterial 配方头表。同一成品可并存多个版本，版本号在(租户, 成品)内唯一且严格递增
type BillOfMaterial struct {
	ID                string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID          string    `json:"tenant_id" gorm:"size:32;not null;uniqueIndex:idx_boms_tenant_number,priority:1;uniqueIndex:idx_boms_product_version,priority:1"`
	Number            string    `json:"number" gorm:"size:32;not null;uniqueIndex:idx_boms_tenant_number,priority:2"`
	FinishedProductID string    `json:"finished_product_id" gorm:"size:32;not null;index;uniqueIndex:idx_boms_product_version,priority:2"`
	Version           int       `json:"version" gorm:"not null;uniqueIndex:idx_boms_product_version,priority:3"`
	Status            string    `json:"status" gorm:"size:16;not null;default:DRAFT"`
	Name              string    `json:"name" gorm:"size:128"`
	Description       string    `json:"description" gorm:"type:text"`
	CreatedBy         string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	FinishedProduct *Product  `json:"finished_product,omitempty" gorm:"foreignKey:FinishedProductID"`
	Items           []BOMItem `json:"items,omitempty" gorm:"foreignKey:BOMID"`
}

func (BillOfMaterial) TableName() string {
	return "boms"
}

// BOMItem 配方行项。行项由配方独占所有，编辑时整组替换
type BOMItem struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:32"`
	BOMID              string    `json:"bom_id" gorm:"size:32;not null;index"`
	ComponentProductID string    `json:"component_product_id" gorm:"size:32;not null"`
	Quantity           float64   `json:"quantity" gorm:"type:decimal(15,4);not null"`
	WastagePercent     float64   `json:"wastage_percent" gorm:"type:decimal(8,4);not null;default:0"`
	Sequence           int       `json:"sequence" gorm:"not null;default:0"`
	Notes              string    `json:"notes" gorm:"type:text"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Component *Product `json:"component,omitempty" gorm:"foreignKey:ComponentProductID"`
}

func (BOMItem) TableName() string {
	return "bom_items"
}
