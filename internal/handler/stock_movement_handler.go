package handler

import (
	"fmt"

	"github.com/bitfantasy/nimo-ims/internal/repository"
	"github.com/bitfantasy/nimo-ims/internal/service"
	"github.com/gin-gonic/gin"
)

// StockMovementHandler 库存流水处理器
type StockMovementHandler struct {
	svc *service.StockMovementService
}

// NewStockMovementHandler 创建库存流水处理器
func NewStockMovementHandler(svc *service.StockMovementService) *StockMovementHandler {
	return &StockMovementHandler{svc: svc}
}

func movementParams(c *gin.Context) repository.MovementListParams {
	return repository.MovementListParams{
		ProductID:    c.Query("product_id"),
		MovementType: c.Query("movement_type"),
		ReferenceID:  c.Query("reference_id"),
	}
}

// List 分页查询流水
func (h *StockMovementHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := movementParams(c)
	params.Page = page
	params.Size = pageSize

	movements, total, err := h.svc.List(c.Request.Context(), GetTenantID(c), params)
	if err != nil {
		InternalError(c, "internal server error")
		return
	}

	Success(c, ListResponse{
		Items:      movements,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Export 导出流水xlsx
func (h *StockMovementHandler) Export(c *gin.Context) {
	f, filename, err := h.svc.Export(c.Request.Context(), GetTenantID(c), movementParams(c))
	if err != nil {
		InternalError(c, "internal server error")
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "internal server error")
	}
}
