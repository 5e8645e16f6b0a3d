package handler

import (
	"github.com/bitfantasy/nimo-ims/internal/repository"
	"github.com/bitfantasy/nimo-ims/internal/service"
	"github.com/gin-gonic/gin"
)

// AssemblyHandler 装配单处理器
type AssemblyHandler struct {
	svc *service.AssemblyService
}

// NewAssemblyHandler 创建装配单处理器
func NewAssemblyHandler(svc *service.AssemblyService) *AssemblyHandler {
	return &AssemblyHandler{svc: svc}
}

// Create 创建装配单
func (h *AssemblyHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), GetTenantID(c), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	Created(c, order)
}

// Get 获取装配单
func (h *AssemblyHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Order ID is required")
		return
	}

	order, err := h.svc.Get(c.Request.Context(), GetTenantID(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, order)
}

// List 分页查询装配单
func (h *AssemblyHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.AssemblyListParams{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		OrderType: c.Query("order_type"),
		Page:      page,
		Size:      pageSize,
	}

	orders, total, err := h.svc.List(c.Request.Context(), GetTenantID(c), params)
	if err != nil {
		InternalError(c, "internal server error")
		return
	}

	Success(c, ListResponse{
		Items:      orders,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Complete 完成装配单
func (h *AssemblyHandler) Complete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Order ID is required")
		return
	}

	order, err := h.svc.Complete(c.Request.Context(), GetTenantID(c), GetUserID(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, order)
}

// Cancel 取消装配单
func (h *AssemblyHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Order ID is required")
		return
	}

	order, err := h.svc.Cancel(c.Request.Context(), GetTenantID(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, order)
}
