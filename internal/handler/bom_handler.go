package handler

import (
	"strconv"

	"github.com/bitfantasy/nimo-ims/internal/repository"
	"github.com/bitfantasy/nimo-ims/internal/service"
	"github.com/gin-gonic/gin"
)

// BOMHandler 配方处理器
type BOMHandler struct {
	svc          *service.BOMService
	availability *service.AvailabilityService
}

// NewBOMHandler 创建配方处理器
func NewBOMHandler(svc *service.BOMService, availability *service.AvailabilityService) *BOMHandler {
	return &BOMHandler{svc: svc, availability: availability}
}

// Create 创建配方
func (h *BOMHandler) Create(c *gin.Context) {
	var req service.CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	bom, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	Created(c, bom)
}

// Update 更新配方
func (h *BOMHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "BOM ID is required")
		return
	}

	var req service.UpdateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	bom, err := h.svc.Update(c.Request.Context(), GetTenantID(c), id, &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, bom)
}

// Get 获取配方
func (h *BOMHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "BOM ID is required")
		return
	}

	bom, err := h.svc.Get(c.Request.Context(), GetTenantID(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, bom)
}

// List 分页查询配方
func (h *BOMHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.BOMListParams{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Page:   page,
		Size:   pageSize,
	}

	boms, total, err := h.svc.List(c.Request.Context(), GetTenantID(c), params)
	if err != nil {
		InternalError(c, "internal server error")
		return
	}

	Success(c, ListResponse{
		Items:      boms,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Archive 归档配方
func (h *BOMHandler) Archive(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "BOM ID is required")
		return
	}

	bom, err := h.svc.Archive(c.Request.Context(), GetTenantID(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, bom)
}

// ListVersions 获取成品的配方版本列表
func (h *BOMHandler) ListVersions(c *gin.Context) {
	productID := c.Param("id")
	if productID == "" {
		BadRequest(c, "Product ID is required")
		return
	}

	versions, err := h.svc.ListVersions(c.Request.Context(), GetTenantID(c), productID)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, versions)
}

// CheckAvailability 检查可装配性
func (h *BOMHandler) CheckAvailability(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "BOM ID is required")
		return
	}

	quantity, err := strconv.ParseFloat(c.Query("quantity"), 64)
	if err != nil {
		BadRequest(c, "quantity is required and must be a number")
		return
	}

	result, err := h.availability.Check(c.Request.Context(), GetTenantID(c), id, quantity, c.Query("location_id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, result)
}
