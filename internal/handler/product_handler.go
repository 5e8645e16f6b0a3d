package handler

import (
	"github.com/bitfantasy/nimo-ims/internal/repository"
	"github.com/bitfantasy/nimo-ims/internal/service"
	"github.com/gin-gonic/gin"
)

// ProductHandler 商品目录处理器
type ProductHandler struct {
	svc *service.ProductService
}

// NewProductHandler 创建商品目录处理器
func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create 创建商品
func (h *ProductHandler) Create(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.svc.Create(c.Request.Context(), GetTenantID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	Created(c, product)
}

// Get 获取商品
func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Product ID is required")
		return
	}

	product, err := h.svc.Get(c.Request.Context(), GetTenantID(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, product)
}

// List 分页查询商品
func (h *ProductHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.ProductListParams{
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    pageSize,
	}

	products, total, err := h.svc.List(c.Request.Context(), GetTenantID(c), params)
	if err != nil {
		InternalError(c, "internal server error")
		return
	}

	Success(c, ListResponse{
		Items:      products,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// LocationStocks 商品的库位库存分布
func (h *ProductHandler) LocationStocks(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Product ID is required")
		return
	}

	stocks, err := h.svc.LocationStocks(c.Request.Context(), GetTenantID(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, stocks)
}

// CreateLocation 创建库位
func (h *ProductHandler) CreateLocation(c *gin.Context) {
	var req service.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	loc, err := h.svc.CreateLocation(c.Request.Context(), GetTenantID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	Created(c, loc)
}
