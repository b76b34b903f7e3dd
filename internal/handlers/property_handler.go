package handlers

import (
	"strconv"
	"time"

	"renthub/internal/middleware"
	"renthub/internal/models"
	"renthub/internal/services"
	"renthub/pkg/pagination"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type PropertyHandler struct {
	propertyService *services.PropertyService
}

func NewPropertyHandler(propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

type CreatePropertyRequest struct {
	Title        string         `json:"title" binding:"required,max=200"`
	Description  string         `json:"description" binding:"required"`
	Street       string         `json:"street" binding:"required,max=200"`
	City         string         `json:"city" binding:"required,max=100"`
	State        string         `json:"state" binding:"required,max=100"`
	ZipCode      string         `json:"zip_code" binding:"required,max=20"`
	Country      string         `json:"country" binding:"omitempty,max=100"`
	PropertyType string         `json:"property_type" binding:"required,oneof=apartment house condo townhouse commercial"`
	Bedrooms     int            `json:"bedrooms" binding:"gte=0"`
	Bathrooms    float64        `json:"bathrooms" binding:"gte=0"`
	SquareFeet   float64        `json:"square_feet" binding:"gte=0"`
	RentAmount   float64        `json:"rent_amount" binding:"required,gt=0"`
	Deposit      float64        `json:"security_deposit" binding:"gte=0"`
	AvailableAt  time.Time      `json:"available_date" binding:"required"`
	Amenities    datatypes.JSON `json:"amenities"`
	Images       datatypes.JSON `json:"images"`
}

// Create 创建房源
func (h *PropertyHandler) Create(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	country := req.Country
	if country == "" {
		country = "USA"
	}

	property := &models.Property{
		Title:       req.Title,
		Description: req.Description,
		Address: models.Address{
			Street:  req.Street,
			City:    req.City,
			State:   req.State,
			ZipCode: req.ZipCode,
			Country: country,
		},
		PropertyType: req.PropertyType,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		SquareFeet:   req.SquareFeet,
		RentAmount:   req.RentAmount,
		Deposit:      req.Deposit,
		AvailableAt:  req.AvailableAt,
		Amenities:    req.Amenities,
		Images:       req.Images,
	}

	if err := h.propertyService.Create(middleware.CurrentUserID(c), property); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "房源创建成功", property)
}

// Get 获取房源详情（公开）
func (h *PropertyHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "房源ID格式错误")
		return
	}

	property, err := h.propertyService.GetByID(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, property)
}

// List 房源列表（公开，组合过滤+分页）
func (h *PropertyHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	filters := services.PropertyFilters{
		PropertyType: c.Query("property_type"),
		City:         c.Query("city"),
		State:        c.Query("state"),
	}
	if v := c.Query("min_rent"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MinRent = &f
		}
	}
	if v := c.Query("max_rent"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MaxRent = &f
		}
	}
	if v := c.Query("bedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.Bedrooms = &n
		}
	}
	if v := c.Query("is_available"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filters.IsAvailable = &b
		}
	}

	properties, total, err := h.propertyService.List(filters, params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithPage(c, properties, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Search 关键词检索（公开）
func (h *PropertyHandler) Search(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		response.BadRequest(c, "缺少检索关键词")
		return
	}

	params := pagination.ParsePageParams(c)
	properties, total, err := h.propertyService.Search(keyword, params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithPage(c, properties, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Mine 当前房东名下房源
func (h *PropertyHandler) Mine(c *gin.Context) {
	properties, err := h.propertyService.GetByOwner(middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, properties)
}

// Managed 当前物业经理托管房源
func (h *PropertyHandler) Managed(c *gin.Context) {
	properties, err := h.propertyService.GetManagedBy(middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, properties)
}

// Update 更新房源
func (h *PropertyHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "房源ID格式错误")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	property, err := h.propertyService.Update(id, middleware.CurrentUserID(c), updates)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "房源更新成功", property)
}

type AssignManagerRequest struct {
	ManagerID uint `json:"manager_id" binding:"required"`
}

// AssignManager 指派物业经理
func (h *PropertyHandler) AssignManager(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "房源ID格式错误")
		return
	}

	var req AssignManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	property, err := h.propertyService.AssignManager(id, middleware.CurrentUserID(c), req.ManagerID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "物业经理指派成功", property)
}

// Delete 删除房源
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "房源ID格式错误")
		return
	}

	if err := h.propertyService.Delete(id, middleware.CurrentUserID(c)); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "房源删除成功", nil)
}

// parseID 解析路径中的数字ID
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
