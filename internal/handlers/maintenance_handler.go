package handlers

import (
	"time"

	"renthub/internal/middleware"
	"renthub/internal/models"
	"renthub/internal/services"
	"renthub/pkg/pagination"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

type CreateMaintenanceRequest struct {
	PropertyID            uint           `json:"property_id" binding:"required"`
	Title                 string         `json:"title" binding:"required,max=200"`
	Description           string         `json:"description" binding:"required"`
	Category              string         `json:"category" binding:"required,oneof=plumbing electrical appliance heating_cooling structural pest_control other"`
	Priority              string         `json:"priority" binding:"omitempty,oneof=low medium high emergency"`
	PreferredAvailability string         `json:"preferred_availability" binding:"omitempty,max=200"`
	PermissionToEnter     bool           `json:"permission_to_enter"`
	Images                datatypes.JSON `json:"images"`
}

// Create 创建维修工单
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var req CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	request := &models.MaintenanceRequest{
		PropertyID:            req.PropertyID,
		Title:                 req.Title,
		Description:           req.Description,
		Category:              req.Category,
		Priority:              req.Priority,
		PreferredAvailability: req.PreferredAvailability,
		PermissionToEnter:     req.PermissionToEnter,
		Images:                req.Images,
	}

	if err := h.maintenanceService.Create(middleware.CurrentUserID(c), request); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "工单创建成功", request)
}

// Get 获取工单详情
func (h *MaintenanceHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "工单ID格式错误")
		return
	}

	request, err := h.maintenanceService.GetByID(id, middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, request)
}

// List 按身份范围列出工单
func (h *MaintenanceHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	requests, total, err := h.maintenanceService.ListForUser(
		middleware.CurrentUserID(c), middleware.CurrentRole(c),
		c.Query("status"), params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithPage(c, requests, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// ListByProperty 按房源列出工单
func (h *MaintenanceHandler) ListByProperty(c *gin.Context) {
	propertyID, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "房源ID格式错误")
		return
	}

	requests, err := h.maintenanceService.GetByProperty(propertyID, middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, requests)
}

type UpdateMaintenanceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending assigned in_progress completed canceled"`
	Note   string `json:"note"`
}

// UpdateStatus 更新工单状态
func (h *MaintenanceHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "工单ID格式错误")
		return
	}

	var req UpdateMaintenanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	request, err := h.maintenanceService.UpdateStatus(
		id, middleware.CurrentUserID(c), middleware.CurrentRole(c), req.Status, req.Note)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "工单状态更新成功", request)
}

type AddMaintenanceNoteRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// AddNote 追加工单跟进记录
func (h *MaintenanceHandler) AddNote(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "工单ID格式错误")
		return
	}

	var req AddMaintenanceNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	request, err := h.maintenanceService.AddNote(id, middleware.CurrentUserID(c), req.Content)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "留言添加成功", request)
}

type AssignMaintenanceRequest struct {
	AssigneeID    uint       `json:"assignee_id" binding:"required"`
	ScheduledDate *time.Time `json:"scheduled_date"`
}

// Assign 指派工单
func (h *MaintenanceHandler) Assign(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "工单ID格式错误")
		return
	}

	var req AssignMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	request, err := h.maintenanceService.Assign(id, middleware.CurrentUserID(c), req.AssigneeID, req.ScheduledDate)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "工单指派成功", request)
}
