package handlers

import (
	"time"

	"renthub/internal/middleware"
	"renthub/internal/models"
	"renthub/internal/services"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

type SubmitApplicationRequest struct {
	PropertyID       uint           `json:"property_id" binding:"required"`
	MoveInDate       time.Time      `json:"move_in_date" binding:"required"`
	LeaseTerm        int            `json:"lease_term" binding:"required,gte=1,lte=60"`
	Employer         string         `json:"employer" binding:"omitempty,max=200"`
	Position         string         `json:"position" binding:"omitempty,max=200"`
	MonthlyIncome    float64        `json:"monthly_income" binding:"gte=0"`
	EmploymentLength int            `json:"employment_length" binding:"gte=0"`
	CreditScore      *int           `json:"credit_score" binding:"omitempty,gte=300,lte=850"`
	PreviousRentals  datatypes.JSON `json:"previous_rentals"`
	References       datatypes.JSON `json:"references"`
	AdditionalNotes  string         `json:"additional_notes"`
}

// Submit 提交租房申请
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	application := &models.RentalApplication{
		PropertyID: req.PropertyID,
		MoveInDate: req.MoveInDate,
		LeaseTerm:  req.LeaseTerm,
		Employment: models.EmploymentInfo{
			Employer:         req.Employer,
			Position:         req.Position,
			MonthlyIncome:    req.MonthlyIncome,
			EmploymentLength: req.EmploymentLength,
		},
		CreditScore:     req.CreditScore,
		PreviousRentals: req.PreviousRentals,
		References:      req.References,
		AdditionalNotes: req.AdditionalNotes,
	}

	if err := h.applicationService.Submit(middleware.CurrentUserID(c), application); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "申请提交成功", application)
}

// ListByProperty 按房源列出申请
func (h *ApplicationHandler) ListByProperty(c *gin.Context) {
	propertyID, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "房源ID格式错误")
		return
	}

	applications, err := h.applicationService.GetByProperty(propertyID, middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, applications)
}

// Mine 当前租客的申请列表
func (h *ApplicationHandler) Mine(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	applications, err := h.applicationService.GetByTenant(userID, userID, middleware.CurrentRole(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, applications)
}

// ByTenant 按租客查询申请列表（本人，或房东/经理角色）
func (h *ApplicationHandler) ByTenant(c *gin.Context) {
	tenantID, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "租客ID格式错误")
		return
	}

	applications, err := h.applicationService.GetByTenant(
		tenantID, middleware.CurrentUserID(c), middleware.CurrentRole(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, applications)
}

type ReviewApplicationRequest struct {
	Status          string `json:"status" binding:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejection_reason"`
}

// Review 审核申请
func (h *ApplicationHandler) Review(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "申请ID格式错误")
		return
	}

	var req ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	application, err := h.applicationService.Review(id, middleware.CurrentUserID(c), req.Status, req.RejectionReason)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "申请审核完成", application)
}

// Cancel 取消申请
func (h *ApplicationHandler) Cancel(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "申请ID格式错误")
		return
	}

	application, err := h.applicationService.Cancel(id, middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "申请已取消", application)
}
