package handlers

import (
	"time"

	"renthub/internal/middleware"
	"renthub/internal/services"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type LeaseHandler struct {
	leaseService *services.LeaseService
}

func NewLeaseHandler(leaseService *services.LeaseService) *LeaseHandler {
	return &LeaseHandler{leaseService: leaseService}
}

type CreateLeaseRequest struct {
	PropertyID    uint      `json:"property_id" binding:"required"`
	TenantID      uint      `json:"tenant_id" binding:"required"`
	ApplicationID *uint     `json:"application_id"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required,gtfield=StartDate"`
	RentAmount    float64   `json:"rent_amount" binding:"required,gt=0"`
	Deposit       float64   `json:"security_deposit" binding:"gte=0"`
	PaymentDueDay int       `json:"payment_due_day" binding:"omitempty,gte=1,lte=28"`
	SpecialTerms  string    `json:"special_terms"`
}

// Create 创建租约
func (h *LeaseHandler) Create(c *gin.Context) {
	var req CreateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	lease, err := h.leaseService.Create(middleware.CurrentUserID(c), services.CreateLeaseParams{
		PropertyID:    req.PropertyID,
		TenantID:      req.TenantID,
		ApplicationID: req.ApplicationID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		RentAmount:    req.RentAmount,
		Deposit:       req.Deposit,
		PaymentDueDay: req.PaymentDueDay,
		SpecialTerms:  req.SpecialTerms,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "租约创建成功", lease)
}

// Get 获取租约详情
func (h *LeaseHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "租约ID格式错误")
		return
	}

	lease, err := h.leaseService.GetByID(id, middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, lease)
}

// ListByProperty 按房源列出租约
func (h *LeaseHandler) ListByProperty(c *gin.Context) {
	propertyID, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "房源ID格式错误")
		return
	}

	leases, err := h.leaseService.GetByProperty(propertyID, middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, leases)
}

// Mine 当前租客的租约列表
func (h *LeaseHandler) Mine(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	leases, err := h.leaseService.GetByTenant(userID, userID, middleware.CurrentRole(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, leases)
}

// ByTenant 按租客查询租约列表（本人，或房东/经理角色）
func (h *LeaseHandler) ByTenant(c *gin.Context) {
	tenantID, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "租客ID格式错误")
		return
	}

	leases, err := h.leaseService.GetByTenant(
		tenantID, middleware.CurrentUserID(c), middleware.CurrentRole(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, leases)
}

// Update 更新租约
func (h *LeaseHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "租约ID格式错误")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	lease, err := h.leaseService.Update(id, middleware.CurrentUserID(c), updates)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "租约更新成功", lease)
}

type TerminateLeaseRequest struct {
	Reason      string     `json:"reason" binding:"required"`
	MoveOutDate *time.Time `json:"move_out_date"`
}

// Terminate 发起退租
func (h *LeaseHandler) Terminate(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "租约ID格式错误")
		return
	}

	var req TerminateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	lease, err := h.leaseService.Terminate(id, middleware.CurrentUserID(c), req.Reason, req.MoveOutDate)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "退租请求已受理", lease)
}

// ApproveTermination 批准退租
func (h *LeaseHandler) ApproveTermination(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "租约ID格式错误")
		return
	}

	lease, err := h.leaseService.ApproveTermination(id, middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "退租已批准", lease)
}

type OfferRenewalRequest struct {
	NewRentAmount float64 `json:"new_rent_amount" binding:"required,gt=0"`
	NewTermLength int     `json:"new_term_length" binding:"required,gte=1,lte=60"`
}

// OfferRenewal 发起续租报价
func (h *LeaseHandler) OfferRenewal(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "租约ID格式错误")
		return
	}

	var req OfferRenewalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	lease, err := h.leaseService.OfferRenewal(id, middleware.CurrentUserID(c), req.NewRentAmount, req.NewTermLength)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "续租报价已发出", lease)
}

type RespondRenewalRequest struct {
	Response string `json:"response" binding:"required,oneof=accepted rejected"`
}

// RespondToRenewal 答复续租报价
func (h *LeaseHandler) RespondToRenewal(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "租约ID格式错误")
		return
	}

	var req RespondRenewalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	lease, err := h.leaseService.RespondToRenewal(id, middleware.CurrentUserID(c), req.Response)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "续租答复已记录", lease)
}
