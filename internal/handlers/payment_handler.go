package handlers

import (
	"time"

	"renthub/internal/middleware"
	"renthub/internal/services"
	"renthub/pkg/pagination"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type CreatePaymentRequest struct {
	LeaseID       uint       `json:"lease_id" binding:"required"`
	Amount        float64    `json:"amount" binding:"required,gt=0"`
	PaymentType   string     `json:"payment_type" binding:"omitempty,oneof=rent security_deposit late_fee maintenance other"`
	PaymentMethod string     `json:"payment_method" binding:"required,oneof=credit_card bank_transfer cash check other"`
	DueDate       *time.Time `json:"due_date"`
	PeriodStart   *time.Time `json:"period_start"`
	PeriodEnd     *time.Time `json:"period_end"`
	Description   string     `json:"description"`
}

// Create 发起支付
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	payment, err := h.paymentService.Create(middleware.CurrentUserID(c), services.CreatePaymentParams{
		LeaseID:       req.LeaseID,
		Amount:        req.Amount,
		PaymentType:   req.PaymentType,
		PaymentMethod: req.PaymentMethod,
		DueDate:       req.DueDate,
		PeriodStart:   req.PeriodStart,
		PeriodEnd:     req.PeriodEnd,
		Description:   req.Description,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "支付记录创建成功", payment)
}

// Process 处理支付
func (h *PaymentHandler) Process(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "支付ID格式错误")
		return
	}

	payment, err := h.paymentService.Process(id, middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "支付处理完成", payment)
}

// Get 获取支付详情
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "支付ID格式错误")
		return
	}

	payment, err := h.paymentService.GetByID(id, middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, payment)
}

// List 按身份范围列出支付记录
func (h *PaymentHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	payments, total, err := h.paymentService.ListForUser(
		middleware.CurrentUserID(c), middleware.CurrentRole(c), params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithPage(c, payments, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// ListByLease 按租约列出支付记录
func (h *PaymentHandler) ListByLease(c *gin.Context) {
	leaseID, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "租约ID格式错误")
		return
	}

	payments, err := h.paymentService.GetByLease(leaseID, middleware.CurrentUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, payments)
}
