package services

import (
	stderrors "errors"
	"fmt"
	"time"

	"renthub/internal/models"
	"renthub/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProcessFunc 模拟支付通道，返回交易是否成功。
// 生产环境替换为真实网关客户端；测试中注入确定性实现。
type ProcessFunc func(payment *models.Payment) bool

// PaymentService 支付服务
type PaymentService struct {
	db      *gorm.DB
	process ProcessFunc
}

// NewPaymentService 创建支付服务实例
func NewPaymentService(db *gorm.DB, process ProcessFunc) *PaymentService {
	if process == nil {
		process = func(*models.Payment) bool { return true }
	}
	return &PaymentService{db: db, process: process}
}

// CreatePaymentParams 创建支付参数
type CreatePaymentParams struct {
	LeaseID       uint
	Amount        float64
	PaymentType   string
	PaymentMethod string
	DueDate       *time.Time
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	Description   string
}

// Create 创建支付记录（仅租约租客本人），初始状态pending
// 扣款是独立的Process调用，创建本身不走支付通道。
func (s *PaymentService) Create(tenantID uint, params CreatePaymentParams) (*models.Payment, error) {
	lease, err := loadLease(s.db, params.LeaseID)
	if err != nil {
		return nil, err
	}

	if lease.TenantID != tenantID {
		return nil, errors.NewForbidden("只有租约租客可以发起支付")
	}

	if params.PaymentType == "" {
		params.PaymentType = models.PaymentTypeRent
	}

	payment := &models.Payment{
		LeaseID:       lease.ID,
		PropertyID:    lease.PropertyID,
		TenantID:      lease.TenantID,
		OwnerID:       lease.OwnerID,
		Amount:        params.Amount,
		PaymentType:   params.PaymentType,
		PaymentMethod: params.PaymentMethod,
		Status:        models.PaymentStatusPending,
		DueDate:       params.DueDate,
		PeriodStart:   params.PeriodStart,
		PeriodEnd:     params.PeriodEnd,
		Description:   params.Description,
	}

	if err := s.db.Create(payment).Error; err != nil {
		return nil, err
	}

	return payment, nil
}

// Process 处理支付（支付关联人）
// 仅pending/failed可处理：failed允许重试，completed/refunded不可重复扣款。
func (s *PaymentService) Process(id, callerID uint) (*models.Payment, error) {
	payment, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if payment.TenantID != callerID && payment.OwnerID != callerID && !s.managesProperty(callerID, payment.PropertyID) {
		return nil, errors.NewForbidden("无权处理该支付")
	}

	if payment.Status != models.PaymentStatusPending && payment.Status != models.PaymentStatusFailed {
		return nil, errors.NewInvalidState("支付当前状态为 %s，不能处理", payment.Status)
	}

	return s.settle(payment)
}

// settle 走模拟通道并落盘结果
func (s *PaymentService) settle(payment *models.Payment) (*models.Payment, error) {
	now := time.Now()
	if s.process(payment) {
		payment.Status = models.PaymentStatusCompleted
		payment.PaymentDate = &now
		payment.TransactionID = fmt.Sprintf("txn_%s", uuid.New().String())
		payment.ReceiptURL = fmt.Sprintf("/receipts/%s.pdf", payment.TransactionID)
	} else {
		payment.Status = models.PaymentStatusFailed
	}

	if err := s.db.Model(payment).Updates(map[string]interface{}{
		"status":         payment.Status,
		"payment_date":   payment.PaymentDate,
		"transaction_id": payment.TransactionID,
		"receipt_url":    payment.ReceiptURL,
	}).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// GetByID 按ID获取支付记录（支付关联人）
func (s *PaymentService) GetByID(id, callerID uint) (*models.Payment, error) {
	payment, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if payment.TenantID != callerID && payment.OwnerID != callerID && !s.managesProperty(callerID, payment.PropertyID) {
		return nil, errors.NewForbidden("无权查看该支付记录")
	}
	return payment, nil
}

// ListForUser 按身份范围列出支付记录
// 租客看自己的，房东看名下房源的，经理看托管房源的。
func (s *PaymentService) ListForUser(userID uint, role string, page, pageSize int) ([]*models.Payment, int64, error) {
	query := s.db.Model(&models.Payment{})

	switch role {
	case models.RoleTenant:
		query = query.Where("tenant_id = ?", userID)
	case models.RoleOwner:
		query = query.Where("owner_id = ?", userID)
	case models.RoleManager:
		query = query.Where("property_id IN (?)",
			s.db.Model(&models.Property{}).Select("id").Where("manager_id = ?", userID))
	default:
		return nil, 0, errors.NewForbidden("无权查看支付记录")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []*models.Payment
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// GetByLease 按租约获取支付记录（租约关联人）
func (s *PaymentService) GetByLease(leaseID, callerID uint) ([]*models.Payment, error) {
	lease, err := loadLease(s.db, leaseID)
	if err != nil {
		return nil, err
	}

	if lease.RoleOf(callerID) == "" {
		return nil, errors.NewForbidden("无权查看该租约的支付记录")
	}

	var payments []*models.Payment
	if err := s.db.Where("lease_id = ?", leaseID).
		Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *PaymentService) load(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("支付记录不存在")
		}
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) managesProperty(userID, propertyID uint) bool {
	var count int64
	s.db.Model(&models.Property{}).
		Where("id = ? AND manager_id = ?", propertyID, userID).
		Count(&count)
	return count > 0
}
