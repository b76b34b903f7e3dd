package models

import "time"

// Payment 支付记录模型
// lease/property/tenant/owner 引用在创建时从租约快照复制。
type Payment struct {
	BaseModel
	LeaseID    uint `json:"lease_id" gorm:"not null;index"`
	PropertyID uint `json:"property_id" gorm:"not null;index"`
	TenantID   uint `json:"tenant_id" gorm:"not null;index"`
	OwnerID    uint `json:"owner_id" gorm:"not null;index"`

	Amount        float64 `json:"amount" gorm:"not null"`
	PaymentType   string  `json:"payment_type" gorm:"size:30;default:'rent'"`
	PaymentMethod string  `json:"payment_method" gorm:"size:30;not null"`

	Status string `json:"status" gorm:"size:20;default:'pending';index"`
	// pending: 待处理
	// completed: 已完成
	// failed: 失败
	// refunded: 已退款

	DueDate     *time.Time `json:"due_date,omitempty"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`

	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`

	Description   string `json:"description,omitempty" gorm:"type:text"`
	TransactionID string `json:"transaction_id,omitempty" gorm:"size:64;index"`
	ReceiptURL    string `json:"receipt_url,omitempty" gorm:"size:500"`
	Notes         string `json:"notes,omitempty" gorm:"type:text"`
	IsLateFee     bool   `json:"is_late_fee" gorm:"default:false"`
}

// TableName 表名
func (p *Payment) TableName() string {
	return "payments"
}

// 支付状态常量
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// 支付类型常量
const (
	PaymentTypeRent            = "rent"
	PaymentTypeSecurityDeposit = "security_deposit"
	PaymentTypeLateFee         = "late_fee"
	PaymentTypeMaintenance     = "maintenance"
	PaymentTypeOther           = "other"
)

// 支付方式常量
const (
	PaymentMethodCreditCard   = "credit_card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
	PaymentMethodCheck        = "check"
	PaymentMethodOther        = "other"
)
