package models

import (
	"time"

	"gorm.io/datatypes"
)

// TerminationDetails 退租子流程（内嵌）
// 流转：未申请 -> 已申请 -> 已批准。
// 房东/经理发起时立即批准，租客发起需单独审批。
type TerminationDetails struct {
	RequestedBy  string     `json:"requested_by,omitempty" gorm:"size:20"` // tenant/owner/manager
	RequestDate  *time.Time `json:"request_date,omitempty"`
	Reason       string     `json:"reason,omitempty" gorm:"type:text"`
	ApprovedBy   *uint      `json:"approved_by,omitempty"`
	ApprovedDate *time.Time `json:"approved_date,omitempty"`
	MoveOutDate  *time.Time `json:"move_out_date,omitempty"`
}

// RenewalDetails 续租子流程（内嵌）
// 流转：未报价 -> pending -> accepted/rejected/expired。
type RenewalDetails struct {
	OfferedAt     *time.Time `json:"offered_at,omitempty"`
	NewRentAmount float64    `json:"new_rent_amount,omitempty"`
	NewTermLength int        `json:"new_term_length,omitempty"` // 月
	Status        string     `json:"status,omitempty" gorm:"size:20"`
	ResponseDate  *time.Time `json:"response_date,omitempty"`
}

// Lease 租约模型
// OwnerID/ManagerID 在创建时从房源快照复制，之后不随房源变更（snapshot, not live reference）。
// IsActive 一旦为false不再恢复，续租产生新租约记录。
// 每个房源最多一条有效租约，由条件唯一索引保证。
type Lease struct {
	BaseModel
	PropertyID uint  `json:"property_id" gorm:"not null;index;index:idx_lease_one_active,unique,where:is_active"`
	TenantID   uint  `json:"tenant_id" gorm:"not null;index"`
	OwnerID    uint  `json:"owner_id" gorm:"not null;index"`
	ManagerID  *uint `json:"manager_id"`

	StartDate  time.Time `json:"start_date" gorm:"not null"`
	EndDate    time.Time `json:"end_date" gorm:"not null"`
	RentAmount float64   `json:"rent_amount" gorm:"not null"`
	Deposit    float64   `json:"security_deposit" gorm:"not null"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	PaymentDueDay              int     `json:"payment_due_day" gorm:"default:1"`
	LateFeesApplicable         bool    `json:"late_fees_applicable" gorm:"default:true"`
	LateFeeAmount              float64 `json:"late_fee_amount" gorm:"default:0"`
	LateFeeApplicableAfterDays int     `json:"late_fee_applicable_after_days" gorm:"default:5"`

	RenewalOffered bool           `json:"renewal_offered" gorm:"default:false"`
	Renewal        RenewalDetails `json:"renewal_details" gorm:"embedded;embeddedPrefix:renewal_"`

	TerminationRequested bool               `json:"termination_requested" gorm:"default:false"`
	Termination          TerminationDetails `json:"termination_details" gorm:"embedded;embeddedPrefix:termination_"`

	Documents    datatypes.JSON `json:"documents,omitempty" gorm:"type:jsonb"`
	SpecialTerms string         `json:"special_terms,omitempty" gorm:"type:text"`
}

// TableName 表名
func (l *Lease) TableName() string {
	return "leases"
}

// 退租发起方常量
const (
	TerminationByTenant  = "tenant"
	TerminationByOwner   = "owner"
	TerminationByManager = "manager"
)

// 续租报价状态常量
const (
	RenewalStatusPending  = "pending"
	RenewalStatusAccepted = "accepted"
	RenewalStatusRejected = "rejected"
	RenewalStatusExpired  = "expired"
)

// RoleOf 按存储的身份快照推断用户在租约中的角色，无关联返回空串
func (l *Lease) RoleOf(userID uint) string {
	switch {
	case l.TenantID == userID:
		return TerminationByTenant
	case l.OwnerID == userID:
		return TerminationByOwner
	case l.ManagerID != nil && *l.ManagerID == userID:
		return TerminationByManager
	}
	return ""
}

// IsOwnerOrManager 房东或物业经理（按租约快照判定）
func (l *Lease) IsOwnerOrManager(userID uint) bool {
	return l.OwnerID == userID || (l.ManagerID != nil && *l.ManagerID == userID)
}
