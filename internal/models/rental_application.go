package models

import (
	"time"

	"gorm.io/datatypes"
)

// EmploymentInfo 申请人就业信息（内嵌）
type EmploymentInfo struct {
	Employer         string  `json:"employer" gorm:"size:200"`
	Position         string  `json:"position" gorm:"size:200"`
	MonthlyIncome    float64 `json:"monthly_income"`
	EmploymentLength int     `json:"employment_length"` // 月
}

// RentalApplication 租房申请模型
// 同一(房源,租客)最多存在一条pending申请，由条件唯一索引保证。
type RentalApplication struct {
	BaseModel
	PropertyID uint `json:"property_id" gorm:"not null;index;index:idx_app_one_pending,unique,priority:1,where:status = 'pending'"`
	TenantID   uint `json:"tenant_id" gorm:"not null;index;index:idx_app_one_pending,unique,priority:2,where:status = 'pending'"`

	MoveInDate time.Time `json:"move_in_date" gorm:"not null"`
	LeaseTerm  int       `json:"lease_term" gorm:"not null"` // 月

	Status string `json:"status" gorm:"size:20;default:'pending';index"`
	// pending: 待审核
	// approved: 已批准（终态）
	// rejected: 已拒绝（终态）
	// canceled: 已取消（终态）

	Employment      EmploymentInfo `json:"employment_info" gorm:"embedded;embeddedPrefix:employment_"`
	CreditScore     *int           `json:"credit_score,omitempty"`
	PreviousRentals datatypes.JSON `json:"previous_rentals,omitempty" gorm:"type:jsonb"`
	References      datatypes.JSON `json:"references,omitempty" gorm:"type:jsonb"`
	AdditionalNotes string         `json:"additional_notes,omitempty" gorm:"type:text"`

	// 审核元数据
	ReviewedBy      *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`
}

// TableName 表名
func (a *RentalApplication) TableName() string {
	return "rental_applications"
}

// 申请状态常量
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
	ApplicationStatusCanceled = "canceled"
)

// RejectionReasonSiblingApproved 同房源其他申请被批准时的统一拒绝原因
const RejectionReasonSiblingApproved = "another application has been approved for this property"
