package models

import (
	"time"

	"gorm.io/datatypes"
)

// MaintenanceRequest 维修工单模型
type MaintenanceRequest struct {
	BaseModel
	PropertyID uint `json:"property_id" gorm:"not null;index"`
	TenantID   uint `json:"tenant_id" gorm:"not null;index"`

	Title       string `json:"title" gorm:"not null;size:200"`
	Description string `json:"description" gorm:"not null;type:text"`
	Category    string `json:"category" gorm:"not null;size:30"`
	Priority    string `json:"priority" gorm:"size:20;default:'medium'"`

	Status string `json:"status" gorm:"size:20;default:'pending';index"`
	// pending: 待处理
	// assigned: 已指派
	// in_progress: 处理中
	// completed: 已完成
	// canceled: 已取消

	PreferredAvailability string         `json:"preferred_availability,omitempty" gorm:"size:200"`
	PermissionToEnter     bool           `json:"permission_to_enter" gorm:"default:false"`
	Images                datatypes.JSON `json:"images,omitempty" gorm:"type:jsonb"`
	Notes                 datatypes.JSON `json:"notes,omitempty" gorm:"type:jsonb"`

	AssignedTo    *uint      `json:"assigned_to,omitempty"`
	AssignedAt    *time.Time `json:"assigned_at,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// TableName 表名
func (m *MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}

// 工单状态常量
const (
	MaintenanceStatusPending    = "pending"
	MaintenanceStatusAssigned   = "assigned"
	MaintenanceStatusInProgress = "in_progress"
	MaintenanceStatusCompleted  = "completed"
	MaintenanceStatusCanceled   = "canceled"
)

// 工单类别常量
const (
	MaintenanceCategoryPlumbing       = "plumbing"
	MaintenanceCategoryElectrical     = "electrical"
	MaintenanceCategoryAppliance      = "appliance"
	MaintenanceCategoryHeatingCooling = "heating_cooling"
	MaintenanceCategoryStructural     = "structural"
	MaintenanceCategoryPestControl    = "pest_control"
	MaintenanceCategoryOther          = "other"
)

// 工单优先级常量
const (
	MaintenancePriorityLow       = "low"
	MaintenancePriorityMedium    = "medium"
	MaintenancePriorityHigh      = "high"
	MaintenancePriorityEmergency = "emergency"
)
