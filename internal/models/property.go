package models

import (
	"time"

	"gorm.io/datatypes"
)

// Address 房源地址（内嵌）
type Address struct {
	Street  string `json:"street" gorm:"size:200"`
	City    string `json:"city" gorm:"size:100;index"`
	State   string `json:"state" gorm:"size:100;index"`
	ZipCode string `json:"zip_code" gorm:"size:20"`
	Country string `json:"country" gorm:"size:100;default:'USA'"`
}

// Property 房源模型
// IsAvailable 只允许由审批/退租的级联逻辑翻转，
// 直接update覆盖该字段按最后写入生效处理。
type Property struct {
	BaseModel
	Title        string         `json:"title" gorm:"not null;size:200"`
	Description  string         `json:"description" gorm:"not null;type:text"`
	Address      Address        `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	PropertyType string         `json:"property_type" gorm:"not null;size:50;index"`
	Bedrooms     int            `json:"bedrooms" gorm:"not null"`
	Bathrooms    float64        `json:"bathrooms" gorm:"not null"`
	SquareFeet   float64        `json:"square_feet" gorm:"not null"`
	RentAmount   float64        `json:"rent_amount" gorm:"not null;index"`
	Deposit      float64        `json:"security_deposit" gorm:"not null"`
	AvailableAt  time.Time      `json:"available_date" gorm:"not null"`
	IsAvailable  bool           `json:"is_available" gorm:"default:true;index"`
	Amenities    datatypes.JSON `json:"amenities,omitempty" gorm:"type:jsonb"`
	Images       datatypes.JSON `json:"images,omitempty" gorm:"type:jsonb"`
	OwnerID      uint           `json:"owner_id" gorm:"not null;index"` // 创建后不可变
	ManagerID    *uint          `json:"manager_id" gorm:"index"`        // 仅房东可设置
}

// TableName 表名
func (p *Property) TableName() string {
	return "properties"
}

// 房源类型常量
const (
	PropertyTypeApartment  = "apartment"
	PropertyTypeHouse      = "house"
	PropertyTypeCondo      = "condo"
	PropertyTypeTownhouse  = "townhouse"
	PropertyTypeCommercial = "commercial"
)

// IsOwner 是否为该房源的房东
func (p *Property) IsOwner(userID uint) bool {
	return p.OwnerID == userID
}

// IsManager 是否为该房源的物业经理
func (p *Property) IsManager(userID uint) bool {
	return p.ManagerID != nil && *p.ManagerID == userID
}

// IsOwnerOrManager 房东或物业经理
func (p *Property) IsOwnerOrManager(userID uint) bool {
	return p.IsOwner(userID) || p.IsManager(userID)
}
