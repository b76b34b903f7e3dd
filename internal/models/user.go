package models

// User 用户模型
type User struct {
	BaseModel
	FirstName string `json:"first_name" gorm:"not null;size:100"`
	LastName  string `json:"last_name" gorm:"not null;size:100"`
	Email     string `json:"email" gorm:"unique;not null;size:200;index"`
	Password  string `json:"-" gorm:"not null;size:100"` // bcrypt哈希
	Role      string `json:"role" gorm:"not null;size:50;default:'tenant'"`
	Phone     string `json:"phone" gorm:"size:50"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// 角色常量 - 封闭枚举，权限通过能力表按(角色×操作)判定
const (
	RoleTenant  = "tenant"           // 租客
	RoleOwner   = "property_owner"   // 房东
	RoleManager = "property_manager" // 物业经理
)

// ValidRole 角色是否在枚举内
func ValidRole(role string) bool {
	switch role {
	case RoleTenant, RoleOwner, RoleManager:
		return true
	}
	return false
}
