package middleware

import "renthub/internal/models"

// 操作权限码
// 按"资源:动作"命名，路由绑定时使用。
const (
	PermPropertyCreate  = "property:create"
	PermPropertyUpdate  = "property:update"
	PermPropertyDelete  = "property:delete"
	PermPropertyAssign  = "property:assign_manager"
	PermPropertyMine    = "property:list_mine"
	PermPropertyManaged = "property:list_managed"

	PermApplicationSubmit = "application:submit"
	PermApplicationReview = "application:review"
	PermApplicationCancel = "application:cancel"
	PermApplicationList   = "application:list"

	PermLeaseCreate           = "lease:create"
	PermLeaseUpdate           = "lease:update"
	PermLeaseView             = "lease:view"
	PermLeaseTerminate        = "lease:terminate"
	PermLeaseApproveTerminate = "lease:approve_termination"
	PermLeaseOfferRenewal     = "lease:offer_renewal"
	PermLeaseRespondRenewal   = "lease:respond_renewal"

	PermPaymentCreate  = "payment:create"
	PermPaymentProcess = "payment:process"
	PermPaymentView    = "payment:view"

	PermMaintenanceCreate = "maintenance:create"
	PermMaintenanceView   = "maintenance:view"
	PermMaintenanceUpdate = "maintenance:update"
	PermMaintenanceNote   = "maintenance:add_note"
	PermMaintenanceAssign = "maintenance:assign"
)

// capabilities 角色能力表
// 路由级粗粒度关卡，资源级归属校验在服务层完成。
// 角色集合封闭，新增操作必须在这里显式声明可用角色。
var capabilities = map[string][]string{
	PermPropertyCreate:  {models.RoleOwner},
	PermPropertyUpdate:  {models.RoleOwner, models.RoleManager},
	PermPropertyDelete:  {models.RoleOwner},
	PermPropertyAssign:  {models.RoleOwner},
	PermPropertyMine:    {models.RoleOwner},
	PermPropertyManaged: {models.RoleManager},

	PermApplicationSubmit: {models.RoleTenant},
	PermApplicationReview: {models.RoleOwner, models.RoleManager},
	PermApplicationCancel: {models.RoleTenant},
	PermApplicationList:   {models.RoleTenant, models.RoleOwner, models.RoleManager},

	PermLeaseCreate:           {models.RoleOwner, models.RoleManager},
	PermLeaseUpdate:           {models.RoleOwner, models.RoleManager},
	PermLeaseView:             {models.RoleTenant, models.RoleOwner, models.RoleManager},
	PermLeaseTerminate:        {models.RoleTenant, models.RoleOwner, models.RoleManager},
	PermLeaseApproveTerminate: {models.RoleOwner, models.RoleManager},
	PermLeaseOfferRenewal:     {models.RoleOwner, models.RoleManager},
	PermLeaseRespondRenewal:   {models.RoleTenant},

	PermPaymentCreate:  {models.RoleTenant},
	PermPaymentProcess: {models.RoleTenant, models.RoleOwner, models.RoleManager},
	PermPaymentView:    {models.RoleTenant, models.RoleOwner, models.RoleManager},

	PermMaintenanceCreate: {models.RoleTenant},
	PermMaintenanceView:   {models.RoleTenant, models.RoleOwner, models.RoleManager},
	PermMaintenanceUpdate: {models.RoleTenant, models.RoleOwner, models.RoleManager},
	PermMaintenanceNote:   {models.RoleTenant, models.RoleOwner, models.RoleManager},
	PermMaintenanceAssign: {models.RoleOwner, models.RoleManager},
}

// RoleAllowed 检查角色是否具备操作权限
func RoleAllowed(role, permissionCode string) bool {
	for _, allowed := range capabilities[permissionCode] {
		if allowed == role {
			return true
		}
	}
	return false
}
