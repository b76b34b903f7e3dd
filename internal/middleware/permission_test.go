package middleware

import (
	"testing"

	"renthub/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRoleAllowed(t *testing.T) {
	tests := []struct {
		role    string
		perm    string
		allowed bool
	}{
		// 租客被路由级关卡挡在租约创建/审批之外
		{models.RoleTenant, PermLeaseCreate, false},
		{models.RoleTenant, PermLeaseUpdate, false},
		{models.RoleTenant, PermLeaseApproveTerminate, false},
		{models.RoleTenant, PermApplicationReview, false},
		{models.RoleOwner, PermLeaseCreate, true},
		{models.RoleManager, PermLeaseCreate, true},

		// 只有租客能提交申请、答复续租、发起支付
		{models.RoleOwner, PermApplicationSubmit, false},
		{models.RoleTenant, PermApplicationSubmit, true},
		{models.RoleTenant, PermLeaseRespondRenewal, true},
		{models.RoleOwner, PermLeaseRespondRenewal, false},
		{models.RoleTenant, PermPaymentCreate, true},
		{models.RoleManager, PermPaymentCreate, false},

		// 处理支付和工单留言对三种角色开放，归属在服务层校验
		{models.RoleTenant, PermPaymentProcess, true},
		{models.RoleOwner, PermPaymentProcess, true},
		{models.RoleTenant, PermMaintenanceNote, true},
		{models.RoleManager, PermMaintenanceNote, true},

		// 房源写操作
		{models.RoleOwner, PermPropertyCreate, true},
		{models.RoleManager, PermPropertyCreate, false},
		{models.RoleManager, PermPropertyUpdate, true},
		{models.RoleManager, PermPropertyDelete, false},
		{models.RoleManager, PermPropertyAssign, false},

		// 未知角色/未声明操作一律拒绝
		{"admin", PermLeaseCreate, false},
		{models.RoleOwner, "lease:unknown", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, RoleAllowed(tt.role, tt.perm), "%s x %s", tt.role, tt.perm)
	}
}
