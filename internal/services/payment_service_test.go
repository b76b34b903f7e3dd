package services

import (
	"strings"
	"testing"

	"renthub/internal/models"
	"renthub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentCreateLeavesPending(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db, nil) // 默认通道恒成功

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	lease := createTestLease(t, db, property, tenant.ID)

	payment, err := svc.Create(tenant.ID, CreatePaymentParams{
		LeaseID:       lease.ID,
		Amount:        1200,
		PaymentMethod: models.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)

	// 创建只登记，不走支付通道
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, models.PaymentTypeRent, payment.PaymentType)
	assert.Empty(t, payment.TransactionID)
	assert.Nil(t, payment.PaymentDate)

	// 租约快照复制
	assert.Equal(t, property.ID, payment.PropertyID)
	assert.Equal(t, owner.ID, payment.OwnerID)
}

func TestPaymentProcessCompletes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db, nil)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	lease := createTestLease(t, db, property, tenant.ID)

	payment, err := svc.Create(tenant.ID, CreatePaymentParams{
		LeaseID:       lease.ID,
		Amount:        1200,
		PaymentMethod: models.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)

	processed, err := svc.Process(payment.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, processed.Status)
	assert.True(t, strings.HasPrefix(processed.TransactionID, "txn_"))
	assert.NotEmpty(t, processed.ReceiptURL)
	assert.NotNil(t, processed.PaymentDate)

	// 已完成的支付不能重复扣款
	_, err = svc.Process(payment.ID, tenant.ID)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidState))
}

func TestPaymentProcessFailedThenRetry(t *testing.T) {
	db := setupTestDB(t)

	// 通道首次拒绝，重试放行
	declined := false
	svc := NewPaymentService(db, func(*models.Payment) bool {
		if !declined {
			declined = true
			return false
		}
		return true
	})

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	lease := createTestLease(t, db, property, tenant.ID)

	payment, err := svc.Create(tenant.ID, CreatePaymentParams{
		LeaseID:       lease.ID,
		Amount:        1200,
		PaymentMethod: models.PaymentMethodCreditCard,
	})
	require.NoError(t, err)

	failed, err := svc.Process(payment.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, failed.Status)
	assert.Empty(t, failed.TransactionID)
	assert.Nil(t, failed.PaymentDate)

	// 失败的支付可以重新处理
	retried, err := svc.Process(payment.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, retried.Status)
	assert.True(t, strings.HasPrefix(retried.TransactionID, "txn_"))
}

func TestPaymentProcessForbiddenForStranger(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db, nil)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	stranger := createTestUser(t, db, "other@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	lease := createTestLease(t, db, property, tenant.ID)

	payment, err := svc.Create(tenant.ID, CreatePaymentParams{
		LeaseID:       lease.ID,
		Amount:        500,
		PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	_, err = svc.Process(payment.ID, stranger.ID)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	// 房东是支付关联人，可以处理
	processed, err := svc.Process(payment.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, processed.Status)
}

func TestPaymentCreateForbiddenForNonTenant(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db, nil)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	lease := createTestLease(t, db, property, tenant.ID)

	_, err := svc.Create(owner.ID, CreatePaymentParams{
		LeaseID:       lease.ID,
		Amount:        1200,
		PaymentMethod: models.PaymentMethodCash,
	})
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
}

func TestPaymentListScopes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db, nil)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	manager := createTestUser(t, db, "manager@test.dev", models.RoleManager)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	require.NoError(t, db.Model(property).Update("manager_id", manager.ID).Error)
	lease := createTestLease(t, db, property, tenant.ID)

	_, err := svc.Create(tenant.ID, CreatePaymentParams{
		LeaseID:       lease.ID,
		Amount:        1200,
		PaymentMethod: models.PaymentMethodCheck,
	})
	require.NoError(t, err)

	for _, tc := range []struct {
		userID uint
		role   string
	}{
		{tenant.ID, models.RoleTenant},
		{owner.ID, models.RoleOwner},
		{manager.ID, models.RoleManager},
	} {
		payments, total, err := svc.ListForUser(tc.userID, tc.role, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total, "role %s", tc.role)
		assert.Len(t, payments, 1, "role %s", tc.role)
	}

	// 无关经理看不到
	other := createTestUser(t, db, "other@test.dev", models.RoleManager)
	payments, total, err := svc.ListForUser(other.ID, models.RoleManager, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, payments)
}

func TestPaymentGetByLeaseVisibility(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db, nil)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	stranger := createTestUser(t, db, "other@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	lease := createTestLease(t, db, property, tenant.ID)

	payment, err := svc.Create(tenant.ID, CreatePaymentParams{
		LeaseID:       lease.ID,
		Amount:        300,
		PaymentType:   models.PaymentTypeLateFee,
		PaymentMethod: models.PaymentMethodOther,
	})
	require.NoError(t, err)

	_, err = svc.GetByLease(lease.ID, stranger.ID)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	payments, err := svc.GetByLease(lease.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, payment.ID, payments[0].ID)

	_, err = svc.GetByID(payment.ID, stranger.ID)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	got, err := svc.GetByID(payment.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)
}
