package services

import (
	"testing"
	"time"

	"renthub/internal/models"
	"renthub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApplication(propertyID uint) *models.RentalApplication {
	return &models.RentalApplication{
		PropertyID: propertyID,
		MoveInDate: time.Now().AddDate(0, 1, 0),
		LeaseTerm:  12,
	}
}

func TestApplicationSubmit(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, newTestRunner())

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)

	application := newApplication(property.ID)
	require.NoError(t, svc.Submit(tenant.ID, application))

	assert.Equal(t, models.ApplicationStatusPending, application.Status)
	assert.Equal(t, tenant.ID, application.TenantID)
}

func TestApplicationSubmitUnavailableProperty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, newTestRunner())

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	require.NoError(t, db.Model(property).Update("is_available", false).Error)

	err := svc.Submit(tenant.ID, newApplication(property.ID))
	assert.True(t, errors.IsCode(err, errors.CodeInvalidState))
}

func TestApplicationSubmitDuplicatePending(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, newTestRunner())

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)

	require.NoError(t, svc.Submit(tenant.ID, newApplication(property.ID)))

	err := svc.Submit(tenant.ID, newApplication(property.ID))
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
}

func TestApplicationResubmitAfterRejection(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, newTestRunner())

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)

	first := newApplication(property.ID)
	require.NoError(t, svc.Submit(tenant.ID, first))
	_, err := svc.Review(first.ID, owner.ID, models.ApplicationStatusRejected, "income too low")
	require.NoError(t, err)

	// 拒绝后可以再次申请，唯一约束只针对pending
	assert.NoError(t, svc.Submit(tenant.ID, newApplication(property.ID)))
}

func TestApplicationReviewApproveCascade(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, newTestRunner())

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenantA := createTestUser(t, db, "a@test.dev", models.RoleTenant)
	tenantB := createTestUser(t, db, "b@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)

	appA := createTestApplication(t, db, property.ID, tenantA.ID)
	appB := createTestApplication(t, db, property.ID, tenantB.ID)

	approved, err := svc.Review(appA.ID, owner.ID, models.ApplicationStatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, owner.ID, *approved.ReviewedBy)

	// 房源置为不可租
	var prop models.Property
	require.NoError(t, db.First(&prop, property.ID).Error)
	assert.False(t, prop.IsAvailable)

	// 兄弟申请统一拒绝
	var sibling models.RentalApplication
	require.NoError(t, db.First(&sibling, appB.ID).Error)
	assert.Equal(t, models.ApplicationStatusRejected, sibling.Status)
	assert.Equal(t, models.RejectionReasonSiblingApproved, sibling.RejectionReason)
}

func TestApplicationReviewForbiddenForStranger(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, newTestRunner())

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	stranger := createTestUser(t, db, "other@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	application := createTestApplication(t, db, property.ID, tenant.ID)

	_, err := svc.Review(application.ID, stranger.ID, models.ApplicationStatusApproved, "")
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
}

func TestApplicationReviewAllowedForManager(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, newTestRunner())

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	manager := createTestUser(t, db, "manager@test.dev", models.RoleManager)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	require.NoError(t, db.Model(property).Update("manager_id", manager.ID).Error)
	application := createTestApplication(t, db, property.ID, tenant.ID)

	reviewed, err := svc.Review(application.ID, manager.ID, models.ApplicationStatusRejected, "no")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, reviewed.Status)
}

func TestApplicationReviewNonPending(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, newTestRunner())

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	application := createTestApplication(t, db, property.ID, tenant.ID)

	_, err := svc.Review(application.ID, owner.ID, models.ApplicationStatusRejected, "late")
	require.NoError(t, err)

	_, err = svc.Review(application.ID, owner.ID, models.ApplicationStatusApproved, "")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidState))
}

func TestApplicationCancel(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, newTestRunner())

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	other := createTestUser(t, db, "other@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	application := createTestApplication(t, db, property.ID, tenant.ID)

	_, err := svc.Cancel(application.ID, other.ID)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	canceled, err := svc.Cancel(application.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusCanceled, canceled.Status)

	// 终态不能再取消
	_, err = svc.Cancel(application.ID, tenant.ID)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidState))
}

func TestApplicationListVisibility(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, newTestRunner())

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	other := createTestUser(t, db, "other@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	createTestApplication(t, db, property.ID, tenant.ID)

	_, err := svc.GetByProperty(property.ID, other.ID)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	applications, err := svc.GetByProperty(property.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, applications, 1)

	// 租客只能看自己的
	_, err = svc.GetByTenant(tenant.ID, other.ID, models.RoleTenant)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	mine, err := svc.GetByTenant(tenant.ID, tenant.ID, models.RoleTenant)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	// 房东/经理角色可以查指定租客的申请
	byOwner, err := svc.GetByTenant(tenant.ID, owner.ID, models.RoleOwner)
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)
}
