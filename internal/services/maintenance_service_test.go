package services

import (
	"encoding/json"
	"testing"

	"renthub/internal/models"
	"renthub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMaintenanceRequest(propertyID uint) *models.MaintenanceRequest {
	return &models.MaintenanceRequest{
		PropertyID:  propertyID,
		Title:       "Leaking faucet",
		Description: "Kitchen faucet drips constantly",
		Category:    models.MaintenanceCategoryPlumbing,
	}
}

func TestMaintenanceCreateRequiresActiveLease(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaintenanceService(db)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)

	// 无租约不能报修
	err := svc.Create(tenant.ID, newMaintenanceRequest(property.ID))
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	createTestLease(t, db, property, tenant.ID)

	request := newMaintenanceRequest(property.ID)
	require.NoError(t, svc.Create(tenant.ID, request))
	assert.Equal(t, models.MaintenanceStatusPending, request.Status)
	assert.Equal(t, models.MaintenancePriorityMedium, request.Priority)
}

func TestMaintenanceTenantCanOnlyCancel(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaintenanceService(db)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	createTestLease(t, db, property, tenant.ID)

	request := newMaintenanceRequest(property.ID)
	require.NoError(t, svc.Create(tenant.ID, request))

	_, err := svc.UpdateStatus(request.ID, tenant.ID, models.RoleTenant, models.MaintenanceStatusCompleted, "")
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	canceled, err := svc.UpdateStatus(request.ID, tenant.ID, models.RoleTenant, models.MaintenanceStatusCanceled, "fixed it myself")
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceStatusCanceled, canceled.Status)
}

func TestMaintenanceTenantCannotCancelCompleted(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaintenanceService(db)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	createTestLease(t, db, property, tenant.ID)

	request := newMaintenanceRequest(property.ID)
	require.NoError(t, svc.Create(tenant.ID, request))

	completed, err := svc.UpdateStatus(request.ID, owner.ID, models.RoleOwner, models.MaintenanceStatusCompleted, "")
	require.NoError(t, err)
	assert.NotNil(t, completed.CompletedAt)

	_, err = svc.UpdateStatus(request.ID, tenant.ID, models.RoleTenant, models.MaintenanceStatusCanceled, "")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidState))
}

func TestMaintenanceAssign(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaintenanceService(db)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	manager := createTestUser(t, db, "manager@test.dev", models.RoleManager)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	require.NoError(t, db.Model(property).Update("manager_id", manager.ID).Error)
	createTestLease(t, db, property, tenant.ID)

	request := newMaintenanceRequest(property.ID)
	require.NoError(t, svc.Create(tenant.ID, request))

	// 租客不能指派
	_, err := svc.Assign(request.ID, tenant.ID, manager.ID, nil)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	assigned, err := svc.Assign(request.ID, manager.ID, manager.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, manager.ID, *assigned.AssignedTo)
	assert.NotNil(t, assigned.AssignedAt)

	// 已取消/完成的工单不能指派
	_, err = svc.UpdateStatus(request.ID, owner.ID, models.RoleOwner, models.MaintenanceStatusCanceled, "")
	require.NoError(t, err)
	_, err = svc.Assign(request.ID, manager.ID, manager.ID, nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidState))
}

func TestMaintenanceNotesAppend(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaintenanceService(db)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	createTestLease(t, db, property, tenant.ID)

	request := newMaintenanceRequest(property.ID)
	require.NoError(t, svc.Create(tenant.ID, request))

	_, err := svc.UpdateStatus(request.ID, owner.ID, models.RoleOwner, models.MaintenanceStatusInProgress, "plumber scheduled")
	require.NoError(t, err)
	updated, err := svc.UpdateStatus(request.ID, owner.ID, models.RoleOwner, models.MaintenanceStatusCompleted, "faucet replaced")
	require.NoError(t, err)

	var notes []maintenanceNote
	require.NoError(t, json.Unmarshal(updated.Notes, &notes))
	require.Len(t, notes, 2)
	assert.Equal(t, "plumber scheduled", notes[0].Content)
	assert.Equal(t, "faucet replaced", notes[1].Content)
	assert.Equal(t, owner.ID, notes[1].CreatedBy)
}

func TestMaintenanceAddNote(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaintenanceService(db)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	stranger := createTestUser(t, db, "other@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	createTestLease(t, db, property, tenant.ID)

	request := newMaintenanceRequest(property.ID)
	require.NoError(t, svc.Create(tenant.ID, request))

	// 租客留言不触碰状态
	updated, err := svc.AddNote(request.ID, tenant.ID, "leak is getting worse")
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceStatusPending, updated.Status)

	updated, err = svc.AddNote(request.ID, owner.ID, "plumber booked for friday")
	require.NoError(t, err)

	var notes []maintenanceNote
	require.NoError(t, json.Unmarshal(updated.Notes, &notes))
	require.Len(t, notes, 2)
	assert.Equal(t, tenant.ID, notes[0].CreatedBy)
	assert.Equal(t, owner.ID, notes[1].CreatedBy)

	_, err = svc.AddNote(request.ID, stranger.ID, "nope")
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
}

func TestMaintenanceListScopes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaintenanceService(db)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	manager := createTestUser(t, db, "manager@test.dev", models.RoleManager)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	require.NoError(t, db.Model(property).Update("manager_id", manager.ID).Error)
	createTestLease(t, db, property, tenant.ID)

	request := newMaintenanceRequest(property.ID)
	require.NoError(t, svc.Create(tenant.ID, request))

	for _, tc := range []struct {
		userID uint
		role   string
	}{
		{tenant.ID, models.RoleTenant},
		{owner.ID, models.RoleOwner},
		{manager.ID, models.RoleManager},
	} {
		requests, total, err := svc.ListForUser(tc.userID, tc.role, "", 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total, "role %s", tc.role)
		assert.Len(t, requests, 1, "role %s", tc.role)
	}

	// 状态过滤
	requests, total, err := svc.ListForUser(tenant.ID, models.RoleTenant, models.MaintenanceStatusCompleted, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, requests)
}

func TestMaintenanceGetVisibility(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaintenanceService(db)

	owner := createTestUser(t, db, "owner@test.dev", models.RoleOwner)
	tenant := createTestUser(t, db, "tenant@test.dev", models.RoleTenant)
	stranger := createTestUser(t, db, "other@test.dev", models.RoleTenant)
	property := createTestProperty(t, db, owner.ID)
	createTestLease(t, db, property, tenant.ID)

	request := newMaintenanceRequest(property.ID)
	require.NoError(t, svc.Create(tenant.ID, request))

	_, err := svc.GetByID(request.ID, stranger.ID)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	got, err := svc.GetByID(request.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, got.ID)
}
