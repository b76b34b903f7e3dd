package services

import (
	stderrors "errors"
	"fmt"
	"time"

	"renthub/internal/models"
	"renthub/internal/notify"
	"renthub/internal/saga"
	"renthub/pkg/errors"

	"gorm.io/gorm"
)

// ApplicationService 租房申请服务
// 状态机：pending -> approved/rejected/canceled，除pending外均为终态。
type ApplicationService struct {
	db     *gorm.DB
	runner *saga.Runner
}

// NewApplicationService 创建租房申请服务实例
func NewApplicationService(db *gorm.DB, runner *saga.Runner) *ApplicationService {
	return &ApplicationService{db: db, runner: runner}
}

// Submit 提交租房申请（仅租客）
// 目标房源必须可租；同一(房源,租客)最多一条pending申请。
func (s *ApplicationService) Submit(tenantID uint, application *models.RentalApplication) error {
	property, err := loadProperty(s.db, application.PropertyID)
	if err != nil {
		return err
	}

	if !property.IsAvailable {
		return errors.NewInvalidState("该房源当前不可租")
	}

	// 预检查给出友好提示，最终保证是条件唯一索引
	var count int64
	if err := s.db.Model(&models.RentalApplication{}).
		Where("property_id = ? AND tenant_id = ? AND status = ?",
			application.PropertyID, tenantID, models.ApplicationStatusPending).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.NewConflict("您已有一条待审核的申请")
	}

	application.TenantID = tenantID
	application.Status = models.ApplicationStatusPending

	if err := s.db.Create(application).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.NewConflict("您已有一条待审核的申请")
		}
		return err
	}

	recipients := []uint{property.OwnerID}
	if property.ManagerID != nil {
		recipients = append(recipients, *property.ManagerID)
	}
	notify.PushAll(recipients, notify.EventApplicationSubmitted, application)

	return nil
}

// GetByProperty 按房源获取申请列表（该房源的房东/经理）
func (s *ApplicationService) GetByProperty(propertyID, userID uint) ([]*models.RentalApplication, error) {
	property, err := loadProperty(s.db, propertyID)
	if err != nil {
		return nil, err
	}

	if !property.IsOwnerOrManager(userID) {
		return nil, errors.NewForbidden("无权查看该房源的申请")
	}

	var applications []*models.RentalApplication
	if err := s.db.Where("property_id = ?", propertyID).
		Order("created_at DESC").Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

// GetByTenant 按租客获取申请列表（本人，或房东/经理角色）
func (s *ApplicationService) GetByTenant(tenantID, callerID uint, callerRole string) ([]*models.RentalApplication, error) {
	if callerID != tenantID && callerRole != models.RoleOwner && callerRole != models.RoleManager {
		return nil, errors.NewForbidden("无权查看这些申请")
	}

	var applications []*models.RentalApplication
	if err := s.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

// Review 审核申请（目标房源的房东/经理）
// 批准走级联saga：1) 房源置为不可租 2) 同房源其他pending申请统一拒绝 3) 落盘批准。
// 任一步骤失败即补偿已完成步骤并中止，后续步骤不会提交。
func (s *ApplicationService) Review(applicationID, reviewerID uint, status, rejectionReason string) (*models.RentalApplication, error) {
	if status != models.ApplicationStatusApproved && status != models.ApplicationStatusRejected {
		return nil, errors.NewValidation("参数校验失败", errors.FieldError{
			Field:   "status",
			Message: "取值必须为 approved rejected 之一",
		})
	}

	application, err := loadApplication(s.db, applicationID)
	if err != nil {
		return nil, err
	}

	property, err := loadProperty(s.db, application.PropertyID)
	if err != nil {
		return nil, err
	}

	if !property.IsOwnerOrManager(reviewerID) {
		return nil, errors.NewForbidden("无权审核该房源的申请")
	}

	if application.Status != models.ApplicationStatusPending {
		return nil, errors.NewInvalidState("申请当前状态为 %s，不能审核", application.Status)
	}

	now := time.Now()

	if status == models.ApplicationStatusRejected {
		updates := map[string]interface{}{
			"status":      models.ApplicationStatusRejected,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		}
		if rejectionReason != "" {
			updates["rejection_reason"] = rejectionReason
		}
		if err := s.db.Model(application).Updates(updates).Error; err != nil {
			return nil, err
		}
		notify.Push(application.TenantID, notify.EventApplicationReviewed, application)
		return loadApplication(s.db, applicationID)
	}

	// 批准级联
	sagaKey := fmt.Sprintf("application-approve:%d", applicationID)
	steps := []saga.Step{
		{
			Name: "mark-property-unavailable",
			Run: func() error {
				return s.db.Model(&models.Property{}).
					Where("id = ?", property.ID).
					Update("is_available", false).Error
			},
			Compensate: func() error {
				return s.db.Model(&models.Property{}).
					Where("id = ?", property.ID).
					Update("is_available", true).Error
			},
		},
		{
			Name: "reject-sibling-applications",
			Run: func() error {
				return s.db.Model(&models.RentalApplication{}).
					Where("property_id = ? AND id <> ? AND status = ?",
						property.ID, applicationID, models.ApplicationStatusPending).
					Updates(map[string]interface{}{
						"status":           models.ApplicationStatusRejected,
						"rejection_reason": models.RejectionReasonSiblingApproved,
						"reviewed_by":      reviewerID,
						"reviewed_at":      now,
					}).Error
			},
			// 无补偿：被拒绝的兄弟申请保持拒绝，批准失败时房源恢复可租即可
		},
		{
			Name: "approve-application",
			Run: func() error {
				return s.db.Model(application).Updates(map[string]interface{}{
					"status":      models.ApplicationStatusApproved,
					"reviewed_by": reviewerID,
					"reviewed_at": now,
				}).Error
			},
		},
	}

	if err := s.runner.Execute(sagaKey, steps); err != nil {
		return nil, errors.NewServiceUnavailable("申请批准级联未完成，请重试")
	}

	notify.Push(application.TenantID, notify.EventApplicationReviewed, application)
	return loadApplication(s.db, applicationID)
}

// Cancel 取消申请（仅提交申请的租客本人，且仅限pending）
func (s *ApplicationService) Cancel(applicationID, tenantID uint) (*models.RentalApplication, error) {
	application, err := loadApplication(s.db, applicationID)
	if err != nil {
		return nil, err
	}

	if application.TenantID != tenantID {
		return nil, errors.NewForbidden("无权取消该申请")
	}

	if application.Status != models.ApplicationStatusPending {
		return nil, errors.NewInvalidState("申请当前状态为 %s，不能取消", application.Status)
	}

	if err := s.db.Model(application).
		Update("status", models.ApplicationStatusCanceled).Error; err != nil {
		return nil, err
	}

	application.Status = models.ApplicationStatusCanceled
	return application, nil
}
