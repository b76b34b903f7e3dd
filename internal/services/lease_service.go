package services

import (
	stderrors "errors"
	"fmt"
	"time"

	"renthub/internal/models"
	"renthub/internal/notify"
	"renthub/internal/saga"
	"renthub/pkg/errors"
	"renthub/pkg/logger"

	"gorm.io/gorm"
)

// LeaseService 租约服务
// 主状态机：isActive true -> false（终态），续租产生新租约记录。
type LeaseService struct {
	db     *gorm.DB
	runner *saga.Runner
	strict bool
}

// NewLeaseService 创建租约服务实例
func NewLeaseService(db *gorm.DB, runner *saga.Runner, strict bool) *LeaseService {
	return &LeaseService{db: db, runner: runner, strict: strict}
}

// CreateLeaseParams 创建租约参数
type CreateLeaseParams struct {
	PropertyID    uint
	TenantID      uint
	ApplicationID *uint // 可选，来源申请
	StartDate     time.Time
	EndDate       time.Time
	RentAmount    float64
	Deposit       float64
	PaymentDueDay int
	SpecialTerms  string
}

// Create 创建租约（目标房源的房东/经理）
// OwnerID/ManagerID 从房源快照复制，之后不再回读。
// 默认模式下创建不翻转房源可租状态（经申请审批的路径已翻转过）；
// 严格完整性模式下同步置为不可租。
func (s *LeaseService) Create(creatorID uint, params CreateLeaseParams) (*models.Lease, error) {
	property, err := loadProperty(s.db, params.PropertyID)
	if err != nil {
		return nil, err
	}

	if !property.IsOwnerOrManager(creatorID) {
		return nil, errors.NewForbidden("无权为该房源创建租约")
	}

	if params.ApplicationID != nil {
		application, err := loadApplication(s.db, *params.ApplicationID)
		if err != nil {
			return nil, err
		}
		if application.Status != models.ApplicationStatusApproved {
			return nil, errors.NewInvalidState("来源申请未批准，不能创建租约")
		}
		if application.PropertyID != params.PropertyID || application.TenantID != params.TenantID {
			return nil, errors.NewValidation("参数校验失败", errors.FieldError{
				Field:   "application_id",
				Message: "申请与房源或租客不匹配",
			})
		}
	}

	// 预检查给出友好提示，最终保证是条件唯一索引
	var count int64
	if err := s.db.Model(&models.Lease{}).
		Where("property_id = ? AND is_active = ?", params.PropertyID, true).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.NewConflict("该房源已存在有效租约")
	}

	if params.PaymentDueDay == 0 {
		params.PaymentDueDay = 1
	}

	lease := &models.Lease{
		PropertyID:    params.PropertyID,
		TenantID:      params.TenantID,
		OwnerID:       property.OwnerID,
		ManagerID:     property.ManagerID,
		StartDate:     params.StartDate,
		EndDate:       params.EndDate,
		RentAmount:    params.RentAmount,
		Deposit:       params.Deposit,
		IsActive:      true,
		PaymentDueDay: params.PaymentDueDay,
		SpecialTerms:  params.SpecialTerms,
	}

	if err := s.db.Create(lease).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.NewConflict("该房源已存在有效租约")
		}
		return nil, err
	}

	if s.strict && property.IsAvailable {
		// 尽力而为的级联，失败不回滚已创建的租约
		if err := s.db.Model(&models.Property{}).
			Where("id = ?", property.ID).
			Update("is_available", false).Error; err != nil {
			logger.GetLogger().Errorf("lease %d created but availability cascade failed: %v", lease.ID, err)
		}
	}

	notify.Push(lease.TenantID, notify.EventLeaseCreated, lease)
	return lease, nil
}

// GetByID 按ID获取租约（租约关联人）
func (s *LeaseService) GetByID(id, callerID uint) (*models.Lease, error) {
	lease, err := loadLease(s.db, id)
	if err != nil {
		return nil, err
	}
	if lease.RoleOf(callerID) == "" {
		return nil, errors.NewForbidden("无权查看该租约")
	}
	return lease, nil
}

// GetByProperty 按房源获取租约列表（该房源的房东/经理）
func (s *LeaseService) GetByProperty(propertyID, userID uint) ([]*models.Lease, error) {
	property, err := loadProperty(s.db, propertyID)
	if err != nil {
		return nil, err
	}

	if !property.IsOwnerOrManager(userID) {
		return nil, errors.NewForbidden("无权查看该房源的租约")
	}

	var leases []*models.Lease
	if err := s.db.Where("property_id = ?", propertyID).
		Order("created_at DESC").Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// GetByTenant 按租客获取租约列表（本人，或房东/经理角色）
func (s *LeaseService) GetByTenant(tenantID, callerID uint, callerRole string) ([]*models.Lease, error) {
	if callerID != tenantID && callerRole != models.RoleOwner && callerRole != models.RoleManager {
		return nil, errors.NewForbidden("无权查看这些租约")
	}

	var leases []*models.Lease
	if err := s.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// Update 更新租约（租约的房东/经理）
// propertyId/tenantId/ownerId 不可变；managerId 仅房东可改。
func (s *LeaseService) Update(id, userID uint, updates map[string]interface{}) (*models.Lease, error) {
	lease, err := loadLease(s.db, id)
	if err != nil {
		return nil, err
	}

	if !lease.IsOwnerOrManager(userID) {
		return nil, errors.NewForbidden("无权修改该租约")
	}

	delete(updates, "property_id")
	delete(updates, "tenant_id")
	delete(updates, "owner_id")
	if _, ok := updates["manager_id"]; ok && lease.OwnerID != userID {
		delete(updates, "manager_id")
	}

	if len(updates) == 0 {
		return lease, nil
	}

	if err := s.db.Model(lease).Updates(updates).Error; err != nil {
		return nil, err
	}

	return loadLease(s.db, id)
}

// Terminate 发起退租
// 按租约快照推断发起方角色；房东/经理发起立即批准并执行停用级联，
// 租客发起只登记请求，等待 ApproveTermination。
func (s *LeaseService) Terminate(leaseID, userID uint, reason string, moveOutDate *time.Time) (*models.Lease, error) {
	lease, err := loadLease(s.db, leaseID)
	if err != nil {
		return nil, err
	}

	if !lease.IsActive {
		return nil, errors.NewInvalidState("租约已失效")
	}

	requestedBy := lease.RoleOf(userID)
	if requestedBy == "" {
		return nil, errors.NewForbidden("无权对该租约发起退租")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"termination_requested":    true,
		"termination_requested_by": requestedBy,
		"termination_request_date": now,
		"termination_reason":       reason,
	}
	if moveOutDate != nil {
		updates["termination_move_out_date"] = *moveOutDate
	}

	if requestedBy == models.TerminationByTenant {
		if err := s.db.Model(lease).Updates(updates).Error; err != nil {
			return nil, err
		}
		recipients := []uint{lease.OwnerID}
		if lease.ManagerID != nil {
			recipients = append(recipients, *lease.ManagerID)
		}
		notify.PushAll(recipients, notify.EventTerminationRequested, lease)
		return loadLease(s.db, leaseID)
	}

	// 房东/经理发起：登记请求后立即执行停用级联
	if err := s.db.Model(lease).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := s.deactivate(lease, userID); err != nil {
		return nil, err
	}

	notify.Push(lease.TenantID, notify.EventLeaseTerminated, lease)
	return loadLease(s.db, leaseID)
}

// ApproveTermination 批准退租请求（租约的房东/经理）
func (s *LeaseService) ApproveTermination(leaseID, approverID uint) (*models.Lease, error) {
	lease, err := loadLease(s.db, leaseID)
	if err != nil {
		return nil, err
	}

	if !lease.IsOwnerOrManager(approverID) {
		return nil, errors.NewForbidden("无权批准退租请求")
	}

	if !lease.TerminationRequested {
		return nil, errors.NewInvalidState("该租约没有待处理的退租请求")
	}

	if lease.Termination.ApprovedBy != nil {
		return nil, errors.NewInvalidState("退租请求已批准")
	}

	if err := s.deactivate(lease, approverID); err != nil {
		return nil, err
	}

	notify.Push(lease.TenantID, notify.EventLeaseTerminated, lease)
	return loadLease(s.db, leaseID)
}

// deactivate 停用级联：1) 租约置为失效并记录批准信息 2) 房源恢复可租。
// 步骤失败时补偿已完成步骤，后续步骤不会提交。
func (s *LeaseService) deactivate(lease *models.Lease, approverID uint) error {
	now := time.Now()
	sagaKey := fmt.Sprintf("lease-terminate:%d", lease.ID)

	steps := []saga.Step{
		{
			Name: "deactivate-lease",
			Run: func() error {
				return s.db.Model(&models.Lease{}).
					Where("id = ?", lease.ID).
					Updates(map[string]interface{}{
						"is_active":                 false,
						"termination_approved_by":   approverID,
						"termination_approved_date": now,
					}).Error
			},
			Compensate: func() error {
				return s.db.Model(&models.Lease{}).
					Where("id = ?", lease.ID).
					Updates(map[string]interface{}{
						"is_active":                 true,
						"termination_approved_by":   nil,
						"termination_approved_date": nil,
					}).Error
			},
		},
		{
			Name: "restore-availability",
			Run: func() error {
				return s.db.Model(&models.Property{}).
					Where("id = ?", lease.PropertyID).
					Update("is_available", true).Error
			},
		},
	}

	if err := s.runner.Execute(sagaKey, steps); err != nil {
		return errors.NewServiceUnavailable("退租级联未完成，请重试")
	}
	return nil
}

// OfferRenewal 发起续租报价（租约的房东/经理，仅限有效租约）
func (s *LeaseService) OfferRenewal(leaseID, userID uint, newRentAmount float64, newTermLength int) (*models.Lease, error) {
	lease, err := loadLease(s.db, leaseID)
	if err != nil {
		return nil, err
	}

	if !lease.IsOwnerOrManager(userID) {
		return nil, errors.NewForbidden("无权为该租约发起续租报价")
	}

	if !lease.IsActive {
		return nil, errors.NewInvalidState("失效租约不能发起续租报价")
	}

	now := time.Now()
	if err := s.db.Model(lease).Updates(map[string]interface{}{
		"renewal_offered":         true,
		"renewal_offered_at":      now,
		"renewal_new_rent_amount": newRentAmount,
		"renewal_new_term_length": newTermLength,
		"renewal_status":          models.RenewalStatusPending,
		"renewal_response_date":   nil,
	}).Error; err != nil {
		return nil, err
	}

	notify.Push(lease.TenantID, notify.EventRenewalOffered, lease)
	return loadLease(s.db, leaseID)
}

// RespondToRenewal 答复续租报价（仅租约租客）
// 接受时生成新租约：isActive=false，起租日=当前租约到期日，
// 租期按 newTermLength×30天 估算，租金取报价金额。新租约不自动生效。
func (s *LeaseService) RespondToRenewal(leaseID, tenantID uint, response string) (*models.Lease, error) {
	if response != models.RenewalStatusAccepted && response != models.RenewalStatusRejected {
		return nil, errors.NewValidation("参数校验失败", errors.FieldError{
			Field:   "response",
			Message: "取值必须为 accepted rejected 之一",
		})
	}

	lease, err := loadLease(s.db, leaseID)
	if err != nil {
		return nil, err
	}

	if lease.TenantID != tenantID {
		return nil, errors.NewForbidden("只有租客本人可以答复续租报价")
	}

	if !lease.RenewalOffered {
		return nil, errors.NewInvalidState("该租约没有续租报价")
	}

	if lease.Renewal.Status != models.RenewalStatusPending {
		return nil, errors.NewInvalidState("续租报价已%s", renewalStatusLabel(lease.Renewal.Status))
	}

	now := time.Now()

	if response == models.RenewalStatusAccepted {
		newLease := &models.Lease{
			PropertyID:                 lease.PropertyID,
			TenantID:                   lease.TenantID,
			OwnerID:                    lease.OwnerID,
			ManagerID:                  lease.ManagerID,
			StartDate:                  lease.EndDate,
			EndDate:                    lease.EndDate.AddDate(0, 0, lease.Renewal.NewTermLength*30),
			RentAmount:                 lease.Renewal.NewRentAmount,
			Deposit:                    lease.Deposit,
			IsActive:                   false, // 当前租约到期后再生效，生效流程不在本系统范围内
			PaymentDueDay:              lease.PaymentDueDay,
			LateFeesApplicable:         lease.LateFeesApplicable,
			LateFeeAmount:              lease.LateFeeAmount,
			LateFeeApplicableAfterDays: lease.LateFeeApplicableAfterDays,
		}
		if err := s.db.Create(newLease).Error; err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(lease).Updates(map[string]interface{}{
		"renewal_status":        response,
		"renewal_response_date": now,
	}).Error; err != nil {
		return nil, err
	}

	notify.Push(lease.OwnerID, notify.EventRenewalAnswered, lease)
	return loadLease(s.db, leaseID)
}

// ExpireStaleOffers 将超时未答复的续租报价置为expired，返回处理条数
func (s *LeaseService) ExpireStaleOffers(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	result := s.db.Model(&models.Lease{}).
		Where("renewal_offered = ? AND renewal_status = ? AND renewal_offered_at < ?",
			true, models.RenewalStatusPending, cutoff).
		Updates(map[string]interface{}{
			"renewal_status":        models.RenewalStatusExpired,
			"renewal_response_date": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// 续租状态中文提示
func renewalStatusLabel(status string) string {
	switch status {
	case models.RenewalStatusAccepted:
		return "被接受"
	case models.RenewalStatusRejected:
		return "被拒绝"
	case models.RenewalStatusExpired:
		return "过期"
	default:
		return status
	}
}
