package services

import (
	"encoding/json"
	stderrors "errors"
	"time"

	"renthub/internal/models"
	"renthub/internal/notify"
	"renthub/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaintenanceService 维修工单服务
type MaintenanceService struct {
	db *gorm.DB
}

// NewMaintenanceService 创建维修工单服务实例
func NewMaintenanceService(db *gorm.DB) *MaintenanceService {
	return &MaintenanceService{db: db}
}

// maintenanceNote 工单跟进记录（存入Notes JSON数组）
type maintenanceNote struct {
	Content   string    `json:"content"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Create 创建维修工单（仅持有该房源有效租约的租客）
func (s *MaintenanceService) Create(tenantID uint, request *models.MaintenanceRequest) error {
	if _, err := loadProperty(s.db, request.PropertyID); err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Lease{}).
		Where("property_id = ? AND tenant_id = ? AND is_active = ?",
			request.PropertyID, tenantID, true).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errors.NewForbidden("只有持有该房源有效租约的租客可以报修")
	}

	request.TenantID = tenantID
	request.Status = models.MaintenanceStatusPending
	if request.Priority == "" {
		request.Priority = models.MaintenancePriorityMedium
	}

	return s.db.Create(request).Error
}

// GetByID 按ID获取工单（租客本人，或房源的房东/经理）
func (s *MaintenanceService) GetByID(id, callerID uint) (*models.MaintenanceRequest, error) {
	request, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if request.TenantID != callerID {
		property, err := loadProperty(s.db, request.PropertyID)
		if err != nil {
			return nil, err
		}
		if !property.IsOwnerOrManager(callerID) {
			return nil, errors.NewForbidden("无权查看该工单")
		}
	}
	return request, nil
}

// ListForUser 按身份范围列出工单
// 租客看自己提的，房东看名下房源的，经理看托管房源的。
func (s *MaintenanceService) ListForUser(userID uint, role, status string, page, pageSize int) ([]*models.MaintenanceRequest, int64, error) {
	query := s.db.Model(&models.MaintenanceRequest{})

	switch role {
	case models.RoleTenant:
		query = query.Where("tenant_id = ?", userID)
	case models.RoleOwner:
		query = query.Where("property_id IN (?)",
			s.db.Model(&models.Property{}).Select("id").Where("owner_id = ?", userID))
	case models.RoleManager:
		query = query.Where("property_id IN (?)",
			s.db.Model(&models.Property{}).Select("id").Where("manager_id = ?", userID))
	default:
		return nil, 0, errors.NewForbidden("无权查看工单")
	}

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []*models.MaintenanceRequest
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// GetByProperty 按房源获取工单列表（该房源的房东/经理）
func (s *MaintenanceService) GetByProperty(propertyID, userID uint) ([]*models.MaintenanceRequest, error) {
	property, err := loadProperty(s.db, propertyID)
	if err != nil {
		return nil, err
	}

	if !property.IsOwnerOrManager(userID) {
		return nil, errors.NewForbidden("无权查看该房源的工单")
	}

	var requests []*models.MaintenanceRequest
	if err := s.db.Where("property_id = ?", propertyID).
		Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// UpdateStatus 更新工单状态
// 租客只能取消自己提交的未完成工单；房东/经理可做任意状态流转。
// assigned 记录指派时间，completed 记录完成时间。
func (s *MaintenanceService) UpdateStatus(id, callerID uint, callerRole, status, note string) (*models.MaintenanceRequest, error) {
	if !validMaintenanceStatus(status) {
		return nil, errors.NewValidation("参数校验失败", errors.FieldError{
			Field:   "status",
			Message: "取值必须为 pending assigned in_progress completed canceled 之一",
		})
	}

	request, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if callerRole == models.RoleTenant {
		if request.TenantID != callerID {
			return nil, errors.NewForbidden("无权修改该工单")
		}
		if status != models.MaintenanceStatusCanceled {
			return nil, errors.NewForbidden("租客只能取消工单")
		}
		if request.Status == models.MaintenanceStatusCompleted {
			return nil, errors.NewInvalidState("已完成的工单不能取消")
		}
	} else {
		property, err := loadProperty(s.db, request.PropertyID)
		if err != nil {
			return nil, err
		}
		if !property.IsOwnerOrManager(callerID) {
			return nil, errors.NewForbidden("无权修改该工单")
		}
	}

	now := time.Now()
	updates := map[string]interface{}{"status": status}
	switch status {
	case models.MaintenanceStatusAssigned:
		updates["assigned_at"] = now
	case models.MaintenanceStatusCompleted:
		updates["completed_at"] = now
	}

	if note != "" {
		notes, err := appendNote(request.Notes, maintenanceNote{
			Content:   note,
			CreatedBy: callerID,
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		updates["notes"] = notes
	}

	if err := s.db.Model(request).Updates(updates).Error; err != nil {
		return nil, err
	}

	updated, err := s.load(id)
	if err != nil {
		return nil, err
	}
	notify.Push(updated.TenantID, notify.EventMaintenanceUpdated, updated)
	return updated, nil
}

// AddNote 追加工单跟进记录（工单租客本人，或房源的房东/经理）
// 独立于状态流转，任何状态下都可留言。
func (s *MaintenanceService) AddNote(id, callerID uint, content string) (*models.MaintenanceRequest, error) {
	request, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if request.TenantID != callerID {
		property, err := loadProperty(s.db, request.PropertyID)
		if err != nil {
			return nil, err
		}
		if !property.IsOwnerOrManager(callerID) {
			return nil, errors.NewForbidden("无权在该工单留言")
		}
	}

	notes, err := appendNote(request.Notes, maintenanceNote{
		Content:   content,
		CreatedBy: callerID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(request).Update("notes", notes).Error; err != nil {
		return nil, err
	}

	updated, err := s.load(id)
	if err != nil {
		return nil, err
	}
	notify.Push(updated.TenantID, notify.EventMaintenanceUpdated, updated)
	return updated, nil
}

// Assign 指派工单处理人（房源的房东/经理）
func (s *MaintenanceService) Assign(id, callerID, assigneeID uint, scheduledDate *time.Time) (*models.MaintenanceRequest, error) {
	request, err := s.load(id)
	if err != nil {
		return nil, err
	}

	property, err := loadProperty(s.db, request.PropertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsOwnerOrManager(callerID) {
		return nil, errors.NewForbidden("无权指派该工单")
	}

	if request.Status == models.MaintenanceStatusCompleted || request.Status == models.MaintenanceStatusCanceled {
		return nil, errors.NewInvalidState("工单当前状态为 %s，不能指派", request.Status)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"assigned_to": assigneeID,
		"assigned_at": now,
		"status":      models.MaintenanceStatusAssigned,
	}
	if scheduledDate != nil {
		updates["scheduled_date"] = *scheduledDate
	}

	if err := s.db.Model(request).Updates(updates).Error; err != nil {
		return nil, err
	}

	updated, err := s.load(id)
	if err != nil {
		return nil, err
	}
	notify.Push(updated.TenantID, notify.EventMaintenanceUpdated, updated)
	return updated, nil
}

func (s *MaintenanceService) load(id uint) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	if err := s.db.First(&request, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("维修工单不存在")
		}
		return nil, err
	}
	return &request, nil
}

func validMaintenanceStatus(status string) bool {
	switch status {
	case models.MaintenanceStatusPending, models.MaintenanceStatusAssigned,
		models.MaintenanceStatusInProgress, models.MaintenanceStatusCompleted,
		models.MaintenanceStatusCanceled:
		return true
	}
	return false
}

// appendNote 在JSON数组末尾追加一条跟进记录
func appendNote(existing datatypes.JSON, note maintenanceNote) (datatypes.JSON, error) {
	var notes []maintenanceNote
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &notes); err != nil {
			return nil, err
		}
	}
	notes = append(notes, note)
	data, err := json.Marshal(notes)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
