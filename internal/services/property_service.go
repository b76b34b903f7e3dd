package services

import (
	"fmt"

	"renthub/internal/models"
	"renthub/pkg/errors"

	"gorm.io/gorm"
)

// PropertyService 房源服务
// IsAvailable 的翻转只允许走申请审批/退租级联，
// 直接update覆盖该字段按最后写入生效处理（已知缺口）。
type PropertyService struct {
	db     *gorm.DB
	strict bool
}

// NewPropertyService 创建房源服务实例
func NewPropertyService(db *gorm.DB, strict bool) *PropertyService {
	return &PropertyService{db: db, strict: strict}
}

// Create 创建房源（仅房东），新房源默认可租
func (s *PropertyService) Create(ownerID uint, property *models.Property) error {
	property.OwnerID = ownerID
	property.IsAvailable = true
	return s.db.Create(property).Error
}

// GetByID 按ID获取房源
func (s *PropertyService) GetByID(id uint) (*models.Property, error) {
	return loadProperty(s.db, id)
}

// PropertyFilters 房源列表过滤条件
type PropertyFilters struct {
	MinRent      *float64
	MaxRent      *float64
	PropertyType string
	Bedrooms     *int
	City         string
	State        string
	IsAvailable  *bool
}

// List 组合查询（分页，按创建时间倒序）
func (s *PropertyService) List(filters PropertyFilters, page, pageSize int) ([]*models.Property, int64, error) {
	var properties []*models.Property
	var total int64

	query := s.db.Model(&models.Property{})

	if filters.MinRent != nil {
		query = query.Where("rent_amount >= ?", *filters.MinRent)
	}
	if filters.MaxRent != nil {
		query = query.Where("rent_amount <= ?", *filters.MaxRent)
	}
	if filters.PropertyType != "" {
		query = query.Where("property_type = ?", filters.PropertyType)
	}
	if filters.Bedrooms != nil {
		query = query.Where("bedrooms = ?", *filters.Bedrooms)
	}
	if filters.City != "" {
		query = query.Where("address_city LIKE ?", fmt.Sprintf("%%%s%%", filters.City))
	}
	if filters.State != "" {
		query = query.Where("address_state LIKE ?", fmt.Sprintf("%%%s%%", filters.State))
	}
	if filters.IsAvailable != nil {
		query = query.Where("is_available = ?", *filters.IsAvailable)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&properties).Error; err != nil {
		return nil, 0, err
	}

	return properties, total, nil
}

// Search 按关键词检索标题/描述/地址
func (s *PropertyService) Search(keyword string, page, pageSize int) ([]*models.Property, int64, error) {
	var properties []*models.Property
	var total int64

	pattern := fmt.Sprintf("%%%s%%", keyword)
	query := s.db.Model(&models.Property{}).Where(
		"title LIKE ? OR description LIKE ? OR address_street LIKE ? OR address_city LIKE ? OR address_state LIKE ? OR address_zip_code LIKE ?",
		pattern, pattern, pattern, pattern, pattern, pattern,
	)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&properties).Error; err != nil {
		return nil, 0, err
	}

	return properties, total, nil
}

// GetByOwner 按房东获取房源列表
func (s *PropertyService) GetByOwner(ownerID uint) ([]*models.Property, error) {
	var properties []*models.Property
	if err := s.db.Where("owner_id = ?", ownerID).Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// GetManagedBy 按物业经理获取房源列表
func (s *PropertyService) GetManagedBy(managerID uint) ([]*models.Property, error) {
	var properties []*models.Property
	if err := s.db.Where("manager_id = ?", managerID).Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// Update 更新房源（房东或物业经理）
// ownerId 不可变；managerId 仅房东可改，非房东提交时静默忽略（源系统行为）。
func (s *PropertyService) Update(id uint, userID uint, updates map[string]interface{}) (*models.Property, error) {
	property, err := loadProperty(s.db, id)
	if err != nil {
		return nil, err
	}

	if !property.IsOwnerOrManager(userID) {
		return nil, errors.NewForbidden("无权修改该房源")
	}

	delete(updates, "owner_id")
	if _, ok := updates["manager_id"]; ok && !property.IsOwner(userID) {
		delete(updates, "manager_id")
	}

	if len(updates) == 0 {
		return property, nil
	}

	if err := s.db.Model(property).Updates(updates).Error; err != nil {
		return nil, err
	}

	return loadProperty(s.db, id)
}

// AssignManager 指派物业经理（仅房东）
func (s *PropertyService) AssignManager(propertyID, ownerID, managerID uint) (*models.Property, error) {
	property, err := loadProperty(s.db, propertyID)
	if err != nil {
		return nil, err
	}

	if !property.IsOwner(ownerID) {
		return nil, errors.NewForbidden("只有房东可以指派物业经理")
	}

	if err := s.db.Model(property).Update("manager_id", managerID).Error; err != nil {
		return nil, err
	}

	property.ManagerID = &managerID
	return property, nil
}

// Delete 删除房源（仅房东）
// 严格完整性模式下，存在有效租约或未结申请时拒绝删除。
func (s *PropertyService) Delete(id uint, userID uint) error {
	property, err := loadProperty(s.db, id)
	if err != nil {
		return err
	}

	if !property.IsOwner(userID) {
		return errors.NewForbidden("只有房东可以删除该房源")
	}

	if s.strict {
		var leaseCount int64
		if err := s.db.Model(&models.Lease{}).
			Where("property_id = ? AND is_active = ?", id, true).
			Count(&leaseCount).Error; err != nil {
			return err
		}
		if leaseCount > 0 {
			return errors.NewConflict("房源存在有效租约，不能删除")
		}

		var appCount int64
		if err := s.db.Model(&models.RentalApplication{}).
			Where("property_id = ? AND status IN ?", id,
				[]string{models.ApplicationStatusPending, models.ApplicationStatusApproved}).
			Count(&appCount).Error; err != nil {
			return err
		}
		if appCount > 0 {
			return errors.NewConflict("房源存在未结的租房申请，不能删除")
		}
	}

	return s.db.Delete(&models.Property{}, id).Error
}

// SetAvailability 级联逻辑专用的可租状态翻转
func (s *PropertyService) SetAvailability(id uint, available bool) error {
	return s.db.Model(&models.Property{}).
		Where("id = ?", id).
		Update("is_available", available).Error
}
