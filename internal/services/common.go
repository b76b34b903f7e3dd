package services

import (
	stderrors "errors"

	"renthub/internal/models"
	"renthub/pkg/errors"

	"gorm.io/gorm"
)

// 跨组件实体读取
// 读取一律排在本地写入之前：记录缺失返回NotFound，
// 存储故障返回ServiceUnavailable并中止整个操作（见级联设计）。

func loadProperty(db *gorm.DB, id uint) (*models.Property, error) {
	var property models.Property
	if err := db.First(&property, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("房源不存在")
		}
		return nil, errors.NewServiceUnavailable("房源查询失败")
	}
	return &property, nil
}

func loadLease(db *gorm.DB, id uint) (*models.Lease, error) {
	var lease models.Lease
	if err := db.First(&lease, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("租约不存在")
		}
		return nil, errors.NewServiceUnavailable("租约查询失败")
	}
	return &lease, nil
}

func loadApplication(db *gorm.DB, id uint) (*models.RentalApplication, error) {
	var application models.RentalApplication
	if err := db.First(&application, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("租房申请不存在")
		}
		return nil, errors.NewServiceUnavailable("租房申请查询失败")
	}
	return &application, nil
}
