package main

import (
	"fmt"
	"time"

	"renthub/internal/database"
	"renthub/internal/models"
	"renthub/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedData 初始化种子数据（演示账号和示例房源）
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建演示用户
	if err := createDemoUsers(db); err != nil {
		return fmt.Errorf("创建演示用户失败: %v", err)
	}

	// 2. 创建示例房源
	if err := createDemoProperties(db); err != nil {
		return fmt.Errorf("创建示例房源失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDemoUsers 每个角色一个演示账号
func createDemoUsers(db *gorm.DB) error {
	demoUsers := []models.User{
		{FirstName: "Olivia", LastName: "Owens", Email: "owner@renthub.dev", Role: models.RoleOwner},
		{FirstName: "Marcus", LastName: "Miller", Email: "manager@renthub.dev", Role: models.RoleManager},
		{FirstName: "Tina", LastName: "Tran", Email: "tenant@renthub.dev", Role: models.RoleTenant},
	}

	for _, user := range demoUsers {
		var count int64
		db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count)
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("renthub123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.Password = string(hash)
		user.IsActive = true

		if err := db.Create(&user).Error; err != nil {
			return err
		}
		logger.GetLogger().Infof("演示用户 %s (%s) 创建成功", user.Email, user.Role)
	}

	return nil
}

// createDemoProperties 挂在演示房东名下的示例房源
func createDemoProperties(db *gorm.DB) error {
	var owner models.User
	if err := db.Where("email = ?", "owner@renthub.dev").First(&owner).Error; err != nil {
		return err
	}

	var count int64
	db.Model(&models.Property{}).Where("owner_id = ?", owner.ID).Count(&count)
	if count > 0 {
		logger.GetLogger().Info("示例房源已存在，跳过创建")
		return nil
	}

	properties := []models.Property{
		{
			Title:       "Sunny 2BR Apartment Downtown",
			Description: "Bright two-bedroom apartment close to transit and shops.",
			Address: models.Address{
				Street: "120 Market St", City: "Springfield", State: "IL",
				ZipCode: "62701", Country: "USA",
			},
			PropertyType: models.PropertyTypeApartment,
			Bedrooms:     2,
			Bathrooms:    1,
			SquareFeet:   860,
			RentAmount:   1450,
			Deposit:      1450,
			AvailableAt:  time.Now().AddDate(0, 0, 14),
			IsAvailable:  true,
			OwnerID:      owner.ID,
		},
		{
			Title:       "Quiet Suburban House with Yard",
			Description: "Three-bedroom house with fenced yard and garage.",
			Address: models.Address{
				Street: "47 Maple Ave", City: "Springfield", State: "IL",
				ZipCode: "62704", Country: "USA",
			},
			PropertyType: models.PropertyTypeHouse,
			Bedrooms:     3,
			Bathrooms:    2,
			SquareFeet:   1620,
			RentAmount:   2100,
			Deposit:      2100,
			AvailableAt:  time.Now().AddDate(0, 1, 0),
			IsAvailable:  true,
			OwnerID:      owner.ID,
		},
	}

	for i := range properties {
		if err := db.Create(&properties[i]).Error; err != nil {
			return err
		}
	}

	logger.GetLogger().Infof("示例房源创建成功，共 %d 套", len(properties))
	return nil
}
