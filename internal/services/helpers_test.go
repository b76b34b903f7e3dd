package services

import (
	"testing"
	"time"

	"renthub/internal/models"
	"renthub/internal/saga"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.RentalApplication{},
		&models.Lease{},
		&models.Payment{},
		&models.MaintenanceRequest{},
	))
	return db
}

func newTestRunner() *saga.Runner {
	return saga.NewRunner(saga.NewMemoryStepLog())
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "not-a-real-hash",
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProperty(t *testing.T, db *gorm.DB, ownerID uint) *models.Property {
	t.Helper()
	property := &models.Property{
		Title:       "Test Property",
		Description: "A property for testing",
		Address: models.Address{
			Street: "1 Test St", City: "Testville", State: "TS",
			ZipCode: "00001", Country: "USA",
		},
		PropertyType: models.PropertyTypeApartment,
		Bedrooms:     2,
		Bathrooms:    1,
		SquareFeet:   800,
		RentAmount:   1200,
		Deposit:      1200,
		AvailableAt:  time.Now(),
		IsAvailable:  true,
		OwnerID:      ownerID,
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func createTestApplication(t *testing.T, db *gorm.DB, propertyID, tenantID uint) *models.RentalApplication {
	t.Helper()
	application := &models.RentalApplication{
		PropertyID: propertyID,
		TenantID:   tenantID,
		MoveInDate: time.Now().AddDate(0, 1, 0),
		LeaseTerm:  12,
		Status:     models.ApplicationStatusPending,
	}
	require.NoError(t, db.Create(application).Error)
	return application
}

func createTestLease(t *testing.T, db *gorm.DB, property *models.Property, tenantID uint) *models.Lease {
	t.Helper()
	lease := &models.Lease{
		PropertyID:    property.ID,
		TenantID:      tenantID,
		OwnerID:       property.OwnerID,
		ManagerID:     property.ManagerID,
		StartDate:     time.Now(),
		EndDate:       time.Now().AddDate(1, 0, 0),
		RentAmount:    1200,
		Deposit:       1200,
		IsActive:      true,
		PaymentDueDay: 1,
	}
	require.NoError(t, db.Create(lease).Error)
	return lease
}
