package database

import (
	"github.com/lengolf/venue-pos/models"
	"github.com/lengolf/venue-pos/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migrate creates or updates every table this core owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Staff{},
		&models.Zone{},
		&models.Table{},
		&models.Product{},
		&models.Discount{},
		&models.TableSession{},
		&models.Order{},
		&models.OrderItem{},
		&models.Transaction{},
		&models.TransactionPayment{},
		&models.ReceiptCounter{},
		&models.CustomerPackage{},
		&models.Booking{},
		&models.PackageUsage{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates a default admin account on a fresh database so the first
// terminal can log in. Credentials come from the environment; nothing is
// created when an admin already exists or the variables are unset.
func SeedAdmin(db *gorm.DB, email, password, pin string) error {
	if email == "" || password == "" || pin == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.Staff{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.Staff{
		Name:     "Administrator",
		Email:    email,
		Password: string(hashed),
		Pin:      pin,
		Role:     "admin",
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	utils.InfoLogger.Printf("Seeded admin account %s", email)
	return nil
}
