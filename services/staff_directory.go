package services

import (
	"errors"

	"github.com/lengolf/venue-pos/models"
	"github.com/lengolf/venue-pos/utils"
	"gorm.io/gorm"
)

// StaffDirectory is the single place settlement-critical PIN checks go
// through. The core never stores or compares credentials anywhere else.
type StaffDirectory struct {
	db *gorm.DB
}

func NewStaffDirectory(db *gorm.DB) *StaffDirectory {
	return &StaffDirectory{db: db}
}

// VerifyPIN resolves an active staff member by terminal PIN. Every
// settlement, cancel and void calls this; the result is never cached.
func (sd *StaffDirectory) VerifyPIN(pin string) (*models.Staff, error) {
	if pin == "" {
		return nil, utils.ErrInvalidStaffPIN()
	}

	var staff models.Staff
	err := sd.db.Where("pin = ? AND is_active = ?", pin, true).First(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrInvalidStaffPIN()
		}
		return nil, utils.ErrInternal(err)
	}

	return &staff, nil
}
