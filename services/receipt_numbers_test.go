package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lengolf/venue-pos/models"
)

func TestNextReceiptNumberSequence(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:receipt_seq?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.ReceiptCounter{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	now := time.Date(2025, 9, 1, 19, 30, 0, 0, time.Local)

	first, err := NextReceiptNumber(db, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != "RCP/20250901/0001" {
		t.Errorf("first = %q, want RCP/20250901/0001", first)
	}

	second, err := NextReceiptNumber(db, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != "RCP/20250901/0002" {
		t.Errorf("second = %q, want RCP/20250901/0002", second)
	}

	// a new business day restarts the sequence
	nextDay, err := NextReceiptNumber(db, now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nextDay != "RCP/20250902/0001" {
		t.Errorf("nextDay = %q, want RCP/20250902/0001", nextDay)
	}
}

func TestNextReceiptNumberResumesFromStoredValue(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:receipt_resume?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.ReceiptCounter{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	// the stored row, not any in-memory copy, is the source of truth
	db.Create(&models.ReceiptCounter{BusinessDate: "20250901", LastSeq: 41})

	now := time.Date(2025, 9, 1, 9, 0, 0, 0, time.Local)
	got, err := NextReceiptNumber(db, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "RCP/20250901/0042" {
		t.Errorf("got %q, want RCP/20250901/0042", got)
	}
}

func TestNextReceiptNumberRollbackReleasesNothing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:receipt_rollback?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.ReceiptCounter{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	now := time.Date(2025, 9, 1, 9, 0, 0, 0, time.Local)

	// an aborted settlement takes no number with it
	rollbackErr := errors.New("settlement aborted")
	err = db.Transaction(func(tx *gorm.DB) error {
		number, err := NextReceiptNumber(tx, now)
		if err != nil {
			t.Fatalf("allocation inside transaction failed: %v", err)
		}
		if number != "RCP/20250901/0001" {
			t.Errorf("number = %q, want RCP/20250901/0001", number)
		}
		return rollbackErr
	})
	if err != rollbackErr {
		t.Fatalf("transaction returned %v, want the rollback error", err)
	}

	// the next committed settlement gets the same number back
	err = db.Transaction(func(tx *gorm.DB) error {
		number, err := NextReceiptNumber(tx, now)
		if err != nil {
			return err
		}
		if number != "RCP/20250901/0001" {
			t.Errorf("number after rollback = %q, want RCP/20250901/0001", number)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("second allocation failed: %v", err)
	}
}
