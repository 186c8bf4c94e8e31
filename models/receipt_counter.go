package models

import "time"

// ReceiptCounter backs the day-scoped receipt number sequence. One row per
// business day, bumped under a row lock so two settlements can never share a
// receipt number.
type ReceiptCounter struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BusinessDate string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"business_date"`
	LastSeq      int       `gorm:"not null;default:0" json:"last_seq"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
