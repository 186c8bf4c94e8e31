package models

import "time"

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking is a reservation record. The reconciliation matcher links package
// usages back to bookings; the live settlement flow only carries the id.
type Booking struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CustomerID  uint      `gorm:"not null;index" json:"customer_id"`
	PackageID   *uint     `gorm:"index" json:"package_id,omitempty"`
	BookingDate string    `gorm:"type:varchar(10);not null;index" json:"booking_date"`
	StartTime   string    `gorm:"type:varchar(5);not null" json:"start_time"`
	Status      string    `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
