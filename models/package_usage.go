package models

import "time"

// Match confidence tiers, strongest first.
const (
	MatchConfidenceExact    = "exact"
	MatchConfidenceCustomer = "customer"
)

// CustomerPackage is a prepaid block of hours owned by a customer.
type CustomerPackage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	TotalHours float64   `gorm:"type:decimal(6,2);not null" json:"total_hours"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// PackageUsage is one recorded consumption of a prepaid package. BookingID
// is set at most once: either at creation or later by the reconciliation
// matcher.
type PackageUsage struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PackageID       uint            `gorm:"not null;index" json:"package_id"`
	Package         CustomerPackage `gorm:"foreignKey:PackageID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	UsedDate        string          `gorm:"type:varchar(10);not null;index" json:"used_date"`
	UsedHours       float64         `gorm:"type:decimal(6,2);not null" json:"used_hours"`
	EmployeeName    string          `gorm:"type:varchar(255)" json:"employee_name"`
	BookingID       *uint           `gorm:"index" json:"booking_id,omitempty"`
	MatchConfidence string          `gorm:"type:varchar(20)" json:"match_confidence,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}
