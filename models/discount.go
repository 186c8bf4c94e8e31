package models

import "time"

// Discount types, scopes and availability modes
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed_amount"

	DiscountScopeItem    = "item"
	DiscountScopeReceipt = "receipt"

	DiscountAvailabilityAlways    = "always"
	DiscountAvailabilityDateRange = "date_range"
)

// Discount is a reusable pricing rule. Rules are managed elsewhere; this
// core only reads them.
type Discount struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Type         string     `gorm:"type:varchar(20);not null" json:"type"`
	Value        float64    `gorm:"type:decimal(12,2);not null" json:"value"`
	Scope        string     `gorm:"type:varchar(20);not null" json:"scope"`
	Availability string     `gorm:"type:varchar(20);not null;default:'always'" json:"availability"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}
