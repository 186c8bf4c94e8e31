package models

import "time"

// Product is the catalog entry the cart resolves prices from. Catalog
// management lives outside this core.
type Product struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(255); not null"`
	Price       float64   `gorm:"type:decimal(12,2); not null"`
	Description string    `gorm:"type:text"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
