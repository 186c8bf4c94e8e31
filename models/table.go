package models

import "time"

type Zone struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ZoneID    uint      `gorm:"not null;index" json:"zone_id"`
	Zone      Zone      `gorm:"foreignKey:ZoneID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"zone"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	MaxPax    int       `gorm:"not null;default:4" json:"max_pax"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
