package models

import "time"

// Order is a confirmation point within a session: one "round" sent to
// preparation. Orders are never mutated after creation; corrections happen
// on the live cart before the next confirm.
type Order struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	TableSessionID uint         `gorm:"not null;index" json:"table_session_id"`
	TableSession   TableSession `gorm:"foreignKey:TableSessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	OrderNumber    int          `gorm:"not null" json:"order_number"`
	OrderItems     []OrderItem  `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
}
