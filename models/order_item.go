package models

import (
	"encoding/json"
	"time"
)

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order          Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductID      uint      `gorm:"not null" json:"product_id"`
	ProductName    string    `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	UnitPrice      float64   `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Modifiers      string    `gorm:"type:text" json:"-"`
	// decoded view of the Modifiers column, filled when rendering detail
	ModifierList   []ItemModifier `gorm:"-" json:"modifiers,omitempty"`
	Notes          string    `gorm:"type:text" json:"notes"`
	DiscountID     *uint     `json:"discount_id,omitempty"`
	DiscountAmount float64   `gorm:"type:decimal(12,2);not null;default:0.00" json:"discount_amount"`
	TotalPrice     float64   `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

// DecodeModifiers fills ModifierList from the JSON modifiers column.
func (oi *OrderItem) DecodeModifiers() error {
	if oi.Modifiers == "" {
		oi.ModifierList = nil
		return nil
	}
	return json.Unmarshal([]byte(oi.Modifiers), &oi.ModifierList)
}

// SetModifierList encodes mods into the JSON modifiers column.
func (oi *OrderItem) SetModifierList(mods []ItemModifier) error {
	if len(mods) == 0 {
		oi.Modifiers = ""
		return nil
	}
	data, err := json.Marshal(mods)
	if err != nil {
		return err
	}
	oi.Modifiers = string(data)
	oi.ModifierList = mods
	return nil
}
