package models

import (
	"encoding/json"
	"time"
)

// Session statuses
const (
	SessionStatusOccupied  = "occupied"
	SessionStatusPaid      = "paid"
	SessionStatusCancelled = "cancelled"
	SessionStatusClosed    = "closed"
)

// TableSession is one occupancy episode of a Table, from open to close.
// At most one session per table may be in status 'occupied' at any time.
type TableSession struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	TableID               uint       `gorm:"not null;index" json:"table_id"`
	Table                 Table      `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	Status                string     `gorm:"type:varchar(20);not null;default:'occupied'" json:"status"`
	Pax                   int        `gorm:"not null;default:1" json:"pax"`
	BookingID             *uint      `gorm:"index" json:"booking_id,omitempty"`
	StaffID               uint       `gorm:"not null" json:"staff_id"`
	SessionStart          time.Time  `gorm:"not null" json:"session_start"`
	SessionEnd            *time.Time `json:"session_end,omitempty"`
	SubtotalAmount        float64    `gorm:"type:decimal(12,2);not null;default:0.00" json:"subtotal_amount"`
	ReceiptDiscountID     *uint      `json:"receipt_discount_id,omitempty"`
	ReceiptDiscountAmount float64    `gorm:"type:decimal(12,2);not null;default:0.00" json:"receipt_discount_amount"`
	VatAmount             float64    `gorm:"type:decimal(12,2);not null;default:0.00" json:"vat_amount"`
	TotalAmount           float64    `gorm:"type:decimal(12,2);not null;default:0.00" json:"total_amount"`
	Notes                 string     `gorm:"type:text" json:"notes"`
	Cart                  string     `gorm:"type:text" json:"-"`
	CartVersion           int        `gorm:"not null;default:0" json:"-"`
	Orders                []Order    `gorm:"foreignKey:TableSessionID" json:"orders,omitempty"`
	CreatedAt             time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"not null" json:"updated_at"`
}

// CartItem is one provisional line in a session's draft cart. Cart items live
// in the session's JSON cart column until ConfirmOrder promotes them into an
// immutable Order.
type CartItem struct {
	ProductID   uint           `json:"product_id"`
	ProductName string         `json:"product_name"`
	Quantity    int            `json:"quantity"`
	UnitPrice   float64        `json:"unit_price"`
	Modifiers   []ItemModifier `json:"modifiers,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	DiscountID  *uint          `json:"discount_id,omitempty"`
	AddedAt     time.Time      `json:"added_at"`
}

type ItemModifier struct {
	Name       string  `json:"name"`
	PriceDelta float64 `json:"price_delta"`
}

// CartItems decodes the JSON cart column. An empty column is an empty cart.
func (s *TableSession) CartItems() ([]CartItem, error) {
	if s.Cart == "" {
		return nil, nil
	}
	var items []CartItem
	if err := json.Unmarshal([]byte(s.Cart), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetCartItems encodes items back into the JSON cart column.
func (s *TableSession) SetCartItems(items []CartItem) error {
	if len(items) == 0 {
		s.Cart = ""
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	s.Cart = string(data)
	return nil
}

// IsOpen reports whether cart mutations are still legal.
func (s *TableSession) IsOpen() bool {
	return s.Status == SessionStatusOccupied
}
