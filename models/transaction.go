package models

import "time"

// Transaction statuses and payment methods
const (
	TransactionStatusCompleted = "completed"
	TransactionStatusVoided    = "voided"

	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodPackage  = "package"
)

// Transaction is the settlement artifact for a table session. Exactly one
// completed transaction exists per settled session; voiding flips the status
// and stamps the actor, it never deletes the row.
type Transaction struct {
	ID             uint                 `gorm:"primaryKey" json:"id"`
	TableSessionID uint                 `gorm:"not null;index" json:"table_session_id"`
	TableSession   TableSession         `gorm:"foreignKey:TableSessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ReceiptNumber  string               `gorm:"type:varchar(50);uniqueIndex;not null" json:"receipt_number"`
	Subtotal       float64              `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	VatAmount      float64              `gorm:"type:decimal(12,2);not null" json:"vat_amount"`
	TotalAmount    float64              `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	StaffID        uint                 `gorm:"not null" json:"staff_id"`
	Status         string               `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	VoidReason     string               `gorm:"type:text" json:"void_reason,omitempty"`
	VoidedBy       *uint                `json:"voided_by,omitempty"`
	VoidedAt       *time.Time           `json:"voided_at,omitempty"`
	Payments       []TransactionPayment `gorm:"foreignKey:TransactionID" json:"payments"`
	CreatedAt      time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time            `gorm:"not null" json:"updated_at"`
}

// TransactionPayment is one payment instrument within a settlement. A split
// settlement carries several rows whose amounts sum to the transaction total.
type TransactionPayment struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	TransactionID uint        `gorm:"not null;index" json:"transaction_id"`
	Transaction   Transaction `gorm:"-" json:"-"`
	Method        string      `gorm:"type:varchar(20);not null" json:"method"`
	Amount        float64     `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
}
