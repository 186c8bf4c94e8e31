package models

import (
	"time"
)

// Audit reference types and actions
const (
	AuditRefSession     = "table_session"
	AuditRefTransaction = "transaction"

	AuditActionCancel = "cancel"
	AuditActionVoid   = "void"
)

// AuditLog records privileged transitions (session cancels, transaction
// voids) with the acting staff member and a free-text reason.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RefType   string    `gorm:"type:varchar(30);not null;index:idx_ref" json:"ref_type"`
	RefID     uint      `gorm:"not null;index:idx_ref" json:"ref_id"`
	Action    string    `gorm:"type:varchar(30);not null" json:"action"`
	Reason    string    `gorm:"type:text;not null" json:"reason"`
	StaffID   uint      `gorm:"not null" json:"staff_id"`
	Staff     Staff     `gorm:"foreignKey:StaffID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Reference string    `gorm:"type:varchar(36);not null" json:"reference"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
