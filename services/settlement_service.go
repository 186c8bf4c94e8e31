package services

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lengolf/venue-pos/models"
	"github.com/lengolf/venue-pos/utils"
	"gorm.io/gorm"
)

// amountTolerance is one minor currency unit: the payment split must match
// the computed total to the satang.
const amountTolerance = 0.01

// SettlementService reconciles payment instruments against a session's
// server-computed total and produces the Transaction artifact.
type SettlementService struct {
	db    *gorm.DB
	staff *StaffDirectory
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{db: db, staff: NewStaffDirectory(db)}
}

// PaymentInstrument is one method/amount pair in a (possibly split) payment.
type PaymentInstrument struct {
	Method string  `json:"method" binding:"required,oneof=cash card transfer package"`
	Amount float64 `json:"amount" binding:"required"`
}

// Settle finalizes payment for a session. The caller never supplies the
// total; it is recomputed here from the session's confirmed orders. The
// transaction insert and the occupied->paid transition commit or roll back
// together, so a Transaction can never exist for a still-occupied session.
func (s *SettlementService) Settle(sessionID uint, payments []PaymentInstrument, staffPIN string, closeSession bool) (*models.Transaction, error) {
	if len(payments) == 0 {
		return nil, utils.ErrValidation("at least one payment method is required")
	}
	var received float64
	for _, p := range payments {
		if p.Amount <= 0 {
			return nil, utils.ErrValidation("payment amounts must be positive")
		}
		received += p.Amount
	}
	received = utils.Round2(received)

	// mandatory on every settlement, never cached
	staff, err := s.staff.VerifyPIN(staffPIN)
	if err != nil {
		return nil, err
	}

	var transaction models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var session models.TableSession
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrSessionNotFound(sessionID)
			}
			return utils.ErrInternal(err)
		}
		if !session.IsOpen() {
			return utils.ErrSessionNotOpen(sessionID, session.Status)
		}

		cart, err := session.CartItems()
		if err != nil {
			return utils.ErrInternal(err)
		}
		if len(cart) > 0 {
			return utils.ErrValidation("cart has unconfirmed items, confirm or clear them before settling")
		}

		now := time.Now()
		subtotal, err := ConfirmedSubtotal(tx, sessionID)
		if err != nil {
			return err
		}

		var receiptDiscount *models.Discount
		if session.ReceiptDiscountID != nil {
			var d models.Discount
			if err := tx.First(&d, *session.ReceiptDiscountID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.ErrDiscountNotFound(*session.ReceiptDiscountID)
				}
				return utils.ErrInternal(err)
			}
			receiptDiscount = &d
		}
		totals, err := ReceiptTotals(subtotal, receiptDiscount, now)
		if err != nil {
			return err
		}

		if math.Abs(received-totals.TotalAmount) > amountTolerance {
			return utils.ErrPaymentAmountMismatch(totals.TotalAmount, received)
		}

		receiptNumber, err := NextReceiptNumber(tx, now)
		if err != nil {
			return err
		}

		transaction = models.Transaction{
			TableSessionID: sessionID,
			ReceiptNumber:  receiptNumber,
			Subtotal:       totals.Subtotal,
			VatAmount:      totals.VatAmount,
			TotalAmount:    totals.TotalAmount,
			StaffID:        staff.ID,
			Status:         models.TransactionStatusCompleted,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return utils.ErrInternal(err)
		}
		for _, p := range payments {
			row := models.TransactionPayment{
				TransactionID: transaction.ID,
				Method:        p.Method,
				Amount:        utils.Round2(p.Amount),
				CreatedAt:     now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return utils.ErrInternal(err)
			}
			transaction.Payments = append(transaction.Payments, row)
		}

		res := tx.Model(&models.TableSession{}).
			Where("id = ? AND status = ?", sessionID, models.SessionStatusOccupied).
			Updates(map[string]interface{}{
				"status":                  models.SessionStatusPaid,
				"session_end":             now,
				"subtotal_amount":         totals.Subtotal,
				"receipt_discount_amount": totals.ReceiptDiscountAmount,
				"vat_amount":              totals.VatAmount,
				"total_amount":            totals.TotalAmount,
			})
		if res.Error != nil {
			return utils.ErrInternal(res.Error)
		}
		if res.RowsAffected == 0 {
			// a concurrent settle or cancel won; rolling back removes the
			// transaction we just inserted
			return utils.ErrSessionAlreadyClosed(sessionID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Session %d settled: receipt %s, total %s, %d instrument(s)",
		sessionID, transaction.ReceiptNumber, utils.FormatAmount(transaction.TotalAmount), len(payments))

	if closeSession {
		// the settlement is committed at this point; a failed close must not
		// swallow the transaction, the table is released by retrying Finalize
		sessions := NewSessionService(s.db)
		if _, err := sessions.Finalize(sessionID); err != nil {
			utils.ErrorLogger.Printf("Session %d settled (receipt %s) but close failed: %v",
				sessionID, transaction.ReceiptNumber, err)
		}
	}

	return &transaction, nil
}

// Void marks a completed transaction as voided, stamping reason and actor.
// Rows are never deleted and the session is never reopened; a wrongly
// settled table goes through Open again.
func (s *SettlementService) Void(transactionID uint, reason, terminalPIN string) (*models.Transaction, error) {
	if reason == "" {
		return nil, utils.ErrValidation("a void reason is required")
	}

	staff, err := s.staff.VerifyPIN(terminalPIN)
	if err != nil {
		return nil, err
	}

	var transaction models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Payments").First(&transaction, transactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrTransactionNotFound(transactionID)
			}
			return utils.ErrInternal(err)
		}

		now := time.Now()
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", transactionID, models.TransactionStatusCompleted).
			Updates(map[string]interface{}{
				"status":      models.TransactionStatusVoided,
				"void_reason": reason,
				"voided_by":   staff.ID,
				"voided_at":   now,
			})
		if res.Error != nil {
			return utils.ErrInternal(res.Error)
		}
		if res.RowsAffected == 0 {
			return &utils.AppError{Kind: utils.KindInvalidState, Message: "transaction is already voided"}
		}

		audit := models.AuditLog{
			RefType:   models.AuditRefTransaction,
			RefID:     transactionID,
			Action:    models.AuditActionVoid,
			Reason:    reason,
			StaffID:   staff.ID,
			Reference: uuid.New().String(),
			CreatedAt: now,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return utils.ErrInternal(err)
		}

		transaction.Status = models.TransactionStatusVoided
		transaction.VoidReason = reason
		transaction.VoidedBy = &staff.ID
		transaction.VoidedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Transaction %d (%s) voided by staff %d: %s",
		transaction.ID, transaction.ReceiptNumber, staff.ID, reason)
	return &transaction, nil
}

// GetTransaction loads a transaction with its payment instruments.
func (s *SettlementService) GetTransaction(transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.Preload("Payments").First(&transaction, transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrTransactionNotFound(transactionID)
		}
		return nil, utils.ErrInternal(err)
	}
	return &transaction, nil
}
