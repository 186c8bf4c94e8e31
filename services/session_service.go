package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lengolf/venue-pos/models"
	"github.com/lengolf/venue-pos/utils"
	"gorm.io/gorm"
)

// cartRetries bounds the compare-and-swap loop on concurrent cart writes.
const cartRetries = 3

// SessionService owns the table-session lifecycle and the draft cart.
type SessionService struct {
	db    *gorm.DB
	staff *StaffDirectory
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db, staff: NewStaffDirectory(db)}
}

// AddItemRequest is one line a terminal wants to add to a session's cart.
type AddItemRequest struct {
	ProductID  uint                  `json:"product_id" binding:"required"`
	Quantity   int                   `json:"quantity" binding:"required,min=1"`
	Modifiers  []models.ItemModifier `json:"modifiers"`
	Notes      string                `json:"notes"`
	DiscountID *uint                 `json:"discount_id"`
}

// OpenTable starts a new occupancy episode. The check-then-create runs in
// one transaction so two terminals cannot both open the same table.
func (ss *SessionService) OpenTable(tableID uint, pax int, staffID uint, bookingID *uint, notes string) (*models.TableSession, error) {
	var session models.TableSession

	err := ss.db.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrTableNotFound(tableID)
			}
			return utils.ErrInternal(err)
		}
		if !table.IsActive {
			return utils.ErrValidation("table is not active")
		}
		if pax < 1 {
			return utils.ErrValidation("pax must be at least 1")
		}
		if table.MaxPax > 0 && pax > table.MaxPax {
			return utils.ErrValidation("pax exceeds table capacity")
		}

		var active int64
		if err := tx.Model(&models.TableSession{}).
			Where("table_id = ? AND status = ?", tableID, models.SessionStatusOccupied).
			Count(&active).Error; err != nil {
			return utils.ErrInternal(err)
		}
		if active > 0 {
			return utils.ErrTableOccupied(tableID)
		}

		session = models.TableSession{
			TableID:      tableID,
			Status:       models.SessionStatusOccupied,
			Pax:          pax,
			BookingID:    bookingID,
			StaffID:      staffID,
			SessionStart: time.Now(),
			Notes:        notes,
		}
		if err := tx.Create(&session).Error; err != nil {
			return utils.ErrInternal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Session %d opened on table %d (pax=%d)", session.ID, tableID, pax)
	return &session, nil
}

// GetSession loads a session with its confirmed orders.
func (ss *SessionService) GetSession(sessionID uint) (*models.TableSession, error) {
	var session models.TableSession
	err := ss.db.Preload("Orders.OrderItems").Preload("Table").First(&session, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrSessionNotFound(sessionID)
		}
		return nil, utils.ErrInternal(err)
	}
	for oi := range session.Orders {
		for ii := range session.Orders[oi].OrderItems {
			if err := session.Orders[oi].OrderItems[ii].DecodeModifiers(); err != nil {
				return nil, utils.ErrInternal(err)
			}
		}
	}
	return &session, nil
}

// AddItems appends items to the session's draft cart and reprices the
// session. Concurrent calls serialize through a compare-and-swap on the
// cart version; a writer that loses the race re-reads and retries.
func (ss *SessionService) AddItems(sessionID uint, reqs []AddItemRequest) (float64, error) {
	if len(reqs) == 0 {
		return 0, utils.ErrValidation("no items to add")
	}

	var subtotal float64
	for attempt := 0; attempt < cartRetries; attempt++ {
		swapped := false

		err := ss.db.Transaction(func(tx *gorm.DB) error {
			session, err := ss.fetchOpenSession(tx, sessionID)
			if err != nil {
				return err
			}

			items, err := session.CartItems()
			if err != nil {
				return utils.ErrInternal(err)
			}

			now := time.Now()
			for _, req := range reqs {
				var product models.Product
				if err := tx.First(&product, req.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrValidation("unknown product in cart")
					}
					return utils.ErrInternal(err)
				}
				if !product.IsActive {
					return utils.ErrValidation("product " + product.Name + " is not for sale")
				}
				items = append(items, models.CartItem{
					ProductID:   product.ID,
					ProductName: product.Name,
					Quantity:    req.Quantity,
					UnitPrice:   product.Price,
					Modifiers:   req.Modifiers,
					Notes:       req.Notes,
					DiscountID:  req.DiscountID,
					AddedAt:     now,
				})
			}

			totals, err := ss.priceSession(tx, session, items, now)
			if err != nil {
				return err
			}

			if err := session.SetCartItems(items); err != nil {
				return utils.ErrInternal(err)
			}

			res := tx.Model(&models.TableSession{}).
				Where("id = ? AND status = ? AND cart_version = ?",
					session.ID, models.SessionStatusOccupied, session.CartVersion).
				Updates(map[string]interface{}{
					"cart":                    session.Cart,
					"cart_version":            session.CartVersion + 1,
					"subtotal_amount":         totals.Subtotal,
					"receipt_discount_amount": totals.ReceiptDiscountAmount,
					"vat_amount":              totals.VatAmount,
					"total_amount":            totals.TotalAmount,
				})
			if res.Error != nil {
				return utils.ErrInternal(res.Error)
			}
			if res.RowsAffected == 0 {
				// lost the race, retry with fresh state
				return nil
			}

			swapped = true
			subtotal = totals.Subtotal
			return nil
		})
		if err != nil {
			return 0, err
		}
		if swapped {
			utils.InfoLogger.Printf("Session %d cart grew by %d item(s), subtotal %s",
				sessionID, len(reqs), utils.FormatAmount(subtotal))
			return subtotal, nil
		}
	}

	return 0, &utils.AppError{Kind: utils.KindConflict, Message: "cart is being modified concurrently, please retry"}
}

// ApplyReceiptDiscount attaches (or clears, when discountID is nil) the
// session-level discount and reprices.
func (ss *SessionService) ApplyReceiptDiscount(sessionID uint, discountID *uint) (*models.TableSession, error) {
	var session *models.TableSession

	err := ss.db.Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = ss.fetchOpenSession(tx, sessionID)
		if err != nil {
			return err
		}

		now := time.Now()
		if discountID != nil {
			discount, err := ss.lookupDiscount(tx, *discountID)
			if err != nil {
				return err
			}
			if discount.Scope != models.DiscountScopeReceipt {
				return utils.ErrValidation("discount is not receipt-scoped")
			}
			if !DiscountAvailable(discount, now) {
				return utils.ErrDiscountUnavailable(discount.ID)
			}
		}
		session.ReceiptDiscountID = discountID

		items, err := session.CartItems()
		if err != nil {
			return utils.ErrInternal(err)
		}
		totals, err := ss.priceSession(tx, session, items, now)
		if err != nil {
			return err
		}

		res := tx.Model(&models.TableSession{}).
			Where("id = ? AND status = ?", session.ID, models.SessionStatusOccupied).
			Updates(map[string]interface{}{
				"receipt_discount_id":     discountID,
				"subtotal_amount":         totals.Subtotal,
				"receipt_discount_amount": totals.ReceiptDiscountAmount,
				"vat_amount":              totals.VatAmount,
				"total_amount":            totals.TotalAmount,
			})
		if res.Error != nil {
			return utils.ErrInternal(res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.ErrSessionAlreadyClosed(session.ID)
		}

		session.ReceiptDiscountAmount = totals.ReceiptDiscountAmount
		session.SubtotalAmount = totals.Subtotal
		session.VatAmount = totals.VatAmount
		session.TotalAmount = totals.TotalAmount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ConfirmOrder promotes the current cart into an immutable Order with its
// items, clears the cart, and keeps every previously confirmed order.
func (ss *SessionService) ConfirmOrder(sessionID uint) (*models.Order, error) {
	var order models.Order

	err := ss.db.Transaction(func(tx *gorm.DB) error {
		session, err := ss.fetchOpenSession(tx, sessionID)
		if err != nil {
			return err
		}

		items, err := session.CartItems()
		if err != nil {
			return utils.ErrInternal(err)
		}
		if len(items) == 0 {
			return utils.ErrValidation("cart is empty, nothing to confirm")
		}

		now := time.Now()
		lines, err := LinesFromCart(items, func(id uint) (*models.Discount, error) {
			return ss.lookupDiscount(tx, id)
		})
		if err != nil {
			return err
		}
		totals, err := PriceLines(lines, nil, now)
		if err != nil {
			return err
		}

		var lastNumber int
		row := tx.Model(&models.Order{}).
			Where("table_session_id = ?", session.ID).
			Select("COALESCE(MAX(order_number), 0)").Row()
		if err := row.Scan(&lastNumber); err != nil {
			return utils.ErrInternal(err)
		}

		order = models.Order{
			TableSessionID: session.ID,
			OrderNumber:    lastNumber + 1,
			CreatedAt:      now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return utils.ErrInternal(err)
		}

		for i, item := range items {
			orderItem := models.OrderItem{
				OrderID:        order.ID,
				ProductID:      item.ProductID,
				ProductName:    item.ProductName,
				Quantity:       item.Quantity,
				UnitPrice:      item.UnitPrice,
				Notes:          item.Notes,
				DiscountID:     item.DiscountID,
				DiscountAmount: totals.Lines[i].DiscountAmount,
				TotalPrice:     totals.Lines[i].TotalPrice,
				CreatedAt:      now,
			}
			if err := orderItem.SetModifierList(item.Modifiers); err != nil {
				return utils.ErrInternal(err)
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return utils.ErrInternal(err)
			}
			order.OrderItems = append(order.OrderItems, orderItem)
		}

		res := tx.Model(&models.TableSession{}).
			Where("id = ? AND status = ? AND cart_version = ?",
				session.ID, models.SessionStatusOccupied, session.CartVersion).
			Updates(map[string]interface{}{
				"cart":         "",
				"cart_version": session.CartVersion + 1,
			})
		if res.Error != nil {
			return utils.ErrInternal(res.Error)
		}
		if res.RowsAffected == 0 {
			// another writer touched the cart mid-confirm; abort so no item
			// is confirmed twice or dropped
			return &utils.AppError{Kind: utils.KindConflict, Message: "cart changed while confirming, please retry"}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Session %d confirmed order #%d with %d item(s)",
		sessionID, order.OrderNumber, len(order.OrderItems))
	return &order, nil
}

// Cancel force-closes an occupied session (walked-out guest). It requires a
// staff PIN, bypasses settlement, writes an audit entry, and voids any
// completed transaction left on the session instead of discarding it.
func (ss *SessionService) Cancel(sessionID uint, staffPIN, reason string) (*models.TableSession, error) {
	if reason == "" {
		return nil, utils.ErrValidation("a cancel reason is required")
	}

	staff, err := ss.staff.VerifyPIN(staffPIN)
	if err != nil {
		return nil, err
	}

	var session models.TableSession
	err = ss.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrSessionNotFound(sessionID)
			}
			return utils.ErrInternal(err)
		}

		now := time.Now()
		res := tx.Model(&models.TableSession{}).
			Where("id = ? AND status = ?", sessionID, models.SessionStatusOccupied).
			Updates(map[string]interface{}{
				"status":      models.SessionStatusCancelled,
				"session_end": now,
			})
		if res.Error != nil {
			return utils.ErrInternal(res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.ErrSessionAlreadyClosed(sessionID)
		}

		// a completed transaction on a cancelled session is a leftover from
		// a settlement the guest walked away from; void it, don't drop it
		var stale []models.Transaction
		if err := tx.Where("table_session_id = ? AND status = ?", sessionID, models.TransactionStatusCompleted).
			Find(&stale).Error; err != nil {
			return utils.ErrInternal(err)
		}
		for _, trx := range stale {
			if err := tx.Model(&models.Transaction{}).Where("id = ?", trx.ID).
				Updates(map[string]interface{}{
					"status":      models.TransactionStatusVoided,
					"void_reason": "session cancelled: " + reason,
					"voided_by":   staff.ID,
					"voided_at":   now,
				}).Error; err != nil {
				return utils.ErrInternal(err)
			}
		}

		audit := models.AuditLog{
			RefType:   models.AuditRefSession,
			RefID:     sessionID,
			Action:    models.AuditActionCancel,
			Reason:    reason,
			StaffID:   staff.ID,
			Reference: uuid.New().String(),
			CreatedAt: now,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return utils.ErrInternal(err)
		}

		session.Status = models.SessionStatusCancelled
		session.SessionEnd = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Session %d cancelled by staff %d: %s", sessionID, staff.ID, reason)
	return &session, nil
}

// Finalize moves a paid or cancelled session to closed, releasing the table.
// Re-finalizing an already-closed session is a no-op so the close can be
// retried safely.
func (ss *SessionService) Finalize(sessionID uint) (*models.TableSession, error) {
	var session models.TableSession

	err := ss.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrSessionNotFound(sessionID)
			}
			return utils.ErrInternal(err)
		}

		switch session.Status {
		case models.SessionStatusClosed:
			return nil
		case models.SessionStatusPaid, models.SessionStatusCancelled:
		default:
			return utils.ErrSessionNotOpen(sessionID, session.Status)
		}

		res := tx.Model(&models.TableSession{}).
			Where("id = ? AND status IN ?", sessionID,
				[]string{models.SessionStatusPaid, models.SessionStatusCancelled}).
			Update("status", models.SessionStatusClosed)
		if res.Error != nil {
			return utils.ErrInternal(res.Error)
		}
		if res.RowsAffected == 0 {
			// concurrent finalize got there first; same terminal state
			return nil
		}

		session.Status = models.SessionStatusClosed
		return nil
	})
	if err != nil {
		return nil, err
	}

	session.Status = models.SessionStatusClosed
	return &session, nil
}

// fetchOpenSession loads a session and rejects anything not occupied.
func (ss *SessionService) fetchOpenSession(tx *gorm.DB, sessionID uint) (*models.TableSession, error) {
	var session models.TableSession
	if err := tx.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrSessionNotFound(sessionID)
		}
		return nil, utils.ErrInternal(err)
	}
	if !session.IsOpen() {
		return nil, utils.ErrSessionNotOpen(sessionID, session.Status)
	}
	return &session, nil
}

func (ss *SessionService) lookupDiscount(tx *gorm.DB, discountID uint) (*models.Discount, error) {
	var discount models.Discount
	if err := tx.First(&discount, discountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrDiscountNotFound(discountID)
		}
		return nil, utils.ErrInternal(err)
	}
	return &discount, nil
}

// priceSession reprices the whole session: stored totals of confirmed order
// items (immutable once confirmed) plus the freshly priced draft cart, then
// the receipt discount on top.
func (ss *SessionService) priceSession(tx *gorm.DB, session *models.TableSession, cart []models.CartItem, now time.Time) (CartTotals, error) {
	confirmed, err := ConfirmedSubtotal(tx, session.ID)
	if err != nil {
		return CartTotals{}, err
	}

	cartLines, err := LinesFromCart(cart, func(id uint) (*models.Discount, error) {
		return ss.lookupDiscount(tx, id)
	})
	if err != nil {
		return CartTotals{}, err
	}
	cartTotals, err := PriceLines(cartLines, nil, now)
	if err != nil {
		return CartTotals{}, err
	}

	var receiptDiscount *models.Discount
	if session.ReceiptDiscountID != nil {
		receiptDiscount, err = ss.lookupDiscount(tx, *session.ReceiptDiscountID)
		if err != nil {
			return CartTotals{}, err
		}
	}

	return ReceiptTotals(confirmed+cartTotals.Subtotal, receiptDiscount, now)
}

// ConfirmedSubtotal sums the stored line totals of a session's confirmed
// orders. Confirmed prices never shift, even if a discount rule's window
// has since closed.
func ConfirmedSubtotal(tx *gorm.DB, sessionID uint) (float64, error) {
	var subtotal float64
	row := tx.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.table_session_id = ?", sessionID).
		Select("COALESCE(SUM(order_items.total_price), 0)").Row()
	if err := row.Scan(&subtotal); err != nil {
		return 0, utils.ErrInternal(err)
	}
	return utils.Round2(subtotal), nil
}
