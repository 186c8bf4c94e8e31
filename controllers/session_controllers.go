package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lengolf/venue-pos/events"
	"github.com/lengolf/venue-pos/services"
	"github.com/lengolf/venue-pos/utils"
	"gorm.io/gorm"
)

type SessionController struct {
	DB       *gorm.DB
	sessions *services.SessionService
}

func NewSessionController(db *gorm.DB) *SessionController {
	return &SessionController{DB: db, sessions: services.NewSessionService(db)}
}

// OpenTable starts a new occupancy episode for a table.
func (sc *SessionController) OpenTable(c *gin.Context) {
	tableID, err := paramUint(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Pax       int    `json:"pax" binding:"required,min=1"`
		BookingID *uint  `json:"booking_id"`
		Notes     string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	staffID, _ := c.Get("staff_id")

	session, err := sc.sessions.OpenTable(tableID, req.Pax, staffID.(uint), req.BookingID, req.Notes)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	events.BroadcastSessionOpened(*session)
	utils.RespondJSON(c, http.StatusCreated, "Table opened", session)
}

// GetSession returns a session with its confirmed orders.
func (sc *SessionController) GetSession(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.sessions.GetSession(sessionID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

// AddItems appends items to the session's draft cart.
func (sc *SessionController) AddItems(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Items []services.AddItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	subtotal, err := sc.sessions.AddItems(sessionID, req.Items)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	events.BroadcastCartUpdated(sessionID, subtotal)
	utils.RespondJSON(c, http.StatusOK, "Items added", gin.H{
		"session_id": sessionID,
		"subtotal":   subtotal,
	})
}

// ApplyReceiptDiscount sets or clears the session-level discount.
func (sc *SessionController) ApplyReceiptDiscount(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		DiscountID *uint `json:"discount_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.sessions.ApplyReceiptDiscount(sessionID, req.DiscountID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	events.BroadcastCartUpdated(sessionID, session.SubtotalAmount)
	utils.RespondJSON(c, http.StatusOK, "Receipt discount applied", session)
}

// ConfirmOrder promotes the cart into an immutable order round.
func (sc *SessionController) ConfirmOrder(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := sc.sessions.ConfirmOrder(sessionID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	events.BroadcastOrderConfirmed(*order)
	utils.RespondJSON(c, http.StatusCreated, "Order confirmed", order)
}

// Cancel force-closes a session without settlement.
func (sc *SessionController) Cancel(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		StaffPIN string `json:"staff_pin" binding:"required"`
		Reason   string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.sessions.Cancel(sessionID, req.StaffPIN, req.Reason)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	events.BroadcastSessionCancelled(*session)
	utils.RespondJSON(c, http.StatusOK, "Session cancelled", session)
}

// Finalize releases the table. Safe to retry.
func (sc *SessionController) Finalize(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.sessions.Finalize(sessionID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	events.BroadcastSessionClosed(*session)
	utils.RespondJSON(c, http.StatusOK, "Session closed", session)
}

func paramUint(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
