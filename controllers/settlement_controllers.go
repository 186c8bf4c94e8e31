package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lengolf/venue-pos/events"
	"github.com/lengolf/venue-pos/services"
	"github.com/lengolf/venue-pos/utils"
	"gorm.io/gorm"
)

type SettlementController struct {
	DB          *gorm.DB
	settlements *services.SettlementService
}

func NewSettlementController(db *gorm.DB) *SettlementController {
	return &SettlementController{DB: db, settlements: services.NewSettlementService(db)}
}

// Settle reconciles the payment split against the server-computed total and
// produces the transaction record.
func (sc *SettlementController) Settle(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Payments     []services.PaymentInstrument `json:"payments" binding:"required,min=1,dive"`
		StaffPIN     string                       `json:"staff_pin" binding:"required"`
		CloseSession bool                         `json:"close_session"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	transaction, err := sc.settlements.Settle(sessionID, req.Payments, req.StaffPIN, req.CloseSession)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	events.BroadcastSessionSettled(*transaction)
	utils.RespondJSON(c, http.StatusCreated, "Session settled", transaction)
}

// GetTransaction returns one transaction with its payment instruments.
func (sc *SettlementController) GetTransaction(c *gin.Context) {
	transactionID, err := paramUint(c, "transaction_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	transaction, err := sc.settlements.GetTransaction(transactionID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Transaction detail", transaction)
}

// Void marks a transaction as voided. The row stays for the audit trail.
func (sc *SettlementController) Void(c *gin.Context) {
	transactionID, err := paramUint(c, "transaction_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Reason      string `json:"reason" binding:"required"`
		TerminalPIN string `json:"terminal_pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	transaction, err := sc.settlements.Void(transactionID, req.Reason, req.TerminalPIN)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	events.BroadcastTransactionVoided(*transaction)
	utils.RespondJSON(c, http.StatusOK, "Transaction voided", transaction)
}
