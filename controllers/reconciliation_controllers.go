package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lengolf/venue-pos/services"
	"github.com/lengolf/venue-pos/utils"
	"gorm.io/gorm"
)

type ReconciliationController struct {
	DB      *gorm.DB
	matcher *services.ReconciliationService
}

func NewReconciliationController(db *gorm.DB) *ReconciliationController {
	return &ReconciliationController{DB: db, matcher: services.NewReconciliationService(db)}
}

// Run triggers a reconciliation pass over unlinked package usages.
func (rc *ReconciliationController) Run(c *gin.Context) {
	var req struct {
		DryRun bool `json:"dry_run"`
		Limit  int  `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	report, err := rc.matcher.Run(req.DryRun, req.Limit)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reconciliation complete", report)
}
