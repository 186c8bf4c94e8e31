package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lengolf/venue-pos/models"
	"github.com/lengolf/venue-pos/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// tableView decorates a table with its active session, when one exists.
type tableView struct {
	models.Table
	ActiveSession *models.TableSession `json:"active_session,omitempty"`
}

// GetAllTables lists active tables with their current occupancy.
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Preload("Zone").Where("is_active = ?", true).Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	views := make([]tableView, 0, len(tables))
	for _, table := range tables {
		view := tableView{Table: table}
		var session models.TableSession
		err := tc.DB.Where("table_id = ? AND status = ?", table.ID, models.SessionStatusOccupied).
			First(&session).Error
		if err == nil {
			view.ActiveSession = &session
		}
		views = append(views, view)
	}

	utils.RespondJSON(c, http.StatusOK, "List of tables", views)
}

// GetTableByID returns one table.
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table
	if err := tc.DB.Preload("Zone").First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}
