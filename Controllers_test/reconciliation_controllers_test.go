package Controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lengolf/venue-pos/controllers"
	"github.com/lengolf/venue-pos/models"
	"github.com/lengolf/venue-pos/utils"
)

func setupReconciliationRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	reconCtrl := controllers.NewReconciliationController(db)
	router.POST("/reconciliation/run", reconCtrl.Run)
	return router
}

func TestReconciliationRunEndpoint(t *testing.T) {
	utils.InitLogger()
	db, err := gorm.Open(sqlite.Open("file:ctrl_recon?mode=memory&cache=shared"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.CustomerPackage{}, &models.Booking{}, &models.PackageUsage{}))

	pkg := models.CustomerPackage{CustomerID: 1, Name: "Gold", TotalHours: 20}
	db.Create(&pkg)
	db.Create(&models.Booking{CustomerID: 1, PackageID: &pkg.ID, BookingDate: "2025-08-10", StartTime: "10:00", Status: models.BookingStatusConfirmed})
	db.Create(&models.PackageUsage{PackageID: pkg.ID, UsedDate: "2025-08-10", UsedHours: 2})

	router := setupReconciliationRouter(db)

	w := postJSON(t, router, "/reconciliation/run", map[string]interface{}{"dry_run": true})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	report := response["data"].(map[string]interface{})
	assert.Equal(t, true, report["dry_run"])
	assert.Equal(t, float64(1), report["matched"])

	// the dry run left the usage untouched, the live run links it
	w = postJSON(t, router, "/reconciliation/run", map[string]interface{}{"dry_run": false})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	report = response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), report["matched"])

	var usage models.PackageUsage
	assert.NoError(t, db.First(&usage).Error)
	assert.NotNil(t, usage.BookingID)
	assert.Equal(t, models.MatchConfidenceExact, usage.MatchConfidence)
}
