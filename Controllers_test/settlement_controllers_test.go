package Controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/lengolf/venue-pos/controllers"
	"github.com/lengolf/venue-pos/utils"
)

// setupSettlementRouter adds the settlement routes on top of the session
// routes so a full flow can run over HTTP.
func setupSettlementRouter(db *gorm.DB) *gin.Engine {
	router := setupSessionRouter(db)
	settlementCtrl := controllers.NewSettlementController(db)
	router.POST("/sessions/:session_id/settle", settlementCtrl.Settle)
	router.GET("/transactions/:transaction_id", settlementCtrl.GetTransaction)
	router.POST("/transactions/:transaction_id/void", settlementCtrl.Void)
	return router
}

func TestSettleEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions("ctrl_settle")
	router := setupSettlementRouter(db)

	postJSON(t, router, "/tables/1/open", map[string]interface{}{"pax": 2})
	postJSON(t, router, "/sessions/1/items", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": 1, "quantity": 2}},
	})
	postJSON(t, router, "/sessions/1/confirm", nil)

	// short payment reports the amount owed
	w := postJSON(t, router, "/sessions/1/settle", map[string]interface{}{
		"payments":  []map[string]interface{}{{"method": "cash", "amount": 100.00}},
		"staff_pin": "1234",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	detail := response["data"].(map[string]interface{})
	assert.Equal(t, 240.00, detail["owed"])
	assert.Equal(t, 100.00, detail["received"])

	// exact split settles
	w = postJSON(t, router, "/sessions/1/settle", map[string]interface{}{
		"payments": []map[string]interface{}{
			{"method": "cash", "amount": 140.00},
			{"method": "card", "amount": 100.00},
		},
		"staff_pin": "1234",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	transaction := response["data"].(map[string]interface{})
	assert.Equal(t, 240.00, transaction["total_amount"])
	assert.Equal(t, "completed", transaction["status"])
	assert.Len(t, transaction["payments"].([]interface{}), 2)

	// a settled session cannot be settled again
	w = postJSON(t, router, "/sessions/1/settle", map[string]interface{}{
		"payments":  []map[string]interface{}{{"method": "cash", "amount": 240.00}},
		"staff_pin": "1234",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSettleEndpointRejectsUnknownMethod(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions("ctrl_settle_method")
	router := setupSettlementRouter(db)

	postJSON(t, router, "/tables/1/open", map[string]interface{}{"pax": 2})

	w := postJSON(t, router, "/sessions/1/settle", map[string]interface{}{
		"payments":  []map[string]interface{}{{"method": "crypto", "amount": 100.00}},
		"staff_pin": "1234",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoidEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions("ctrl_void")
	router := setupSettlementRouter(db)

	postJSON(t, router, "/tables/1/open", map[string]interface{}{"pax": 2})
	postJSON(t, router, "/sessions/1/items", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": 1, "quantity": 1}},
	})
	postJSON(t, router, "/sessions/1/confirm", nil)
	w := postJSON(t, router, "/sessions/1/settle", map[string]interface{}{
		"payments":  []map[string]interface{}{{"method": "cash", "amount": 120.00}},
		"staff_pin": "1234",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/transactions/1/void", map[string]interface{}{
		"reason": "settled the wrong table", "terminal_pin": "1234",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "voided", data["status"])
	assert.Equal(t, "settled the wrong table", data["void_reason"])

	// the transaction is still readable afterwards
	req, _ := http.NewRequest("GET", "/transactions/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
