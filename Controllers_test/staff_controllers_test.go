package Controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lengolf/venue-pos/controllers"
	"github.com/lengolf/venue-pos/models"
	"github.com/lengolf/venue-pos/utils"
)

func setupTestDBForStaff(name string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	if err := db.AutoMigrate(&models.Staff{}); err != nil {
		panic(err)
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	db.Create(&models.Staff{
		Name: "Admin", Email: "admin@venue.test", Password: string(hashed),
		Pin: "9999", Role: "admin", IsActive: true,
	})
	return db
}

func setupStaffRouter(db *gorm.DB, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	staffCtrl := controllers.NewStaffController(db)
	router.POST("/login", staffCtrl.Login)
	router.POST("/staff", func(c *gin.Context) {
		c.Set("staff_id", uint(1))
		c.Set("role", role)
	}, staffCtrl.Register)
	return router
}

func TestLogin(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff("staff_login")
	router := setupStaffRouter(db, "admin")

	w := postJSON(t, router, "/login", map[string]string{
		"email": "admin@venue.test", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	w = postJSON(t, router, "/login", map[string]string{
		"email": "admin@venue.test", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterStaff(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff("staff_register")
	router := setupStaffRouter(db, "admin")

	w := postJSON(t, router, "/staff", map[string]string{
		"name": "New Cashier", "email": "cashier@venue.test",
		"password": "secret123", "pin": "4567", "role": "cashier",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var staff models.Staff
	assert.NoError(t, db.Where("email = ?", "cashier@venue.test").First(&staff).Error)
	assert.Equal(t, "cashier", staff.Role)
	assert.NotEqual(t, "secret123", staff.Password)

	// a four digit numeric PIN is required
	w = postJSON(t, router, "/staff", map[string]string{
		"name": "Bad PIN", "email": "bad@venue.test",
		"password": "secret123", "pin": "abcd", "role": "cashier",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterStaffForbiddenForNonAdmin(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff("staff_forbidden")
	router := setupStaffRouter(db, "cashier")

	w := postJSON(t, router, "/staff", map[string]string{
		"name": "Sneaky", "email": "sneaky@venue.test",
		"password": "secret123", "pin": "1111", "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
