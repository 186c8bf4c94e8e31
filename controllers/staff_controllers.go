package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lengolf/venue-pos/models"
	"github.com/lengolf/venue-pos/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type StaffController struct {
	DB *gorm.DB
}

func NewStaffController(db *gorm.DB) *StaffController {
	return &StaffController{DB: db}
}

// ErrNoPermission is returned when a staff member lacks the required role.
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// Register creates a staff account. Admin only.
func (sc *StaffController) Register(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	type request struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Pin      string `json:"pin" binding:"required,len=4,numeric"`
		Role     string `json:"role" binding:"required,oneof=admin manager cashier"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	staff := models.Staff{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Pin:      req.Pin,
		Role:     req.Role,
		IsActive: true,
	}

	if err := sc.DB.Create(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New staff registered: %s (role=%s)", staff.Email, staff.Role)

	utils.RespondJSON(c, http.StatusCreated, "Staff registered", gin.H{
		"staff_id": staff.ID,
	})
}

// Login authenticates a staff member and returns a JWT for the terminal.
func (sc *StaffController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var staff models.Staff
	if err := sc.DB.Where("email = ? AND is_active = ?", input.Email, true).First(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(staff.ID, staff.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Staff %s logged in", staff.Email)

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"staff": gin.H{
			"id":   staff.ID,
			"name": staff.Name,
			"role": staff.Role,
		},
	})
}

// GetProfile returns the authenticated staff member.
func (sc *StaffController) GetProfile(c *gin.Context) {
	staffID, _ := c.Get("staff_id")

	var staff models.Staff
	if err := sc.DB.First(&staff, staffID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile", gin.H{
		"id":        staff.ID,
		"name":      staff.Name,
		"email":     staff.Email,
		"role":      staff.Role,
		"is_active": staff.IsActive,
	})
}
