package handlers

import (
	"net/http"

	"table-order-api/config"
	"table-order-api/middleware"
	"table-order-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type StaffLoginRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// StaffLogin authenticates kitchen staff by mobile + password. The
// tenant-blocked check already ran in TenantRequired; an inactive
// staff record is rejected the same way as a bad password pair.
func StaffLogin(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var req StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var staff models.Staff
	if err := config.DB.Where("restaurant_id = ? AND mobile = ?", restaurant.ID, req.Mobile).First(&staff).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid mobile or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid mobile or password"})
		return
	}
	if !staff.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Staff account is deactivated"})
		return
	}

	token, err := middleware.GenerateStaffToken(&staff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"token": token,
		"staff": gin.H{
			"id":           staff.ID,
			"fullName":     staff.FullName,
			"designation":  staff.Designation,
			"imageUrl":     staff.ImageURL,
			"restaurantId": staff.RestaurantID,
		},
	})
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin authenticates the tenant admin account
func AdminLogin(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email != restaurant.AdminEmail ||
		bcrypt.CompareHashAndPassword([]byte(restaurant.AdminPasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := middleware.GenerateAdminToken(restaurant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"token": token,
		"restaurant": gin.H{
			"id":   restaurant.ID,
			"name": restaurant.Name,
			"slug": restaurant.Slug,
		},
	})
}

// SuperAdminLogin authenticates against the configured credentials;
// there is no super admin record in the database.
func SuperAdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email != config.C.SuperAdminEmail || req.Password != config.C.SuperAdminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := middleware.GenerateSuperAdminToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "token": token})
}
