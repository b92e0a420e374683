package handlers

import (
	"net/http"

	"table-order-api/config"
	"table-order-api/livequery"
	"table-order-api/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type RestaurantRequest struct {
	Name          string  `json:"name" binding:"required"`
	Slug          string  `json:"slug" binding:"required,lowercase"`
	Address       string  `json:"address"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	AdminEmail    string  `json:"admin_email" binding:"required,email"`
	AdminPassword string  `json:"admin_password" binding:"required,min=6"`
	Currency      string  `json:"currency"`
	GstRate       float64 `json:"gst_rate"`
}

// ListRestaurants returns all tenants (super admin only)
func ListRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	query := config.DB
	if blocked := c.Query("blocked"); blocked == "true" {
		query = query.Where("is_blocked = ?", true)
	}
	query.Order("name").Find(&restaurants)
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
}

// CreateRestaurant onboards a new tenant with its admin account
func CreateRestaurant(c *gin.Context) {
	var req RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Restaurant
	if err := config.DB.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Slug already in use"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	restaurant := models.Restaurant{
		Name:              req.Name,
		Slug:              req.Slug,
		Address:           req.Address,
		Phone:             req.Phone,
		Email:             req.Email,
		AdminEmail:        req.AdminEmail,
		AdminPasswordHash: string(hash),
		Currency:          currency,
		GstRate:           req.GstRate,
	}
	if err := config.DB.Create(&restaurant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create restaurant"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Restaurant created", "restaurant": restaurant})
}

// UpdateRestaurant edits tenant details
func UpdateRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := config.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if password, ok := req["admin_password"].(string); ok && password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		req["admin_password_hash"] = string(hash)
	}

	allowed := map[string]bool{
		"name": true, "address": true, "phone": true, "email": true,
		"admin_email": true, "admin_password_hash": true, "currency": true, "gst_rate": true,
	}
	update := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			update[k] = v
		}
	}
	config.DB.Model(&restaurant).Updates(update)
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated", "restaurant": restaurant})
}

type BlockRestaurantRequest struct {
	IsBlocked bool `json:"is_blocked"`
}

// BlockRestaurant flips a tenant's blocked flag. Blocking immediately
// drops every live subscription of that tenant, and the tenant
// middleware rejects all of its sessions from the next request on.
func BlockRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := config.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var req BlockRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config.DB.Model(&restaurant).Update("is_blocked", req.IsBlocked)
	if req.IsBlocked {
		livequery.Bus.CloseTenant(restaurant.ID)
		log.Info().Uint("restaurant_id", restaurant.ID).Msg("restaurant blocked, live sessions dropped")
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Restaurant updated",
		"id":         restaurant.ID,
		"is_blocked": req.IsBlocked,
	})
}

// DeleteRestaurant removes a tenant record. Tenant-scoped data stays
// behind but is unreachable: every route resolves the tenant first.
func DeleteRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := config.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	livequery.Bus.CloseTenant(restaurant.ID)
	config.DB.Delete(&restaurant)
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant deleted"})
}
