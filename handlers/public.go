package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"table-order-api/config"
	"table-order-api/middleware"
	"table-order-api/models"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// GetMenu returns the available foods for the tenant (public)
func GetMenu(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var foods []models.Food
	query := config.DB.Where("restaurant_id = ? AND is_available = ?", restaurant.ID, true)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	query.Order("category, title").Find(&foods)

	c.JSON(http.StatusOK, gin.H{
		"restaurant": restaurant.Name,
		"count":      len(foods),
		"menu":       foods,
	})
}

// GetTableQR renders the QR code PNG for a table's entry URL. The
// payload is derived from the table number on every request and never
// stored.
func GetTableQR(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table number"})
		return
	}
	var table models.Table
	if err := config.DB.Where("restaurant_id = ? AND number = ?", restaurant.ID, number).First(&table).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	}

	payload := fmt.Sprintf("%s/%s/scan?table=%d", config.C.BaseURL, restaurant.Slug, table.Number)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

type TableSessionRequest struct {
	TableNo       int    `json:"table_no" binding:"required"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

// StartTableSession begins a customer session from a scanned QR code.
// It validates the table and sets the signed cookie that gates the
// ordering path.
func StartTableSession(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var req TableSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var table models.Table
	if err := config.DB.Where("restaurant_id = ? AND number = ?", restaurant.ID, req.TableNo).First(&table).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	}
	if !table.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Table is not in service"})
		return
	}

	cookie, err := middleware.IssueTableSession(restaurant.ID, table.Number, req.CustomerName, req.CustomerPhone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}

	c.SetCookie(middleware.TableSessionCookie, cookie, 12*3600, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Table session started",
		"table_no": table.Number,
	})
}

// GetStateMachineInfo returns the order lifecycle for documentation
func GetStateMachineInfo(c *gin.Context) {
	info := []gin.H{
		{"from": "pending", "to": "cooking"},
		{"from": "pending", "to": "served"},
		{"from": "cooking", "to": "served"},
		{"from": "served", "to": "completed"},
	}
	c.JSON(http.StatusOK, gin.H{"states": []string{"pending", "cooking", "served", "completed"}, "transitions": info})
}
