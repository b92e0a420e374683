package handlers

import (
	"net/http"

	"table-order-api/config"
	"table-order-api/livequery"
	"table-order-api/middleware"
	"table-order-api/models"
	"table-order-api/tableview"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type CheckoutRequest struct {
	Items []struct {
		FoodID   uint `json:"food_id" binding:"required"`
		Quantity int  `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
}

// Checkout turns the customer's cart into orders: one Order record per
// distinct food line item, all pending, each with total frozen at
// price × quantity. Requires a table session cookie.
func Checkout(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)
	session := middleware.GetTableSession(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var orders []models.Order
	for _, item := range req.Items {
		var food models.Food
		if err := config.DB.Where("restaurant_id = ?", restaurant.ID).First(&food, item.FoodID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Food item not found"})
			return
		}
		if !food.IsAvailable {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Food item '" + food.Title + "' is not available"})
			return
		}
		orders = append(orders, models.Order{
			RestaurantID:  restaurant.ID,
			TableNo:       session.TableNo,
			Title:         food.Title,
			Category:      food.Category,
			Price:         food.Price,
			Quantity:      item.Quantity,
			Total:         food.Price * float64(item.Quantity),
			Status:        models.StatusPending,
			CustomerName:  session.CustomerName,
			CustomerPhone: session.CustomerPhone,
			ImageURL:      food.ImageURL,
			Description:   food.Description,
			Ingredients:   food.Ingredients,
		})
	}

	if err := config.DB.Create(&orders).Error; err != nil {
		log.Error().Err(err).Uint("restaurant_id", restaurant.ID).Msg("checkout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order. Please try again."})
		return
	}
	livequery.Bus.Broadcast(restaurant.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Order placed successfully",
		"table_no": session.TableNo,
		"count":    len(orders),
		"orders":   orders,
	})
}

// GetTableStatus returns the resolved view for the session's table:
// the active ticket with its aggregate status, or the empty state when
// every order is served or completed.
func GetTableStatus(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)
	session := middleware.GetTableSession(c)

	orders, err := LoadOrders(livequery.Query{RestaurantID: restaurant.ID, TableNo: &session.TableNo})
	if err != nil {
		log.Error().Err(err).Int("table_no", session.TableNo).Msg("table status load failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load table status. Please try again."})
		return
	}

	view := tableview.Resolve(orders)
	if view.Empty {
		c.JSON(http.StatusOK, gin.H{"found": false, "view": view})
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "view": view})
}

// StreamTableStatus is the live version of GetTableStatus: an SSE
// stream that re-resolves the table view on every matching write.
func StreamTableStatus(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)
	session := middleware.GetTableSession(c)

	q := livequery.Query{RestaurantID: restaurant.ID, TableNo: &session.TableNo}
	streamOrders(c, q, func(snapshot []models.Order) interface{} {
		return tableview.Resolve(snapshot)
	})
}
