package handlers

import (
	"net/http"
	"strconv"

	"table-order-api/config"
	"table-order-api/livequery"
	"table-order-api/middleware"
	"table-order-api/models"
	"table-order-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// GetKitchenOrders returns the kitchen board: all orders of the
// tenant, optionally filtered by status, newest first.
func GetKitchenOrders(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	q := livequery.Query{RestaurantID: restaurant.ID}
	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		if !statemachine.IsStatus(s) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter: " + status})
			return
		}
		q.Status = &s
	}

	orders, err := LoadOrders(q)
	if err != nil {
		log.Error().Err(err).Uint("restaurant_id", restaurant.ID).Msg("kitchen board load failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders. Please try again."})
		return
	}

	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}
	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

// StreamKitchenOrders is the live kitchen board over SSE
func StreamKitchenOrders(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	q := livequery.Query{RestaurantID: restaurant.ID}
	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		if !statemachine.IsStatus(s) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter: " + status})
			return
		}
		q.Status = &s
	}
	streamOrders(c, q, func(snapshot []models.Order) interface{} {
		return gin.H{"count": len(snapshot), "orders": snapshot}
	})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// UpdateOrderStatus applies a validated forward transition to one
// order. The status column is the only field written; concurrent
// writers are last-write-wins, which is acceptable because both end up
// at the same forward state or one of them gets InvalidTransition.
func UpdateOrderStatus(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)
	orderID := c.Param("id")

	var order models.Order
	if err := config.DB.Where("restaurant_id = ?", restaurant.ID).First(&order, "id = ?", orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := statemachine.CanTransition(order.Status, req.Status); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    order.Status,
			"requested":         req.Status,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
		})
		return
	}

	prevStatus := order.Status
	config.DB.Model(&order).Updates(map[string]interface{}{
		"status":  req.Status,
		"version": order.Version + 1,
	})
	livequery.Bus.Broadcast(restaurant.ID)

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order_id":        order.ID,
		"previous_status": string(prevStatus),
		"current_status":  string(req.Status),
	})
}

// RemoveOrder deletes an order. Idempotent: removing an id that is
// already gone is a logged no-op, never an error to the caller.
func RemoveOrder(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)
	orderID := c.Param("id")

	result := config.DB.Where("restaurant_id = ?", restaurant.ID).Delete(&models.Order{}, "id = ?", orderID)
	if result.Error != nil {
		log.Error().Err(result.Error).Str("order_id", orderID).Msg("order delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove order. Please try again."})
		return
	}
	if result.RowsAffected == 0 {
		log.Debug().Str("order_id", orderID).Msg("remove of absent order, nothing to do")
	} else {
		livequery.Bus.Broadcast(restaurant.ID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order removed", "order_id": orderID})
}

// ToggleTableOccupied flips the table's display-only occupancy flag
func ToggleTableOccupied(c *gin.Context) {
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

	var req struct {
		IsOccupied bool `json:"is_occupied"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config.DB.Model(&table).Update("is_occupied", req.IsOccupied)
	c.JSON(http.StatusOK, gin.H{"message": "Table updated", "table_no": table.Number, "is_occupied": req.IsOccupied})
}
