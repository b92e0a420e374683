package handlers

import (
	"io"
	"net/http"

	"table-order-api/config"
	"table-order-api/livequery"
	"table-order-api/models"

	"github.com/gin-gonic/gin"
)

// LoadOrders is the live-query loader: the full current match set for
// a predicate, newest first. Ties on created_at fall back to id so the
// order is stable across reloads.
func LoadOrders(q livequery.Query) ([]models.Order, error) {
	query := config.DB.Where("restaurant_id = ?", q.RestaurantID)
	if q.TableNo != nil {
		query = query.Where("table_no = ?", *q.TableNo)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	var orders []models.Order
	if err := query.Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// streamOrders turns a live subscription into an SSE stream. Each
// event carries render(snapshot), a full replacement rather than a delta.
// The subscription is released exactly once, when the client goes away
// or the hub drops the tenant.
func streamOrders(c *gin.Context, q livequery.Query, render func([]models.Order) interface{}) {
	sub, err := livequery.Bus.Subscribe(q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", render(snapshot))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
