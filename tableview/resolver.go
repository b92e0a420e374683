// Package tableview derives the customer-facing view of one table from
// the full set of its orders: which line items are still active, and
// which single order's status represents the table's visible progress.
package tableview

import (
	"sort"
	"time"

	"table-order-api/models"

	"github.com/samber/lo"
)

// View is the aggregate a customer page renders for one table. All
// active line items show together as one logical ticket even though
// they are separate order records.
type View struct {
	Empty       bool               `json:"empty"`
	OrderID     string             `json:"order_id,omitempty"`   // from the newest active order
	OrderTime   time.Time          `json:"order_time,omitzero"`  // from the newest active order
	Status      models.OrderStatus `json:"status,omitempty"`     // aggregate displayed status
	Items       []models.Order     `json:"items,omitempty"`      // full active set, newest first
	Total       float64            `json:"total"`                // Σ price × quantity over Items
	InactiveIDs []string           `json:"inactive_ids,omitempty"`
}

// Sort orders the slice newest-first by server-assigned creation time.
// Timestamp ties fall back to id ordering so the view never flaps
// between refreshes on two orders written in the same instant.
func Sort(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

// Resolve computes the table view from every order of one table,
// regardless of status. Input order does not matter; Resolve sorts.
//
// A served order older than the newest order is flagged inactive: once
// a newer order exists, older served orders are considered resolved and
// must not keep the table's "served" banner up forever. The flag is
// informational only; the customer-facing filter drops every served or
// completed order, latest or not, and an empty remainder renders as the
// "no order found" state rather than anything stale.
func Resolve(orders []models.Order) View {
	orders = append([]models.Order(nil), orders...)
	Sort(orders)

	if len(orders) == 0 {
		return View{Empty: true}
	}
	latestAny := orders[0]

	inactive := lo.FilterMap(orders, func(o models.Order, _ int) (string, bool) {
		return o.ID, o.Status == models.StatusServed && o.ID != latestAny.ID
	})

	active := lo.Filter(orders, func(o models.Order, _ int) bool {
		return o.Status != models.StatusServed && o.Status != models.StatusCompleted
	})
	if len(active) == 0 {
		return View{Empty: true, InactiveIDs: inactive}
	}

	return View{
		OrderID:   active[0].ID,
		OrderTime: active[0].CreatedAt,
		Status:    active[0].Status,
		Items:     active,
		Total: lo.SumBy(active, func(o models.Order) float64 {
			return o.Price * float64(o.Quantity)
		}),
		InactiveIDs: inactive,
	}
}
