package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents all possible states of a table order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCooking   OrderStatus = "cooking"
	StatusServed    OrderStatus = "served"
	StatusCompleted OrderStatus = "completed"
)

// Order is one food line item placed for one table. A cart checkout
// creates one Order per distinct line item, not one per cart.
type Order struct {
	ID            string      `json:"id" gorm:"primaryKey"`
	RestaurantID  uint        `json:"restaurant_id" gorm:"not null;index"`
	TableNo       int         `json:"table_no" gorm:"not null;index"`
	Title         string      `json:"title" gorm:"not null"`
	Category      string      `json:"category"`
	Price         float64     `json:"price" gorm:"not null"`
	Quantity      int         `json:"quantity" gorm:"not null"`
	Total         float64     `json:"total" gorm:"not null"` // price × quantity, frozen at creation
	Status        OrderStatus `json:"status" gorm:"not null;default:'pending'"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	ImageURL      string      `json:"image_url"`
	Description   string      `json:"description"`
	Ingredients   string      `json:"ingredients"`
	Version       int         `json:"version" gorm:"default:1"` // bumped on each status transition
	CreatedAt     time.Time   `json:"created_at"`               // server-assigned, never client-supplied
	UpdatedAt     time.Time   `json:"updated_at"`
}

// BeforeCreate assigns the opaque order id
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
