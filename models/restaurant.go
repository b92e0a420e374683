package models

import "time"

// Restaurant is one tenant. Every Food/Table/Staff/Order record is
// partitioned under exactly one restaurant id; nothing crosses tenants.
type Restaurant struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"not null"`
	Slug              string    `json:"slug" gorm:"uniqueIndex;not null"` // URL path segment for tenant routes
	Address           string    `json:"address"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email"`
	AdminEmail        string    `json:"admin_email" gorm:"not null"`
	AdminPasswordHash string    `json:"-" gorm:"not null"`
	IsBlocked         bool      `json:"is_blocked" gorm:"default:false"`
	Currency          string    `json:"currency" gorm:"default:'INR'"`
	GstRate           float64   `json:"gst_rate" gorm:"default:0"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
