package models

import "time"

// Table is a physical seating unit, identified within a tenant by its
// integer number. The QR payload is derived from the number at request
// time and never stored.
type Table struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_tenant_table"`
	Number       int       `json:"number" gorm:"not null;uniqueIndex:idx_tenant_table"`
	Capacity     int       `json:"capacity" gorm:"default:2"`
	Location     string    `json:"location"`
	IsOccupied   bool      `json:"is_occupied" gorm:"default:false"` // display flag only, not authoritative for billing
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
