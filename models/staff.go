package models

import "time"

// Role defines allowed roles in the system
type Role string

const (
	RoleKitchenStaff Role = "kitchen_staff"
	RoleAdmin        Role = "admin"
	RoleSuperAdmin   Role = "super_admin"
)

// Staff is a kitchen or service employee scoped to one tenant.
// Mobile is the login identifier, unique within the tenant.
type Staff struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_tenant_mobile"`
	FullName     string    `json:"full_name" gorm:"not null"`
	Mobile       string    `json:"mobile" gorm:"not null;uniqueIndex:idx_tenant_mobile"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Designation  string    `json:"designation"`
	Address      string    `json:"address"`
	Aadhaar      string    `json:"aadhaar"`
	ImageURL     string    `json:"image_url"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
