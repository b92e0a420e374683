package models

import "time"

// Food is a menu item. Orders snapshot its title/price at checkout,
// so editing a food later never touches existing order totals.
type Food struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;index"`
	Title        string    `json:"title" gorm:"not null"`
	Category     string    `json:"category"`
	Price        float64   `json:"price" gorm:"not null"`
	ImageURL     string    `json:"image_url"`
	Description  string    `json:"description"`
	Ingredients  string    `json:"ingredients"`
	IsAvailable  bool      `json:"is_available" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
