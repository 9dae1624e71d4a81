package models

import "time"

// Salão favoritado por um usuário.
type Favorite struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID  uint   `gorm:"uniqueIndex:idx_fav_user_salon" json:"user_id"`
	SalonID string `gorm:"size:50;uniqueIndex:idx_fav_user_salon" json:"salon_id"`

	CreatedAt time.Time `json:"created_at"`
}
