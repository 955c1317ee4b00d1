package models

import "time"

// Notification is append-only except for the is_read flag.
type Notification struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"notification_id"`
	OrderID   uint        `gorm:"index;not null" json:"order_id"`
	UserID    uint        `gorm:"index;not null" json:"user_id"`
	Status    OrderStatus `gorm:"type:VARCHAR(20)" json:"status"`
	Notes     string      `json:"notes"`
	IsRead    bool        `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
