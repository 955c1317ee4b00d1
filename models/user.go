package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Username  string    `gorm:"not null" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Orders    []Order   `gorm:"foreignKey:UserID" json:"orders,omitempty"`
	Pets      []Pet     `gorm:"foreignKey:UserID" json:"pets,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Pet belongs to a user; discount rewards are issued against the user's first pet.
type Pet struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"pet_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
