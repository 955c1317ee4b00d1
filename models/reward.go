package models

import "time"

// Reward is a discount coupon bought with coins. It is consumed at most once,
// when an order references it.
type Reward struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"reward_id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	PetID      uint       `json:"pet_id"`
	RewardType string     `gorm:"type:VARCHAR(30)" json:"reward_type"` // e.g. "discount"
	Value      string     `json:"value"`                               // e.g. "10%"
	IsUsed     bool       `gorm:"default:false" json:"is_used"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Transaction is an append-only coin ledger entry. Positive coins_earned is an
// award, negative a spend. OrderID is nil for spends that are not tied to an
// order. Rows are never updated or deleted.
type Transaction struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"transaction_id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	OrderID     *uint     `gorm:"index" json:"order_id"`
	CoinsEarned int       `gorm:"not null" json:"coins_earned"`
	CreatedAt   time.Time `json:"created_at"`
}
