package models

import "time"

type OrderStatus string
type PaymentMethod string

const (
	// Order statuses
	OrderStatusPending   OrderStatus = "pending"   // Order placed, stock reserved
	OrderStatusShipped   OrderStatus = "shipped"   // Out for delivery
	OrderStatusReceived  OrderStatus = "received"  // Customer received the item, coins awarded
	OrderStatusCancelled OrderStatus = "cancelled" // Cancelled, stock released

	// Payment methods
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodGCash        PaymentMethod = "gcash"
	PaymentMethodMaya         PaymentMethod = "maya"
	PaymentMethodOnlineBank   PaymentMethod = "online_bank"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

type Order struct {
	ID                 uint          `gorm:"primaryKey" json:"order_id"`
	OrderRef           string        `gorm:"uniqueIndex" json:"order_ref"`
	UserID             uint          `gorm:"not null;index" json:"user_id"`
	User               User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items              []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Status             OrderStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentMethod      PaymentMethod `gorm:"type:VARCHAR(20);default:'cod'" json:"payment_method"`
	DiscountPercent    float64       `json:"discount_percent"`
	DiscountAmount     float64       `json:"discount_amount"`
	DiscountCode       *string       `json:"discount_code"`
	RewardID           *uint         `json:"reward_id"`
	TotalAmount        float64       `json:"total_amount"`
	CancellationReason *string       `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time    `json:"cancellation_date,omitempty"`
	DateShipped        *time.Time    `json:"date_shipped,omitempty"`
	CreatedAt          time.Time     `json:"date_placed"`
}

// OrderItem snapshots the price at order time; it never tracks the product's
// current price.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"order_item_id"`
	OrderID   uint    `gorm:"index" json:"order_id"`
	ProductID uint    `gorm:"not null" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`
}
