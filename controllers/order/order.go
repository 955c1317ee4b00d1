package orderControllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	notificationControllers "github.com/pawmart/pawmart-api/controllers/notification"
	rewardControllers "github.com/pawmart/pawmart-api/controllers/reward"
	"github.com/pawmart/pawmart-api/inventory"
	"github.com/pawmart/pawmart-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// -------- Request Structs --------

type OrderItemInput struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price" binding:"required"`
}

type CreateOrderRequest struct {
	UserID          uint             `json:"user_id" binding:"required"`
	Items           []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	DiscountPercent float64          `json:"discount_percent"`
	DiscountAmount  float64          `json:"discount_amount"`
	DiscountCode    string           `json:"discount_code"`
	RewardID        *uint            `json:"reward_id"`
	PaymentMethod   string           `json:"payment_method"`
}

// -------- Errors --------

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrReasonRequired = errors.New("cancellation reason is required")
	ErrOnlyPending    = errors.New("only pending orders can be cancelled")
	ErrStatusConflict = errors.New("order not found or not in pending status")
	ErrInvalidStatus  = errors.New("invalid status")
)

// -------- Helpers --------

// Map string to OrderStatus
func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusPending):
		return models.OrderStatusPending, nil
	case string(models.OrderStatusShipped):
		return models.OrderStatusShipped, nil
	case string(models.OrderStatusReceived):
		return models.OrderStatusReceived, nil
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// An unrecognized payment method falls back to cash on delivery; the request
// is not rejected.
func resolvePaymentMethod(method string) models.PaymentMethod {
	normalized := models.PaymentMethod(strings.ToLower(method))
	switch normalized {
	case models.PaymentMethodCOD, models.PaymentMethodGCash, models.PaymentMethodMaya,
		models.PaymentMethodOnlineBank, models.PaymentMethodBankTransfer:
		return normalized
	default:
		return models.PaymentMethodCOD
	}
}

// Generate unique order reference
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// sqlite has no FOR UPDATE; the row lock only applies on postgres.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func linesFromItems(items []models.OrderItem) []inventory.Line {
	lines := make([]inventory.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

// -------- Core Logic --------

// CreateOrder places a pending order: availability check, header and line
// inserts, discount math and stock reservation all run in one transaction, so
// any failure rolls the whole placement back. Marking the referenced reward
// used happens after commit and is best-effort.
func CreateOrder(db *gorm.DB, req CreateOrderRequest) (*models.Order, error) {
	method := resolvePaymentMethod(req.PaymentMethod)

	lines := make([]inventory.Line, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := inventory.CheckAvailability(tx, lines); err != nil {
			return err
		}

		order = models.Order{
			OrderRef:        generateOrderRef(),
			UserID:          req.UserID,
			Status:          models.OrderStatusPending,
			PaymentMethod:   method,
			DiscountPercent: req.DiscountPercent,
			DiscountAmount:  req.DiscountAmount,
			RewardID:        req.RewardID,
		}
		if req.DiscountCode != "" {
			order.DiscountCode = &req.DiscountCode
		}
		for _, item := range req.Items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total float64
		for _, item := range req.Items {
			total += item.Price * float64(item.Quantity)
		}
		if req.DiscountPercent > 0 {
			discount := req.DiscountPercent / 100 * total
			total -= discount
			log.Printf("✅ Discount applied: %.0f%% (₱%.2f)", req.DiscountPercent, discount)
		}
		order.TotalAmount = total
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("total_amount", total).Error; err != nil {
			return err
		}

		return inventory.Reserve(tx, lines)
	})
	if err != nil {
		return nil, err
	}

	if req.RewardID != nil {
		if err := rewardControllers.ConsumeReward(db, *req.RewardID); err != nil {
			log.Printf("❌ Failed to mark reward %d used for order %d: %v", *req.RewardID, order.ID, err)
		} else {
			log.Printf("✅ Reward %d marked as used for order %d", *req.RewardID, order.ID)
		}
	}

	log.Printf("✅ Order %d created with payment method: %s", order.ID, method)
	return &order, nil
}

// CancelOrder releases the order's stock and moves it to cancelled, in one
// transaction. The header row is locked before the status check so two
// concurrent transitions cannot both pass it, and the final update is still
// constrained to pending rows; zero affected rows means the race was lost and
// everything, the stock release included, rolls back.
func CancelOrder(db *gorm.DB, orderID uint, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockForUpdate(tx).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Status != models.OrderStatusPending {
			return ErrOnlyPending
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		if err := inventory.Release(tx, linesFromItems(items)); err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":              models.OrderStatusCancelled,
				"cancellation_reason": reason,
				"cancelled_at":        time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		return nil
	})
}

// UpdateOrderStatus is the administrative transition path. A transition to
// cancelled releases the order's stock in the same transaction as the status
// write. It takes no row lock and does not require the order to be pending.
// The coin award on received happens after commit and is best-effort.
func UpdateOrderStatus(db *gorm.DB, orderID uint, status models.OrderStatus) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if status == models.OrderStatusCancelled {
			var items []models.OrderItem
			if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
				return err
			}
			if err := inventory.Release(tx, linesFromItems(items)); err != nil {
				return err
			}
		}

		res := tx.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	if status == models.OrderStatusReceived {
		awardCoinsBestEffort(db, orderID)
	}
	return nil
}

// UpdateOrderStatusSeller is the seller transition path: stamps date_shipped
// on shipped and, after the status write, optionally notifies the customer
// and awards coins on received, both best-effort. Unlike the administrative
// path it performs no stock compensation on cancelled.
func UpdateOrderStatusSeller(db *gorm.DB, orderID uint, status models.OrderStatus, notes string, notifyCustomer bool) error {
	updates := map[string]interface{}{"status": status}
	if status == models.OrderStatusShipped {
		updates["date_shipped"] = time.Now()
	}

	res := db.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	log.Printf("✅ Order %d status updated to %s", orderID, status)

	if notifyCustomer {
		if _, err := notificationControllers.Notify(db, orderID, status, notes); err != nil {
			log.Printf("❌ Failed to create notification for order %d: %v", orderID, err)
		}
	}
	if status == models.OrderStatusReceived {
		awardCoinsBestEffort(db, orderID)
	}
	return nil
}

func awardCoinsBestEffort(db *gorm.DB, orderID uint) {
	if err := rewardControllers.AwardCoins(db, orderID); err != nil {
		log.Printf("❌ Failed to award coins for order %d: %v", orderID, err)
	}
}

// -------- Read-only queries --------

func GetCustomerOrders(db *gorm.DB, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := db.Where("user_id = ?", userID).
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func GetAllOrders(db *gorm.DB) ([]models.Order, error) {
	var orders []models.Order
	err := db.
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// GetSellerOrders returns orders containing at least one of the seller's
// products.
func GetSellerOrders(db *gorm.DB, sellerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := db.
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID).
		Group("orders.id").
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		Order("orders.created_at DESC").
		Find(&orders).Error
	return orders, err
}
