package orderControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pawmart/pawmart-api/events"
	"github.com/pawmart/pawmart-api/inventory"
	"github.com/pawmart/pawmart-api/models"
	"gorm.io/gorm"
)

type CancelOrderRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Reason  string `json:"reason"`
}

type UpdateOrderStatusRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

type SellerStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	Notes          string `json:"notes"`
	NotifyCustomer *bool  `json:"notify_customer"`
}

// POST /orders
func CreateOrderHandler(db *gorm.DB, pub *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user_id or items"})
			return
		}

		order, err := CreateOrder(db, req)
		if err != nil {
			var stockErr *inventory.InsufficientStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": stockErr.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Insert order failed", "details": err.Error()})
			return
		}

		broadcastOrderEvent("order.created", *order)
		pub.PublishOrderStatus(c.Request.Context(), order)

		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"orderId":        order.ID,
			"order_id":       order.ID,
			"payment_method": order.PaymentMethod,
		})
	}
}

// POST /orders/cancel
func CancelOrderHandler(db *gorm.DB, pub *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CancelOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
			return
		}

		err := CancelOrder(db, req.OrderID, req.Reason)
		switch {
		case errors.Is(err, ErrReasonRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cancellation reason is required"})
		case errors.Is(err, ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, ErrOnlyPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending orders can be cancelled"})
		case errors.Is(err, ErrStatusConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Order not found or not in pending status"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order", "details": err.Error()})
		default:
			notifyStatusChange(c, db, pub, req.OrderID)
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Order cancelled, stock rolled back and cancellation reason saved",
			})
		}
	}
}

// PUT /orders/status
func UpdateOrderStatusHandler(db *gorm.DB, pub *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}

		err = UpdateOrderStatus(db, req.OrderID, status)
		switch {
		case errors.Is(err, ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status", "details": err.Error()})
		default:
			notifyStatusChange(c, db, pub, req.OrderID)
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status updated successfully"})
		}
	}
}

// PUT /orders/:orderID/seller-status
func UpdateOrderStatusSellerHandler(db *gorm.DB, pub *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := parseOrderID(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "orderID is required"})
			return
		}
		var req SellerStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid status value"})
			return
		}
		status, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid status value"})
			return
		}
		notify := true
		if req.NotifyCustomer != nil {
			notify = *req.NotifyCustomer
		}

		err = UpdateOrderStatusSeller(db, orderID, status, req.Notes, notify)
		switch {
		case errors.Is(err, ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Order not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to update order status",
				"details": err.Error(),
			})
		default:
			notifyStatusChange(c, db, pub, orderID)
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated successfully"})
		}
	}
}

// GET /orders/user/:user_id
func GetCustomerOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseUserID(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		orders, err := GetCustomerOrders(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": orders})
	}
}

// GET /orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := GetAllOrders(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": orders})
	}
}

// GET /orders/seller/:seller_id
func GetSellerOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID64, err := strconv.ParseUint(c.Param("seller_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "sellerId is required"})
			return
		}
		orders, err := GetSellerOrders(db, uint(sellerID64))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to fetch orders",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
	}
}

// notifyStatusChange fans the transition out to websocket clients and Kafka.
// Purely best-effort: a missing order is skipped.
func notifyStatusChange(c *gin.Context, db *gorm.DB, pub *events.Publisher, orderID uint) {
	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		return
	}
	broadcastOrderEvent("order.status_changed", order)
	pub.PublishOrderStatus(c.Request.Context(), &order)
}

func parseOrderID(c *gin.Context) (uint, error) {
	id64, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id64), nil
}

func parseUserID(c *gin.Context) (uint, error) {
	id64, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id64), nil
}
