package notificationControllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawmart/pawmart-api/models"
	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order not found")

// Listing is capped so a user with a long history does not pull the whole log.
const listLimit = 50

// -------- Core Logic --------

// Notify appends an unread notification for the order's owner. When notes is
// empty a templated message for the status is used.
func Notify(db *gorm.DB, orderID uint, status models.OrderStatus, notes string) (*models.Notification, error) {
	var order models.Order
	if err := db.Select("id", "user_id").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if notes == "" {
		notes = fmt.Sprintf("Your order status has been updated to %s", status)
	}

	n := models.Notification{
		OrderID: orderID,
		UserID:  order.UserID,
		Status:  status,
		Notes:   notes,
	}
	if err := db.Create(&n).Error; err != nil {
		return nil, err
	}
	log.Printf("✅ Notification created for user %d, order %d", order.UserID, orderID)
	return &n, nil
}

// ListSince returns the user's notifications newest first, optionally limited
// to those created after since.
func ListSince(db *gorm.DB, userID uint, since *time.Time) ([]models.Notification, error) {
	q := db.Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("created_at > ?", *since)
	}
	var notifications []models.Notification
	err := q.Order("created_at DESC").Limit(listLimit).Find(&notifications).Error
	return notifications, err
}

// MarkAllRead flips every unread notification for the user and reports how
// many rows changed.
func MarkAllRead(db *gorm.DB, userID uint) (int64, error) {
	res := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// -------- Handlers --------

// GET /notifications/user/:user_id?since=<RFC3339>
func GetUserNotificationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseUserID(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User ID required"})
			return
		}

		var since *time.Time
		if raw := c.Query("since"); raw != "" {
			parsed, parseErr := time.Parse(time.RFC3339, raw)
			if parseErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid since timestamp"})
				return
			}
			since = &parsed
		}

		notifications, err := ListSince(db, userID, since)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to fetch notifications",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
	}
}

// PUT /notifications/user/:user_id/read
func MarkNotificationsReadHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseUserID(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User ID required"})
			return
		}

		updated, err := MarkAllRead(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to mark notifications as read"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       fmt.Sprintf("Marked %d notifications as read", updated),
			"updated_count": updated,
		})
	}
}

type CreateNotificationRequest struct {
	UserID  uint   `json:"userId" binding:"required"`
	OrderID uint   `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Notes   string `json:"notes"`
}

// POST /notifications — admin path for inserting a notification by hand.
func CreateNotificationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateNotificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		n, err := Notify(db, req.OrderID, models.OrderStatus(req.Status), req.Notes)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrOrderNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"success": false, "error": "Failed to create notification"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"message":         "Notification created",
			"notification_id": n.ID,
		})
	}
}

func parseUserID(c *gin.Context) (uint, error) {
	id64, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id64), nil
}
