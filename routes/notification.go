package routes

import (
	"github.com/gin-gonic/gin"
	notificationControllers "github.com/pawmart/pawmart-api/controllers/notification"
	"github.com/pawmart/pawmart-api/middleware"
	"gorm.io/gorm"
)

func SetupNotificationRoutes(r *gin.Engine, db *gorm.DB) {
	notifications := r.Group("/notifications")
	{
		// List (optionally ?since=<RFC3339>), capped at 50
		notifications.GET("/user/:user_id", middleware.ValidateToken, notificationControllers.GetUserNotificationsHandler(db))

		// Mark all of a user's notifications read
		notifications.PUT("/user/:user_id/read", middleware.ValidateToken, notificationControllers.MarkNotificationsReadHandler(db))

		// Admin: insert a notification by hand
		notifications.POST("/", middleware.ValidateAPIKey, notificationControllers.CreateNotificationHandler(db))
	}
}
