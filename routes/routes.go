package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pawmart/pawmart-api/events"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up the order, reward, and
// notification route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, pub *events.Publisher) {
	SetupOrderRoutes(r, db, pub)
	SetupRewardRoutes(r, db)
	SetupNotificationRoutes(r, db)
}
