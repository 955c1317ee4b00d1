package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/pawmart/pawmart-api/controllers/order"
	"github.com/pawmart/pawmart-api/events"
	"github.com/pawmart/pawmart-api/middleware"
	"gorm.io/gorm"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, pub *events.Publisher) {
	orders := r.Group("/orders")
	{
		// Place a new order
		orders.POST("/", middleware.ValidateToken, orderControllers.CreateOrderHandler(db, pub))

		// Cancel a pending order (stock rolls back)
		orders.POST("/cancel", middleware.ValidateToken, orderControllers.CancelOrderHandler(db, pub))

		// Fetch orders for a specific user
		orders.GET("/user/:user_id", middleware.ValidateToken, orderControllers.GetCustomerOrdersHandler(db))

		// Fetch orders containing a seller's products
		orders.GET("/seller/:seller_id", middleware.ValidateToken, orderControllers.GetSellerOrdersHandler(db))

		// Seller status transitions (ships, receives, notifies the customer)
		orders.PUT("/:orderID/seller-status", middleware.ValidateToken, orderControllers.UpdateOrderStatusSellerHandler(db, pub))

		// websocket endpoint for real-time order updates
		orders.GET("/ws", orderControllers.OrderFeedHandler)

		// Admin
		orders.GET("/", middleware.ValidateAPIKey, orderControllers.GetAllOrdersHandler(db))
		orders.GET("/export", middleware.ValidateAPIKey, orderControllers.ExportOrdersToExcel(db))
		orders.PUT("/status", middleware.ValidateAPIKey, orderControllers.UpdateOrderStatusHandler(db, pub))
	}
}
