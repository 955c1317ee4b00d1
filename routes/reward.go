package routes

import (
	"github.com/gin-gonic/gin"
	rewardControllers "github.com/pawmart/pawmart-api/controllers/reward"
	"github.com/pawmart/pawmart-api/middleware"
	"gorm.io/gorm"
)

func SetupRewardRoutes(r *gin.Engine, db *gorm.DB) {
	rewards := r.Group("/rewards", middleware.ValidateToken)
	{
		// Coin balance
		rewards.GET("/user/:user_id", rewardControllers.GetUserRewardsHandler(db))

		// Unused discount coupons
		rewards.GET("/user/:user_id/discounts", rewardControllers.GetUserDiscountsHandler(db))

		// Trade coins for a percent-off coupon
		rewards.POST("/trade", rewardControllers.TradeDiscountHandler(db))
	}
}
