package rewardControllers

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawmart/pawmart-api/models"
	"gorm.io/gorm"
)

// One coin per 10 currency units of a received order.
const coinRate = 0.1

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrRewardNotFound    = errors.New("reward not found")
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrNoPet             = errors.New("no pet found for user")
)

// -------- Core Logic --------

// CoinBalance sums every ledger entry for the user; a user with no entries
// has balance zero.
func CoinBalance(db *gorm.DB, userID uint) (int, error) {
	var total int
	err := db.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(coins_earned), 0)").
		Scan(&total).Error
	return total, err
}

// AwardCoins credits floor(total_amount * 0.1) coins for a received order.
// Idempotent: an order that already has a ledger entry is skipped. The
// existence check and the insert share one transaction.
func AwardCoins(db *gorm.DB, orderID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id", "user_id", "total_amount").
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Transaction{}).
			Where("order_id = ?", orderID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			log.Printf("Coins already awarded for order %d", orderID)
			return nil
		}

		earned := int(math.Floor(order.TotalAmount * coinRate))
		entry := models.Transaction{
			UserID:      order.UserID,
			OrderID:     &order.ID,
			CoinsEarned: earned,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		log.Printf("✅ Coins awarded: %d for order %d to user %d", earned, orderID, order.UserID)
		return nil
	})
}

// SpendCoins appends a negative ledger entry with no order reference. The
// caller is responsible for checking the balance first.
func SpendCoins(tx *gorm.DB, userID uint, amount int) error {
	entry := models.Transaction{UserID: userID, CoinsEarned: -amount}
	return tx.Create(&entry).Error
}

// RedeemDiscount trades coins for a percent-off coupon tied to the user's
// first pet. Balance check, coin spend and reward creation are one
// transaction: a failure partway leaves nothing behind.
func RedeemDiscount(db *gorm.DB, userID uint, percent, cost int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		balance, err := CoinBalance(tx, userID)
		if err != nil {
			return err
		}
		if balance < cost {
			return ErrInsufficientCoins
		}

		var pet models.Pet
		if err := tx.Where("user_id = ?", userID).First(&pet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoPet
			}
			return err
		}

		if err := SpendCoins(tx, userID, cost); err != nil {
			return err
		}

		reward := models.Reward{
			UserID:     userID,
			PetID:      pet.ID,
			RewardType: "discount",
			Value:      fmt.Sprintf("%d%%", percent),
		}
		return tx.Create(&reward).Error
	})
}

// ConsumeReward marks a coupon used. Callers on the order path treat a
// failure here as best-effort and only log it.
func ConsumeReward(db *gorm.DB, rewardID uint) error {
	now := time.Now()
	res := db.Model(&models.Reward{}).
		Where("id = ?", rewardID).
		Updates(map[string]interface{}{"is_used": true, "used_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRewardNotFound
	}
	return nil
}

// ListUnusedDiscounts returns the user's coupons that are still spendable.
func ListUnusedDiscounts(db *gorm.DB, userID uint) ([]models.Reward, error) {
	var rewards []models.Reward
	err := db.Where("user_id = ? AND is_used = ?", userID, false).
		Order("created_at DESC").
		Find(&rewards).Error
	return rewards, err
}

// -------- Handlers --------

type TradeDiscountRequest struct {
	UserID  uint `json:"user_id" binding:"required"`
	Percent int  `json:"percent" binding:"required,min=1"`
	Cost    int  `json:"cost" binding:"required,min=1"`
}

// GET /rewards/user/:user_id
func GetUserRewardsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseUserID(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User ID required"})
			return
		}
		total, err := CoinBalance(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"total_coins": total},
		})
	}
}

// GET /rewards/user/:user_id/discounts
func GetUserDiscountsHandler(db *gorm.DB) gin.HandlerFunc {
	type discountResponse struct {
		RewardID   uint   `json:"reward_id"`
		RewardType string `json:"reward_type"`
		Value      string `json:"value"`
		IsUsed     bool   `json:"is_used"`
	}

	return func(c *gin.Context) {
		userID, err := parseUserID(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User ID required"})
			return
		}
		rewards, err := ListUnusedDiscounts(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "DB error"})
			return
		}
		discounts := make([]discountResponse, 0, len(rewards))
		for _, r := range rewards {
			discounts = append(discounts, discountResponse{
				RewardID:   r.ID,
				RewardType: r.RewardType,
				Value:      r.Value,
				IsUsed:     r.IsUsed,
			})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "discounts": discounts})
	}
}

// POST /rewards/trade
func TradeDiscountHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TradeDiscountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing data."})
			return
		}

		err := RedeemDiscount(db, req.UserID, req.Percent, req.Cost)
		switch {
		case errors.Is(err, ErrInsufficientCoins):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Insufficient coins."})
		case errors.Is(err, ErrNoPet):
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No pet found for user."})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save discount."})
		default:
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": fmt.Sprintf("You received a %d%% OFF coupon!", req.Percent),
			})
		}
	}
}

func parseUserID(c *gin.Context) (uint, error) {
	id64, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id64), nil
}
