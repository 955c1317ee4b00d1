// Package inventory holds the stock counters. All mutations run inside the
// caller's transaction so a failed order creation or cancellation rolls the
// counters back together with the rest of its writes.
package inventory

import (
	"errors"
	"fmt"

	"github.com/pawmart/pawmart-api/models"
	"gorm.io/gorm"
)

// Line is a product/quantity pair taken from an order's items.
type Line struct {
	ProductID uint
	Quantity  int
}

// InsufficientStockError reports the first product that cannot cover the
// requested quantity. An unknown product id is reported the same way.
type InsufficientStockError struct {
	ProductID uint
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product_id %d", e.ProductID)
}

// CheckAvailability reads current stock for every line and fails fast on the
// first shortfall. It holds no locks, so a concurrent reservation can still
// win the last unit between this check and Reserve.
func CheckAvailability(tx *gorm.DB, lines []Line) error {
	for _, line := range lines {
		var product models.Product
		if err := tx.Select("id", "stock").First(&product, "id = ?", line.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &InsufficientStockError{ProductID: line.ProductID}
			}
			return err
		}
		if product.Stock < line.Quantity {
			return &InsufficientStockError{ProductID: line.ProductID}
		}
	}
	return nil
}

// Reserve decrements stock for every line. The decrement is guarded so stock
// never goes negative: losing the race after CheckAvailability surfaces here
// as InsufficientStockError and aborts the caller's transaction.
func Reserve(tx *gorm.DB, lines []Line) error {
	for _, line := range lines {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
			Update("stock", gorm.Expr("stock - ?", line.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &InsufficientStockError{ProductID: line.ProductID}
		}
	}
	return nil
}

// Release returns reserved stock on cancellation. There is no upper cap; the
// cancel path's pending-only guard is what keeps a release from running twice.
func Release(tx *gorm.DB, lines []Line) error {
	for _, line := range lines {
		if err := tx.Model(&models.Product{}).
			Where("id = ?", line.ProductID).
			Update("stock", gorm.Expr("stock + ?", line.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}
