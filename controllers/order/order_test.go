package orderControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pawmart/pawmart-api/inventory"
	"github.com/pawmart/pawmart-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Pet{}, &models.Product{},
		&models.Order{}, &models.OrderItem{},
		&models.Reward{}, &models.Transaction{}, &models.Notification{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Username: "mia", Email: fmt.Sprintf("%s@example.com", uuid.NewString())}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, stock int, price float64) models.Product {
	t.Helper()
	p := models.Product{Name: "Cat Tree", Price: price, Stock: stock, SellerID: 1}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.Stock
}

func reloadOrder(t *testing.T, db *gorm.DB, id uint) models.Order {
	t.Helper()
	var o models.Order
	require.NoError(t, db.First(&o, "id = ?", id).Error)
	return o
}

func TestCreateOrder_TotalsAndStock(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 10, 100)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID:          user.ID,
		Items:           []OrderItemInput{{ProductID: p.ID, Quantity: 2, Price: 100}},
		DiscountPercent: 10,
		PaymentMethod:   "gcash",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentMethodGCash, order.PaymentMethod)
	assert.InDelta(t, 180.0, order.TotalAmount, 0.001, "2x100 minus 10%")
	assert.Equal(t, 8, stockOf(t, db, p.ID))

	stored := reloadOrder(t, db, order.ID)
	assert.InDelta(t, 180.0, stored.TotalAmount, 0.001)

	var lines []models.OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&lines).Error)
	require.Len(t, lines, 1)
	assert.Equal(t, 100.0, lines[0].Price, "unit price snapshot")
}

func TestCreateOrder_NoDiscount(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p1 := seedProduct(t, db, 5, 50)
	p2 := seedProduct(t, db, 5, 30)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items: []OrderItemInput{
			{ProductID: p1.ID, Quantity: 2, Price: 50},
			{ProductID: p2.ID, Quantity: 1, Price: 30},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 130.0, order.TotalAmount, 0.001)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod, "empty method defaults to cod")
}

func TestCreateOrder_UnknownPaymentMethodDowngradesToCOD(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 5, 10)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID:        user.ID,
		Items:         []OrderItemInput{{ProductID: p.ID, Quantity: 1, Price: 10}},
		PaymentMethod: "paypal",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
}

func TestCreateOrder_InsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p1 := seedProduct(t, db, 5, 20)
	p2 := seedProduct(t, db, 1, 40)

	_, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items: []OrderItemInput{
			{ProductID: p1.ID, Quantity: 2, Price: 20},
			{ProductID: p2.ID, Quantity: 3, Price: 40},
		},
	})
	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, p2.ID, stockErr.ProductID)

	// Nothing may survive the rollback.
	var orderCount, lineCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&lineCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, lineCount)
	assert.Equal(t, 5, stockOf(t, db, p1.ID))
	assert.Equal(t, 1, stockOf(t, db, p2.ID))
}

func TestCreateOrder_ConsumesReward(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 5, 100)
	reward := models.Reward{UserID: user.ID, RewardType: "discount", Value: "10%"}
	require.NoError(t, db.Create(&reward).Error)

	_, err := CreateOrder(db, CreateOrderRequest{
		UserID:          user.ID,
		Items:           []OrderItemInput{{ProductID: p.ID, Quantity: 1, Price: 100}},
		DiscountPercent: 10,
		RewardID:        &reward.ID,
	})
	require.NoError(t, err)

	var got models.Reward
	require.NoError(t, db.First(&got, "id = ?", reward.ID).Error)
	assert.True(t, got.IsUsed)
	require.NotNil(t, got.UsedAt)
}

func TestCreateOrder_UnknownRewardDoesNotAbort(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 5, 100)
	missing := uint(999)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID:   user.ID,
		Items:    []OrderItemInput{{ProductID: p.ID, Quantity: 1, Price: 100}},
		RewardID: &missing,
	})
	require.NoError(t, err, "reward consumption is best-effort")
	assert.Equal(t, 4, stockOf(t, db, p.ID))
	assert.Equal(t, models.OrderStatusPending, reloadOrder(t, db, order.ID).Status)
}

func TestCancelOrder_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 10, 25)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: p.ID, Quantity: 4, Price: 25}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, stockOf(t, db, p.ID))

	require.NoError(t, CancelOrder(db, order.ID, "  changed my mind  "))

	got := reloadOrder(t, db, order.ID)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
	require.NotNil(t, got.CancellationReason)
	assert.Equal(t, "changed my mind", *got.CancellationReason, "reason is trimmed")
	assert.NotNil(t, got.CancelledAt)

	// Create plus cancel nets the stock back to where it started.
	assert.Equal(t, 10, stockOf(t, db, p.ID))
}

func TestCancelOrder_OnlyEffectiveOnce(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 10, 25)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: p.ID, Quantity: 4, Price: 25}},
	})
	require.NoError(t, err)

	require.NoError(t, CancelOrder(db, order.ID, "first"))
	assert.ErrorIs(t, CancelOrder(db, order.ID, "second"), ErrOnlyPending)

	// Stock restored exactly once, never double-credited.
	assert.Equal(t, 10, stockOf(t, db, p.ID))
}

func TestCancelOrder_Preconditions(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 10, 25)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: p.ID, Quantity: 1, Price: 25}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, CancelOrder(db, order.ID, "   "), ErrReasonRequired)
	assert.ErrorIs(t, CancelOrder(db, 999, "whatever"), ErrOrderNotFound)

	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderStatusShipped).Error)
	assert.ErrorIs(t, CancelOrder(db, order.ID, "too late"), ErrOnlyPending)
	assert.Equal(t, 9, stockOf(t, db, p.ID), "no release for a shipped order")
}

func TestUpdateOrderStatus_ReceivedAwardsCoinsOnce(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 10, 100)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: p.ID, Quantity: 2, Price: 100}},
	})
	require.NoError(t, err)

	require.NoError(t, UpdateOrderStatus(db, order.ID, models.OrderStatusReceived))
	require.NoError(t, UpdateOrderStatus(db, order.ID, models.OrderStatusReceived))

	var entries []models.Transaction
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, 20, entries[0].CoinsEarned, "floor(200 * 0.1)")
}

func TestUpdateOrderStatus_CancelledReleasesStock(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 10, 30)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: p.ID, Quantity: 3, Price: 30}},
	})
	require.NoError(t, err)
	require.Equal(t, 7, stockOf(t, db, p.ID))

	require.NoError(t, UpdateOrderStatus(db, order.ID, models.OrderStatusCancelled))
	assert.Equal(t, 10, stockOf(t, db, p.ID))
	assert.Equal(t, models.OrderStatusCancelled, reloadOrder(t, db, order.ID).Status)
}

func TestUpdateOrderStatus_UnknownOrder(t *testing.T) {
	db := newTestDB(t)
	assert.ErrorIs(t, UpdateOrderStatus(db, 404, models.OrderStatusShipped), ErrOrderNotFound)
}

func TestUpdateOrderStatusSeller_ShippedStampsAndNotifies(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 10, 60)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: p.ID, Quantity: 1, Price: 60}},
	})
	require.NoError(t, err)

	require.NoError(t, UpdateOrderStatusSeller(db, order.ID, models.OrderStatusShipped, "", true))

	got := reloadOrder(t, db, order.ID)
	assert.Equal(t, models.OrderStatusShipped, got.Status)
	assert.NotNil(t, got.DateShipped)

	var notifications []models.Notification
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Your order status has been updated to shipped", notifications[0].Notes)
	assert.False(t, notifications[0].IsRead)
}

func TestUpdateOrderStatusSeller_NotifyOptOut(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 10, 60)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: p.ID, Quantity: 1, Price: 60}},
	})
	require.NoError(t, err)

	require.NoError(t, UpdateOrderStatusSeller(db, order.ID, models.OrderStatusShipped, "", false))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateOrderStatusSeller_CancelledLeavesStockAlone(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 10, 30)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: p.ID, Quantity: 3, Price: 30}},
	})
	require.NoError(t, err)

	// The seller path does not compensate inventory.
	require.NoError(t, UpdateOrderStatusSeller(db, order.ID, models.OrderStatusCancelled, "", false))
	assert.Equal(t, 7, stockOf(t, db, p.ID))
}

func TestGetSellerOrders_FiltersBySeller(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	mine := models.Product{Name: "Leash", Price: 15, Stock: 10, SellerID: 7}
	theirs := models.Product{Name: "Bowl", Price: 9, Stock: 10, SellerID: 8}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&theirs).Error)

	_, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: mine.ID, Quantity: 1, Price: 15}},
	})
	require.NoError(t, err)
	_, err = CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: theirs.ID, Quantity: 1, Price: 9}},
	})
	require.NoError(t, err)

	orders, err := GetSellerOrders(db, 7)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, mine.ID, orders[0].Items[0].ProductID)
}

func TestCreateOrderHandler_ResponseShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 10, 100)

	r := gin.New()
	r.POST("/orders", CreateOrderHandler(db, nil))

	body, err := json.Marshal(gin.H{
		"user_id":          user.ID,
		"items":            []gin.H{{"product_id": p.ID, "quantity": 2, "price": 100}},
		"discount_percent": 10,
		"payment_method":   "maya",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, resp["orderId"], resp["order_id"])
	assert.Equal(t, "maya", resp["payment_method"])
}

func TestCreateOrderHandler_MissingItems(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	r := gin.New()
	r.POST("/orders", CreateOrderHandler(db, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte(`{"user_id": 1, "items": []}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing user_id or items")
}

func TestCancelOrderHandler_ShippedOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, 10, 25)

	order, err := CreateOrder(db, CreateOrderRequest{
		UserID: user.ID,
		Items:  []OrderItemInput{{ProductID: p.ID, Quantity: 1, Price: 25}},
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderStatusShipped).Error)

	r := gin.New()
	r.POST("/orders/cancel", CancelOrderHandler(db, nil))

	body, err := json.Marshal(gin.H{"order_id": order.ID, "reason": "late"})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders/cancel", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Only pending orders can be cancelled")
}
