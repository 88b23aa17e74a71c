package repository

import (
	"time"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindAll(status string) ([]model.Order, error)
	FindByPaymentIntentID(intentID string) (*model.Order, error)
	FindStalePending(olderThan time.Time) ([]model.Order, error)
	Update(order *model.Order) error
	UpdateStatus(id uint, status model.OrderStatus) error
	GetStats() (map[string]interface{}, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("OrderItems").Preload("User")
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id": order.UserID,
		"total":   order.Total,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
			"total":   order.Total,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.Total,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	logger.Debug("Order found by ID in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
	})
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var orders []model.Order
	if err := r.preloadOrder().Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindAll(status string) ([]model.Order, error) {
	logger.Debug("Finding all orders in database", map[string]interface{}{
		"status": status,
	})

	query := r.preloadOrder()
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []model.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to find all orders in database", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}

	logger.Debug("Orders found in database", map[string]interface{}{
		"status": status,
		"count":  len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindByPaymentIntentID(intentID string) (*model.Order, error) {
	logger.Debug("Finding order by payment intent ID in database", map[string]interface{}{
		"payment_intent_id": intentID,
	})

	var order model.Order
	if err := r.preloadOrder().Where("payment_intent_id = ?", intentID).
		First(&order).Error; err != nil {
		logger.Error("Failed to find order by payment intent ID in database", err, map[string]interface{}{
			"payment_intent_id": intentID,
		})
		return nil, err
	}

	logger.Debug("Order found by payment intent ID in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return &order, nil
}

func (r *orderRepository) FindStalePending(olderThan time.Time) ([]model.Order, error) {
	logger.Debug("Finding stale pending orders in database", map[string]interface{}{
		"older_than": olderThan,
	})

	var orders []model.Order
	if err := r.db.Where("status = ? AND created_at < ?", model.OrderStatusPending, olderThan).
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find stale pending orders in database", err, nil)
		return nil, err
	}

	logger.Debug("Stale pending orders found in database", map[string]interface{}{
		"count": len(orders),
	})
	return orders, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
	})

	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
			"user_id":  order.UserID,
		})
		return err
	}

	logger.Debug("Order updated in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
	})
	return nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("status", status).Error; err != nil {
		logger.Error("Failed to update order status in database", err, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return err
	}

	logger.Debug("Order status updated in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})
	return nil
}

func (r *orderRepository) GetStats() (map[string]interface{}, error) {
	logger.Debug("Getting order statistics in database", nil)

	var totalOrders int64
	if err := r.db.Model(&model.Order{}).Count(&totalOrders).Error; err != nil {
		logger.Error("Failed to count total orders", err, nil)
		return nil, err
	}

	statusCounts := []struct {
		Status model.OrderStatus
		Count  int64
	}{}
	if err := r.db.Model(&model.Order{}).
		Select("orders.status, COUNT(orders.id) as count").
		Group("orders.status").
		Scan(&statusCounts).Error; err != nil {
		logger.Error("Failed to count orders by status", err, nil)
		return nil, err
	}

	var pendingOrders, failedOrders, paidOrders, deliveredOrders, canceledOrders int64
	for _, sc := range statusCounts {
		switch sc.Status {
		case model.OrderStatusPending:
			pendingOrders = sc.Count
		case model.OrderStatusFailed:
			failedOrders = sc.Count
		case model.OrderStatusPaid:
			paidOrders = sc.Count
		case model.OrderStatusDelivered:
			deliveredOrders = sc.Count
		case model.OrderStatusCanceled:
			canceledOrders = sc.Count
		}
	}

	// Revenue counts only orders that reached paid or delivered
	var revenueResult struct {
		TotalRevenue float64
	}
	if err := r.db.Model(&model.Order{}).
		Select("COALESCE(SUM(orders.total), 0) as total_revenue").
		Where("orders.status IN ?", []model.OrderStatus{model.OrderStatusPaid, model.OrderStatusDelivered}).
		Scan(&revenueResult).Error; err != nil {
		logger.Error("Failed to calculate total revenue", err, nil)
		return nil, err
	}

	stats := map[string]interface{}{
		"total_orders":     totalOrders,
		"pending_orders":   pendingOrders,
		"failed_orders":    failedOrders,
		"paid_orders":      paidOrders,
		"delivered_orders": deliveredOrders,
		"canceled_orders":  canceledOrders,
		"total_revenue":    revenueResult.TotalRevenue,
	}

	logger.Debug("Order statistics retrieved in database", map[string]interface{}{
		"total_orders":  totalOrders,
		"total_revenue": revenueResult.TotalRevenue,
	})

	return stats, nil
}
