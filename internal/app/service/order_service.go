package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/app/repository"
	"github.com/dkwon/comfystore-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrMissingCharges          = errors.New("tax and shipping fee are required")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrUnknownOrderStatus      = errors.New("unknown order status")
)

// statusTransitions defines the forward-only order lifecycle. Delivered
// and canceled are terminal.
var statusTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:   {model.OrderStatusPaid, model.OrderStatusFailed, model.OrderStatusCanceled},
	model.OrderStatusFailed:    {model.OrderStatusPending, model.OrderStatusCanceled},
	model.OrderStatusPaid:      {model.OrderStatusDelivered},
	model.OrderStatusDelivered: {},
	model.OrderStatusCanceled:  {},
}

func canTransition(from, to model.OrderStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type OrderService interface {
	Checkout(userID uint, tax, shippingFee float64) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID uint, role model.UserRole, orderID uint) (*model.Order, error)
	GetAllOrders(status string) ([]model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
	MarkPaid(orderID uint, provider, paymentRef string) (*model.Order, error)
	MarkFailed(orderID uint) error
	ExpireStalePendingOrders(maxAge time.Duration) (int, error)
	GetOrderStats() (map[string]interface{}, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	db        *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		db:        db,
	}
}

// Checkout turns the user's cart into a pending order. Each product is
// re-read under lock so the order captures the catalog's current name and
// price, not the possibly stale cart snapshot. Order creation and cart
// clearing commit together.
func (s *orderService) Checkout(userID uint, tax, shippingFee float64) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id":      userID,
		"tax":          tax,
		"shipping_fee": shippingFee,
	})

	if tax <= 0 || shippingFee <= 0 {
		logger.Warn("Checkout rejected: missing charges", map[string]interface{}{
			"user_id":      userID,
			"tax":          tax,
			"shipping_fee": shippingFee,
		})
		return nil, ErrMissingCharges
	}

	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if len(cartItems) == 0 {
		logger.Warn("Cannot create order: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	logger.Debug("Processing cart items for order", map[string]interface{}{
		"user_id":    userID,
		"item_count": len(cartItems),
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var (
		subtotal   float64
		orderItems []model.OrderItem
	)

	for _, cartItem := range cartItems {
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, cartItem.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product not found during order creation", map[string]interface{}{
					"user_id":    userID,
					"product_id": cartItem.ProductID,
				})
				return nil, ErrProductNotFound
			}
			logger.Error("Failed to fetch product during order creation", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
			})
			return nil, err
		}

		orderItems = append(orderItems, model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			Price:     product.Price,
			Quantity:  cartItem.Quantity,
		})
		subtotal += product.Price * float64(cartItem.Quantity)
	}

	order := &model.Order{
		UserID:      userID,
		Subtotal:    subtotal,
		Tax:         tax,
		ShippingFee: shippingFee,
		Total:       subtotal + tax + shippingFee,
		Status:      model.OrderStatusPending,
		OrderItems:  orderItems,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id":  userID,
			"subtotal": subtotal,
		})
		return nil, err
	}

	if err := tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart after order creation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"user_id":    userID,
		"order_id":   order.ID,
		"total":      order.Total,
		"item_count": len(orderItems),
	})

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	logger.Debug("Fetching user orders", map[string]interface{}{
		"user_id": userID,
	})

	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User orders fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (s *orderService) GetOrderByID(userID uint, role model.UserRole, orderID uint) (*model.Order, error) {
	logger.Debug("Fetching order by ID", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order not found", map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, err
	}

	// A user only sees their own orders; whether the order exists at all
	// is not revealed
	if order.UserID != userID && role != model.RoleAdmin {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderNotFound
	}

	logger.Debug("Order fetched successfully", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
		"status":   order.Status,
	})
	return order, nil
}

func (s *orderService) GetAllOrders(status string) ([]model.Order, error) {
	logger.Debug("Fetching all orders", map[string]interface{}{
		"status": status,
	})

	if status != "" {
		switch model.OrderStatus(status) {
		case model.OrderStatusPending, model.OrderStatusFailed, model.OrderStatusPaid,
			model.OrderStatusDelivered, model.OrderStatusCanceled:
		default:
			return nil, ErrUnknownOrderStatus
		}
	}

	return s.orderRepo.FindAll(status)
}

// UpdateOrderStatus moves an order along its lifecycle. Only forward
// transitions are allowed; delivered and canceled orders cannot change.
func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id":   orderID,
		"new_status": status,
	})

	switch status {
	case model.OrderStatusPending, model.OrderStatusFailed, model.OrderStatusPaid,
		model.OrderStatusDelivered, model.OrderStatusCanceled:
	default:
		return nil, ErrUnknownOrderStatus
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order for status update", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if order.Status == status {
		return order, nil
	}

	if !canTransition(order.Status, status) {
		logger.Warn("Order status transition rejected", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidStatusTransition
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id":   orderID,
			"new_status": status,
		})
		return nil, err
	}

	logger.Info("Order status updated successfully", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return s.orderRepo.FindByID(orderID)
}

// MarkPaid records a successful payment. Marking an already paid order is
// a no-op so duplicate provider callbacks stay harmless.
func (s *orderService) MarkPaid(orderID uint, provider, paymentRef string) (*model.Order, error) {
	logger.Info("Marking order paid", map[string]interface{}{
		"order_id": orderID,
		"provider": provider,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order for payment", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if order.Status == model.OrderStatusPaid {
		logger.Debug("Order already paid, ignoring duplicate confirmation", map[string]interface{}{
			"order_id": orderID,
		})
		return order, nil
	}

	if !canTransition(order.Status, model.OrderStatusPaid) {
		logger.Warn("Cannot mark order paid from current status", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrInvalidStatusTransition
	}

	now := time.Now()
	order.Status = model.OrderStatusPaid
	order.PaymentProvider = provider
	order.PaymentIntentID = paymentRef
	order.PaidAt = &now

	if err := s.orderRepo.Update(order); err != nil {
		logger.Error("Failed to mark order paid", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	logger.Info("Order marked paid", map[string]interface{}{
		"order_id": orderID,
		"provider": provider,
	})
	return order, nil
}

func (s *orderService) MarkFailed(orderID uint) error {
	logger.Info("Marking order failed", map[string]interface{}{
		"order_id": orderID,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if order.Status == model.OrderStatusFailed {
		return nil
	}

	if !canTransition(order.Status, model.OrderStatusFailed) {
		return ErrInvalidStatusTransition
	}

	return s.orderRepo.UpdateStatus(orderID, model.OrderStatusFailed)
}

// ExpireStalePendingOrders cancels pending orders older than maxAge.
// Run from the scheduler.
func (s *orderService) ExpireStalePendingOrders(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)

	logger.Info("Expiring stale pending orders", map[string]interface{}{
		"cutoff": cutoff,
	})

	orders, err := s.orderRepo.FindStalePending(cutoff)
	if err != nil {
		logger.Error("Failed to find stale pending orders", err, nil)
		return 0, err
	}

	expired := 0
	for _, order := range orders {
		if err := s.orderRepo.UpdateStatus(order.ID, model.OrderStatusCanceled); err != nil {
			logger.Error("Failed to cancel stale pending order", err, map[string]interface{}{
				"order_id": order.ID,
			})
			continue
		}
		expired++
	}

	logger.Info("Stale pending orders expired", map[string]interface{}{
		"expired": expired,
	})
	return expired, nil
}

func (s *orderService) GetOrderStats() (map[string]interface{}, error) {
	return s.orderRepo.GetStats()
}
