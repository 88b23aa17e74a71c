package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dkwon/comfystore-backend/config"
	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/app/repository"
	"github.com/dkwon/comfystore-backend/pkg/logger"
	"github.com/dkwon/comfystore-backend/pkg/payment/paypal"
	"github.com/dkwon/comfystore-backend/pkg/payment/stripe"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPaymentAlreadyProcessed = errors.New("payment already processed")
	ErrInvalidPaymentAmount    = errors.New("invalid payment amount")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentNotCompleted     = errors.New("payment not completed")
	ErrPaymentAmountMismatch   = errors.New("payment amount does not match order total")
)

// StripeInitResponse carries what the client needs to confirm a payment
// intent.
type StripeInitResponse struct {
	PaymentIntentID string  `json:"payment_intent_id"`
	ClientSecret    string  `json:"client_secret"`
	Amount          float64 `json:"amount"`
	SuccessURL      string  `json:"success_url"`
	CancelURL       string  `json:"cancel_url"`
}

// PaymentService defines the payment service interface
type PaymentService interface {
	InitStripePayment(ctx context.Context, userID, orderID uint) (*StripeInitResponse, error)
	CompleteStripePayment(ctx context.Context, paymentIntentID string) (*model.Order, error)
	CompletePayPalPayment(ctx context.Context, userID, orderID uint, paypalOrderID string) (*model.Order, error)
	GetPaymentStatus(userID, orderID uint) (*model.Order, error)
}

type paymentService struct {
	orderRepo    repository.OrderRepository
	orderService OrderService
	stripeClient *stripe.Client
	paypalClient *paypal.Client
	db           *gorm.DB
}

// NewPaymentService creates a new payment service. The PayPal client is
// optional: without credentials, PayPal confirmations are accepted as
// reported by the storefront.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	orderService OrderService,
	cfg *config.Config,
	db *gorm.DB,
) (PaymentService, error) {
	stripeConfig := stripe.Config{
		SecretKey:  cfg.Payment.Stripe.SecretKey,
		BaseURL:    cfg.Payment.Stripe.BaseURL,
		SuccessURL: cfg.Payment.Stripe.SuccessURL,
		CancelURL:  cfg.Payment.Stripe.CancelURL,
	}

	stripeClient, err := stripe.NewClient(stripeConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe client: %w", err)
	}

	var paypalClient *paypal.Client
	if cfg.Payment.PayPal.ClientID != "" {
		paypalClient, err = paypal.NewClient(paypal.Config{
			ClientID: cfg.Payment.PayPal.ClientID,
			Secret:   cfg.Payment.PayPal.Secret,
			BaseURL:  cfg.Payment.PayPal.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create paypal client: %w", err)
		}
	}

	return &paymentService{
		orderRepo:    orderRepo,
		orderService: orderService,
		stripeClient: stripeClient,
		paypalClient: paypalClient,
		db:           db,
	}, nil
}

// toCents converts an order amount to the smallest currency unit.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// InitStripePayment creates a payment intent for an order and stores its
// ID on the order.
func (s *paymentService) InitStripePayment(ctx context.Context, userID, orderID uint) (*StripeInitResponse, error) {
	log := logger.Get()

	// Lock the order to prevent concurrent payment initiation
	var order model.Order
	if err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.Status == model.OrderStatusPaid {
		return nil, ErrPaymentAlreadyProcessed
	}
	if order.IsTerminal() {
		return nil, ErrInvalidStatusTransition
	}

	if order.Total <= 0 {
		return nil, ErrInvalidPaymentAmount
	}

	// Reuse the existing intent on retry instead of creating a new one
	if order.PaymentIntentID != "" && order.PaymentProvider == "stripe" {
		intent, err := s.stripeClient.RetrievePaymentIntent(ctx, order.PaymentIntentID)
		if err == nil && !intent.Succeeded() {
			return &StripeInitResponse{
				PaymentIntentID: intent.ID,
				ClientSecret:    intent.ClientSecret,
				Amount:          order.Total,
				SuccessURL:      s.stripeClient.GetConfig().SuccessURL,
				CancelURL:       s.stripeClient.GetConfig().CancelURL,
			}, nil
		}
	}

	req := stripe.CreateIntentRequest{
		Amount:      toCents(order.Total),
		Currency:    "usd",
		Description: fmt.Sprintf("ComfyStore order #%d", order.ID),
		Metadata: map[string]string{
			"order_id": strconv.FormatUint(uint64(order.ID), 10),
		},
	}

	intent, err := s.stripeClient.CreatePaymentIntent(ctx, req)
	if err != nil {
		log.Error("Failed to create stripe payment intent", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}

	order.PaymentIntentID = intent.ID
	order.PaymentProvider = "stripe"

	if err := s.db.Save(&order).Error; err != nil {
		log.Error("Failed to update order with payment info", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	log.Info("Stripe payment initiated", map[string]interface{}{
		"order_id":          orderID,
		"payment_intent_id": intent.ID,
		"amount":            intent.Amount,
	})

	return &StripeInitResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          order.Total,
		SuccessURL:      s.stripeClient.GetConfig().SuccessURL,
		CancelURL:       s.stripeClient.GetConfig().CancelURL,
	}, nil
}

// CompleteStripePayment verifies a payment intent with Stripe and marks
// the matching order paid. The intent status and amount are checked
// against Stripe's record, never against what the storefront reports.
func (s *paymentService) CompleteStripePayment(ctx context.Context, paymentIntentID string) (*model.Order, error) {
	log := logger.Get()

	intent, err := s.stripeClient.RetrievePaymentIntent(ctx, paymentIntentID)
	if err != nil {
		if errors.Is(err, stripe.ErrIntentNotFound) {
			return nil, ErrPaymentNotFound
		}
		log.Error("Failed to retrieve stripe payment intent", err, map[string]interface{}{
			"payment_intent_id": paymentIntentID,
		})
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}

	if !intent.Succeeded() {
		log.Warn("Stripe payment intent not succeeded", map[string]interface{}{
			"payment_intent_id": paymentIntentID,
			"status":            intent.Status,
		})
		return nil, ErrPaymentNotCompleted
	}

	order, err := s.resolveOrderForIntent(intent)
	if err != nil {
		return nil, err
	}

	if order.Status == model.OrderStatusPaid {
		return order, nil
	}

	if intent.Amount != toCents(order.Total) {
		log.Warn("Stripe payment amount mismatch", map[string]interface{}{
			"order_id":      order.ID,
			"intent_amount": intent.Amount,
			"order_total":   order.Total,
		})
		return nil, ErrPaymentAmountMismatch
	}

	paid, err := s.orderService.MarkPaid(order.ID, "stripe", intent.ID)
	if err != nil {
		return nil, err
	}

	log.Info("Stripe payment completed", map[string]interface{}{
		"order_id":          order.ID,
		"payment_intent_id": intent.ID,
	})
	return paid, nil
}

// resolveOrderForIntent finds the order a payment intent belongs to, first
// by the order_id metadata and then by the stored intent ID.
func (s *paymentService) resolveOrderForIntent(intent *stripe.PaymentIntent) (*model.Order, error) {
	if raw, ok := intent.Metadata["order_id"]; ok {
		orderID, err := strconv.ParseUint(raw, 10, 64)
		if err == nil {
			order, err := s.orderRepo.FindByID(uint(orderID))
			if err == nil {
				return order, nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
	}

	order, err := s.orderRepo.FindByPaymentIntentID(intent.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// CompletePayPalPayment records a PayPal payment for an order. When a
// PayPal client is configured the capture is verified against PayPal's
// record, including the paid amount.
func (s *paymentService) CompletePayPalPayment(ctx context.Context, userID, orderID uint, paypalOrderID string) (*model.Order, error) {
	log := logger.Get()

	if paypalOrderID == "" {
		return nil, ErrPaymentNotFound
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	if order.Status == model.OrderStatusPaid {
		return order, nil
	}

	if s.paypalClient != nil {
		paypalOrder, err := s.paypalClient.GetOrder(ctx, paypalOrderID)
		if err != nil {
			if errors.Is(err, paypal.ErrOrderNotFound) {
				return nil, ErrPaymentNotFound
			}
			log.Error("Failed to verify paypal order", err, map[string]interface{}{
				"order_id":        orderID,
				"paypal_order_id": paypalOrderID,
			})
			return nil, fmt.Errorf("failed to verify payment: %w", err)
		}

		if paypalOrder.Status == paypal.OrderStatusApproved {
			paypalOrder, err = s.paypalClient.CaptureOrder(ctx, paypalOrderID)
			if err != nil {
				log.Error("Failed to capture paypal order", err, map[string]interface{}{
					"order_id":        orderID,
					"paypal_order_id": paypalOrderID,
				})
				return nil, fmt.Errorf("failed to capture payment: %w", err)
			}
		}

		if !paypalOrder.Completed() {
			log.Warn("PayPal order not completed", map[string]interface{}{
				"order_id":        orderID,
				"paypal_order_id": paypalOrderID,
				"status":          paypalOrder.Status,
			})
			return nil, ErrPaymentNotCompleted
		}

		if err := verifyPayPalAmount(paypalOrder, order.Total); err != nil {
			log.Warn("PayPal payment amount mismatch", map[string]interface{}{
				"order_id":        orderID,
				"paypal_order_id": paypalOrderID,
				"order_total":     order.Total,
			})
			return nil, err
		}
	}

	paid, err := s.orderService.MarkPaid(order.ID, "paypal", paypalOrderID)
	if err != nil {
		return nil, err
	}

	log.Info("PayPal payment completed", map[string]interface{}{
		"order_id":        order.ID,
		"paypal_order_id": paypalOrderID,
	})
	return paid, nil
}

func verifyPayPalAmount(paypalOrder *paypal.Order, orderTotal float64) error {
	if len(paypalOrder.PurchaseUnits) == 0 {
		return ErrPaymentAmountMismatch
	}

	paid, err := strconv.ParseFloat(paypalOrder.PurchaseUnits[0].Amount.Value, 64)
	if err != nil {
		return ErrPaymentAmountMismatch
	}

	if toCents(paid) != toCents(orderTotal) {
		return ErrPaymentAmountMismatch
	}
	return nil
}

// GetPaymentStatus retrieves the payment state of a user's order
func (s *paymentService) GetPaymentStatus(userID, orderID uint) (*model.Order, error) {
	var order model.Order
	if err := s.db.Preload("OrderItems").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}
