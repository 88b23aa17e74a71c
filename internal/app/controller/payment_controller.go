package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dkwon/comfystore-backend/internal/app/service"
	"github.com/dkwon/comfystore-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	paymentService service.PaymentService
}

func NewPaymentController(paymentService service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// CreateStripeIntentRequest represents the request to start a Stripe payment
type CreateStripeIntentRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// CompleteStripeRequest represents the storefront's confirmation callback
type CompleteStripeRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

// CompletePayPalRequest represents a PayPal confirmation from the storefront
type CompletePayPalRequest struct {
	OrderID       uint   `json:"order_id" binding:"required"`
	PayPalOrderID string `json:"paypal_order_id" binding:"required"`
}

// CreateStripeIntent starts a Stripe payment for an order
// POST /api/v1/payments/stripe/intent
func (ctrl *PaymentController) CreateStripeIntent(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized access to payment initiation", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req CreateStripeIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	resp, err := ctrl.paymentService.InitStripePayment(c.Request.Context(), userID, req.OrderID)
	if err != nil {
		log.Error("Failed to initiate payment", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": req.OrderID,
		})

		status := http.StatusInternalServerError
		message := "Failed to initiate payment"

		if errors.Is(err, service.ErrOrderNotFound) {
			status = http.StatusNotFound
			message = "Order not found"
		} else if errors.Is(err, service.ErrPaymentAlreadyProcessed) {
			status = http.StatusConflict
			message = "Payment already processed"
		} else if errors.Is(err, service.ErrInvalidStatusTransition) {
			status = http.StatusConflict
			message = "Order can no longer be paid"
		} else if errors.Is(err, service.ErrInvalidPaymentAmount) {
			status = http.StatusBadRequest
			message = "Invalid payment amount"
		}

		c.JSON(status, gin.H{
			"error": message,
		})
		return
	}

	log.Info("Stripe payment initiated successfully", map[string]interface{}{
		"user_id":           userID,
		"order_id":          req.OrderID,
		"payment_intent_id": resp.PaymentIntentID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment initiated successfully",
		"data":    resp,
	})
}

// CompleteStripePayment confirms a Stripe payment after the storefront
// redirect. Accepts the intent ID as JSON or as the payment_intent query
// parameter Stripe appends to the return URL.
// POST /api/v1/payments/stripe/complete
func (ctrl *PaymentController) CompleteStripePayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	intentID := c.Query("payment_intent")
	if intentID == "" {
		var req CompleteStripeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Warn("Missing payment intent ID", map[string]interface{}{
				"error": err.Error(),
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Missing payment intent ID",
			})
			return
		}
		intentID = req.PaymentIntentID
	}

	order, err := ctrl.paymentService.CompleteStripePayment(c.Request.Context(), intentID)
	if err != nil {
		log.Error("Failed to complete stripe payment", err, map[string]interface{}{
			"payment_intent_id": intentID,
		})

		status := http.StatusInternalServerError
		message := "Failed to complete payment"

		if errors.Is(err, service.ErrPaymentNotFound) || errors.Is(err, service.ErrOrderNotFound) {
			status = http.StatusNotFound
			message = "Payment not found"
		} else if errors.Is(err, service.ErrPaymentNotCompleted) {
			status = http.StatusBadRequest
			message = "Payment has not been completed"
		} else if errors.Is(err, service.ErrPaymentAmountMismatch) {
			status = http.StatusConflict
			message = "Payment amount does not match the order"
		}

		c.JSON(status, gin.H{
			"error": message,
		})
		return
	}

	log.Info("Stripe payment completed", map[string]interface{}{
		"order_id":          order.ID,
		"payment_intent_id": intentID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment completed successfully",
		"order":   order,
	})
}

// CompletePayPalPayment records a PayPal payment for an order
// POST /api/v1/payments/paypal/complete
func (ctrl *PaymentController) CompletePayPalPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized access to payment completion", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req CompletePayPalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	order, err := ctrl.paymentService.CompletePayPalPayment(c.Request.Context(), userID, req.OrderID, req.PayPalOrderID)
	if err != nil {
		log.Error("Failed to complete paypal payment", err, map[string]interface{}{
			"user_id":         userID,
			"order_id":        req.OrderID,
			"paypal_order_id": req.PayPalOrderID,
		})

		status := http.StatusInternalServerError
		message := "Failed to complete payment"

		if errors.Is(err, service.ErrOrderNotFound) {
			status = http.StatusNotFound
			message = "Order not found"
		} else if errors.Is(err, service.ErrPaymentNotFound) {
			status = http.StatusNotFound
			message = "Payment not found"
		} else if errors.Is(err, service.ErrPaymentNotCompleted) {
			status = http.StatusBadRequest
			message = "Payment has not been completed"
		} else if errors.Is(err, service.ErrPaymentAmountMismatch) {
			status = http.StatusConflict
			message = "Payment amount does not match the order"
		}

		c.JSON(status, gin.H{
			"error": message,
		})
		return
	}

	log.Info("PayPal payment completed", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment completed successfully",
		"order":   order,
	})
}

// GetPaymentStatus returns the payment state of an order
// GET /api/v1/payments/orders/:id
func (ctrl *PaymentController) GetPaymentStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	order, err := ctrl.paymentService.GetPaymentStatus(userID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		log.Error("Failed to fetch payment status", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch payment status",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":          order.ID,
		"status":            order.Status,
		"payment_provider":  order.PaymentProvider,
		"payment_intent_id": order.PaymentIntentID,
		"paid_at":           order.PaidAt,
		"total":             order.Total,
	})
}
