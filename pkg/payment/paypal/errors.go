package paypal

import "errors"

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrPaymentFailed is returned when the payment process fails
	ErrPaymentFailed = errors.New("payment failed")

	// ErrOrderNotFound is returned when the PayPal order does not exist
	ErrOrderNotFound = errors.New("paypal order not found")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the API credentials are invalid
	ErrUnauthorized = errors.New("unauthorized: invalid API credentials")
)
