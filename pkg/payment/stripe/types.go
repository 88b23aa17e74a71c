package stripe

import "fmt"

// Payment intent statuses returned by the Stripe API.
const (
	IntentStatusRequiresPaymentMethod = "requires_payment_method"
	IntentStatusRequiresConfirmation  = "requires_confirmation"
	IntentStatusRequiresAction        = "requires_action"
	IntentStatusProcessing            = "processing"
	IntentStatusSucceeded             = "succeeded"
	IntentStatusCanceled              = "canceled"
)

// CreateIntentRequest represents the parameters for creating a payment intent.
// Amount is in the smallest currency unit (cents for USD).
type CreateIntentRequest struct {
	Amount      int64
	Currency    string
	Description string
	Metadata    map[string]string
}

// PaymentIntent represents a Stripe payment intent object
type PaymentIntent struct {
	ID           string            `json:"id"`
	Object       string            `json:"object"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	ClientSecret string            `json:"client_secret"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
	Created      int64             `json:"created"`
}

// Succeeded reports whether the intent has been paid.
func (p *PaymentIntent) Succeeded() bool {
	return p.Status == IntentStatusSucceeded
}

// ErrorDetail represents the error object inside a Stripe error response
type ErrorDetail struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// ErrorResponse represents an error response from the Stripe API
type ErrorResponse struct {
	ErrorDetail ErrorDetail `json:"error"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("stripe error: type=%s, code=%s, msg=%s",
		e.ErrorDetail.Type, e.ErrorDetail.Code, e.ErrorDetail.Message)
}
