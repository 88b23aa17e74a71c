package paypal

import "fmt"

// Order statuses returned by the PayPal Orders API.
const (
	OrderStatusCreated   = "CREATED"
	OrderStatusApproved  = "APPROVED"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusVoided    = "VOIDED"
)

// AccessTokenResponse represents the OAuth token response
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Money represents a PayPal amount with its currency code
type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// PurchaseUnit represents a single purchase unit of a PayPal order
type PurchaseUnit struct {
	ReferenceID string `json:"reference_id,omitempty"`
	Amount      Money  `json:"amount"`
}

// Order represents a PayPal order object
type Order struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Intent        string         `json:"intent,omitempty"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
	CreateTime    string         `json:"create_time,omitempty"`
	UpdateTime    string         `json:"update_time,omitempty"`
}

// Completed reports whether the order has been captured.
func (o *Order) Completed() bool {
	return o.Status == OrderStatusCompleted
}

// ErrorResponse represents an error response from the PayPal API
type ErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	DebugID string `json:"debug_id,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("paypal error: name=%s, msg=%s", e.Name, e.Message)
}
