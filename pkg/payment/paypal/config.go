package paypal

// Config represents the configuration for the PayPal client
type Config struct {
	// ClientID is the PayPal REST API client ID
	ClientID string

	// Secret is the PayPal REST API client secret
	Secret string

	// BaseURL is the PayPal API base URL (sandbox or live)
	BaseURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return ErrInvalidRequest
	}
	if c.Secret == "" {
		return ErrInvalidRequest
	}
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	return nil
}
