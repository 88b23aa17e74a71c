package stripe

// Config represents the configuration for the Stripe client
type Config struct {
	// SecretKey is the Stripe secret API key
	SecretKey string

	// BaseURL is the Stripe API base URL
	BaseURL string

	// SuccessURL is the redirect URL after a completed payment
	SuccessURL string

	// CancelURL is the redirect URL after an abandoned payment
	CancelURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrInvalidRequest
	}
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	if c.SuccessURL == "" {
		return ErrInvalidRequest
	}
	return nil
}
