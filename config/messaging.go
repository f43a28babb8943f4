package config

import (
	"strings"
	"time"
)

// MessagingConfig configures the outbound messaging API client.
type MessagingConfig struct {
	// BaseURL is the Graph-style API root; messages are posted to {BaseURL}/{phone_number_id}/messages.
	BaseURL string `env:"MESSAGING_BASE_URL" envDefault:"https://graph.facebook.com/v19.0"`

	// Timeout bounds a single delivery call.
	Timeout time.Duration `env:"MESSAGING_TIMEOUT" envDefault:"10s"`

	// ErrorPath is a JMESPath expression locating the error description in a failed response body.
	ErrorPath string `env:"MESSAGING_ERROR_PATH" envDefault:"error.message"`
}

// Sanitize applies guardrails to messaging configuration values.
func (m *MessagingConfig) Sanitize() {
	m.BaseURL = strings.TrimRight(strings.TrimSpace(m.BaseURL), "/")
	if m.Timeout <= 0 {
		m.Timeout = 10 * time.Second
	}
	if m.Timeout > 2*time.Minute {
		m.Timeout = 2 * time.Minute
	}
	m.ErrorPath = strings.TrimSpace(m.ErrorPath)
}
