package smtp

import (
	"fmt"
	"time"

	"github.com/postwave/mailkit/core/mail"
)

// Config holds SMTP connection parameters and send policy knobs. It is a
// value object: the mailer keeps its own copy, so a Config is effectively
// immutable after construction.
type Config struct {
	Host     string `env:"SMTP_SERVER,required"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	// UseTLS upgrades the connection with STARTTLS after the initial
	// handshake (submission port 587). Mutually exclusive with UseSSL.
	UseTLS bool `env:"SMTP_USE_TLS" envDefault:"true"`
	// UseSSL dials with implicit TLS (port 465).
	UseSSL bool `env:"SMTP_USE_SSL" envDefault:"false"`
	// From is the default sender address; falls back to Username when empty.
	From       string        `env:"SMTP_FROM"`
	Timeout    time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	MaxRetries int           `env:"SMTP_MAX_RETRIES" envDefault:"3"`
	// RetryDelay is the fixed pause between connection attempts.
	RetryDelay time.Duration `env:"SMTP_RETRY_DELAY" envDefault:"500ms"`
}

// Validate rejects configurations the mailer cannot operate with.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: Host is required", mail.ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: Port must be between 1 and 65535", mail.ErrInvalidConfig)
	}
	if c.UseTLS && c.UseSSL {
		return fmt.Errorf("%w: UseTLS and UseSSL are mutually exclusive", mail.ErrInvalidConfig)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: MaxRetries must not be negative", mail.ErrInvalidConfig)
	}
	if c.From != "" && !mail.IsValidAddress(c.From) {
		return fmt.Errorf("%w: From must be a valid email address", mail.ErrInvalidConfig)
	}
	return nil
}

// sender returns the effective envelope sender for a message.
func (c Config) sender(msgFrom string) string {
	switch {
	case msgFrom != "":
		return msgFrom
	case c.From != "":
		return c.From
	default:
		return c.Username
	}
}
