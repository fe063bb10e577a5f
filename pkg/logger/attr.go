package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without
// explicit nil checks.

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors, enabling safe usage without nil checks.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Attempt creates an attribute for connection retry attempts.
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Host creates an attribute for the mail server host.
func Host(host string) slog.Attr {
	return slog.String("host", host)
}

// MessageID creates an attribute for generated Message-ID values.
func MessageID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("message_id", id)
}

// Recipients logs the recipient count rather than the addresses, keeping
// personal data out of log streams.
func Recipients(addrs []string) slog.Attr {
	return slog.Int("recipients", len(addrs))
}
