package smtp

import (
	"context"

	"github.com/postwave/mailkit/core/mail"
)

// SendQuick opens a connection, sends exactly one message and closes the
// connection again: a single scoped use of a Mailer for callers that don't
// want to manage one.
func SendQuick(ctx context.Context, cfg Config, to []string, subject, body string, opts ...mail.MessageOption) (*mail.Result, error) {
	m, err := New(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = m.Close() }()

	return m.SendSimple(ctx, to, subject, body, opts...)
}
