package smtp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/postwave/mailkit/core/mail"
	"github.com/postwave/mailkit/pkg/async"
	"github.com/postwave/mailkit/pkg/logger"
)

// Mailer owns at most one SMTP connection and moves it through a simple
// lifecycle: Closed -> Connecting -> Connected -> Closed. The connection is
// acquired lazily on the first send (or eagerly via Open) and released by
// Close. After an explicit Close the instance must be re-opened before the
// next send; that misuse is reported with mail.ErrMailerClosed.
//
// A Mailer is safe for concurrent use: an internal mutex serializes sends,
// so no two sends ever share the connection. For parallel throughput use
// one Mailer per worker.
type Mailer struct {
	cfg  Config
	log  *slog.Logger
	dial dialFunc

	mu     sync.Mutex
	conn   transport
	closed bool
}

var _ mail.Sender = (*Mailer)(nil)

// Option customizes a Mailer.
type Option func(*Mailer)

// WithLogger sets the structured logger used for connect and send events.
func WithLogger(log *slog.Logger) Option {
	return func(m *Mailer) { m.log = log }
}

// New creates a mailer for the given configuration. The configuration is
// validated here; no connection is made until Open or the first send.
func New(cfg Config, opts ...Option) (*Mailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Mailer{
		cfg:  cfg,
		log:  slog.Default(),
		dial: dialSMTP,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("smtp"), logger.Host(cfg.Host))
	return m, nil
}

// Must creates a mailer that panics on invalid config, for use in
// initialization paths that should fail fast.
func Must(cfg Config, opts ...Option) *Mailer {
	m, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Open establishes the connection eagerly, retrying per the configured
// policy. It is the scoped-entry half of the Open/Close pair and also
// re-arms a mailer that was explicitly closed. Errors propagate to the
// caller; send paths report the same failures inside a Result instead.
func (m *Mailer) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = false
	return m.ensureConn(ctx)
}

// Close releases the connection on every exit path; callers pair it with
// Open (or the first send) via defer. It is idempotent. Subsequent sends
// fail with mail.ErrMailerClosed until Open is called again.
func (m *Mailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.conn == nil {
		return nil
	}
	err := m.conn.Quit()
	if err != nil {
		// Quit failed; tear the socket down regardless.
		err = m.conn.Close()
	}
	m.conn = nil
	if err != nil {
		m.log.Warn("error closing smtp connection", logger.Error(err))
		return err
	}
	m.log.Debug("smtp connection closed")
	return nil
}

// ensureConn connects if no connection is live. Callers hold m.mu.
func (m *Mailer) ensureConn(ctx context.Context) error {
	if m.conn != nil {
		return nil
	}

	attempt := 0
	connect := func() error {
		attempt++
		start := time.Now()
		conn, err := m.dial(ctx, m.cfg)
		if err != nil {
			m.log.Debug("smtp connect attempt failed", logger.Attempt(attempt), logger.Error(err))
			return err
		}
		if m.cfg.Username != "" {
			auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
			if err := conn.Auth(auth); err != nil {
				_ = conn.Close()
				m.log.Debug("smtp auth failed", logger.Attempt(attempt), logger.Error(err))
				return fmt.Errorf("auth: %w", err)
			}
		}
		m.conn = conn
		m.log.Info("connected to smtp server", logger.Attempt(attempt), logger.Elapsed(start))
		return nil
	}

	// Fixed delay between attempts; one initial attempt plus MaxRetries.
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.cfg.RetryDelay), uint64(m.cfg.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(connect, policy); err != nil {
		return errors.Join(mail.ErrConnectionFailed, err)
	}
	return nil
}

// resetConn drops a connection that failed mid-transaction. Callers hold m.mu.
func (m *Mailer) resetConn() {
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}

// Send delivers the message over SMTP.
//
// Validation and MIME assembly failures (including unreadable attachment
// files) happen before any network I/O and propagate as errors. Once the
// transport is involved, failures are captured in the Result with
// Success=false so callers can inspect partial acceptance; the returned
// error stays nil. Sending on an explicitly closed mailer is API misuse and
// returns mail.ErrMailerClosed.
func (m *Mailer) Send(ctx context.Context, msg *mail.Message) (*mail.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg.Normalize()
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	from := m.cfg.sender(msg.From)
	if from == "" {
		return nil, fmt.Errorf("%w: no sender address: set Config.From, Config.Username or Message.From", mail.ErrInvalidMessage)
	}

	messageID := generateMessageID(from)
	raw, err := buildMIME(msg, from, messageID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("%w: call Open to reuse this mailer", mail.ErrMailerClosed)
	}

	if err := m.ensureConn(ctx); err != nil {
		m.log.Error("smtp connection failed", logger.Error(err))
		return mail.Failure(err), nil
	}

	recipients := msg.Recipients()
	start := time.Now()
	accepted, err := m.transact(from, recipients, raw)
	if err != nil {
		// The transaction state is unknown; drop the connection so the
		// next send starts clean.
		m.resetConn()
		m.log.Error("smtp delivery failed",
			logger.Error(err),
			logger.Recipients(accepted),
			logger.Elapsed(start),
		)
		return mail.Failure(errors.Join(mail.ErrDeliveryFailed, err), accepted...), nil
	}

	m.log.Info("email sent",
		logger.MessageID(messageID),
		logger.Recipients(recipients),
		logger.Elapsed(start),
	)
	return &mail.Result{
		Success:    true,
		MessageID:  messageID,
		Recipients: recipients,
	}, nil
}

// transact runs MAIL FROM / RCPT TO / DATA on the live connection and
// returns the recipients accepted before any failure. Callers hold m.mu.
func (m *Mailer) transact(from string, recipients []string, raw []byte) ([]string, error) {
	if err := m.conn.Mail(from); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}

	accepted := make([]string, 0, len(recipients))
	for _, rcpt := range recipients {
		if err := m.conn.Rcpt(rcpt); err != nil {
			return accepted, fmt.Errorf("recipient %s rejected: %w", rcpt, err)
		}
		accepted = append(accepted, rcpt)
	}

	w, err := m.conn.Data()
	if err != nil {
		return accepted, fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return accepted, fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return accepted, fmt.Errorf("close message: %w", err)
	}
	return accepted, nil
}

// SendSimple builds a message from primitive arguments and delivers it.
func (m *Mailer) SendSimple(ctx context.Context, to []string, subject, body string, opts ...mail.MessageOption) (*mail.Result, error) {
	msg, err := mail.NewMessage(to, subject, body, opts...)
	if err != nil {
		return nil, err
	}
	return m.Send(ctx, msg)
}

// SendAsync runs the synchronous send path on its own goroutine and returns
// a future for the result. It is a dispatch of Send, not a second
// implementation, so sync and async behavior cannot drift. Cancelling the
// awaiting caller does not abort an in-flight SMTP conversation.
func (m *Mailer) SendAsync(ctx context.Context, msg *mail.Message) *async.Future[*mail.Result] {
	return async.Async(ctx, msg, m.Send)
}

// SendSimpleAsync is SendSimple dispatched through SendAsync; construction
// errors surface through the future.
func (m *Mailer) SendSimpleAsync(ctx context.Context, to []string, subject, body string, opts ...mail.MessageOption) *async.Future[*mail.Result] {
	return async.Async(ctx, to, func(ctx context.Context, to []string) (*mail.Result, error) {
		return m.SendSimple(ctx, to, subject, body, opts...)
	})
}

// Ping verifies the connection by establishing it if necessary and issuing
// a NOOP. Useful for configuration checks; errors propagate.
func (m *Mailer) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("%w: call Open to reuse this mailer", mail.ErrMailerClosed)
	}
	if err := m.ensureConn(ctx); err != nil {
		return err
	}
	if err := m.conn.Noop(); err != nil {
		m.resetConn()
		return errors.Join(mail.ErrConnectionFailed, err)
	}
	return nil
}
