// Package smtp implements the mail.Sender interface over plain SMTP with
// STARTTLS, implicit TLS and unencrypted modes, connection reuse with a
// scoped Open/Close lifecycle, and fixed-delay connection retries.
//
// Basic usage:
//
//	cfg := smtp.Config{
//		Host:     "smtp.example.com",
//		Port:     587,
//		Username: "noreply@example.com",
//		Password: "app-password",
//		UseTLS:   true,
//	}
//
//	mailer, err := smtp.New(cfg)
//	if err != nil {
//		// invalid configuration
//	}
//	if err := mailer.Open(ctx); err != nil {
//		// handshake, TLS or auth failure after the configured retries
//	}
//	defer mailer.Close()
//
//	msg, _ := mail.NewMessage([]string{"user@example.com"}, "Hi", "hello")
//	res, err := mailer.Send(ctx, msg)
//
// Open is optional: the first send connects lazily. After an explicit Close
// the mailer must be re-opened; sending on a closed mailer returns
// mail.ErrMailerClosed.
//
// Error reporting follows the mail.Sender contract: validation and MIME
// assembly failures return errors before any network I/O, transport-phase
// failures come back inside the Result. Connection attempts retry up to
// Config.MaxRetries with a fixed Config.RetryDelay between attempts;
// delivery failures are never retried automatically.
//
// For one-shot sends, SendQuick wraps construction, the send and the close:
//
//	res, err := smtp.SendQuick(ctx, cfg, []string{"user@example.com"}, "Hi", "hello")
//
// Asynchronous variants dispatch the same synchronous path onto a goroutine
// and return a future:
//
//	future := mailer.SendAsync(ctx, msg)
//	res, err := future.Await()
//
// Each Mailer owns a single connection; sends on one instance are
// serialized internally. Concurrent async sends on a shared instance are
// safe but take turns; use one Mailer per worker for parallel delivery.
package smtp
