package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
)

// transport is the slice of the SMTP conversation the mailer drives. The
// production implementation wraps net/smtp.Client; tests inject a recording
// stub so envelope and header handling can be verified without a server.
type transport interface {
	Auth(auth smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Noop() error
	Quit() error
	Close() error
}

// dialFunc opens a transport according to the config's TLS mode.
type dialFunc func(ctx context.Context, cfg Config) (transport, error)

// dialSMTP is the production dialer: plain TCP, optionally upgraded with
// STARTTLS, or an implicit-TLS connection when UseSSL is set.
func dialSMTP(ctx context.Context, cfg Config) (transport, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dialer := &net.Dialer{Timeout: cfg.Timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	if cfg.UseSSL {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: cfg.Host})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("tls handshake: %w", err)
		}
		conn = tlsConn
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}

	if cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}

	return client, nil
}
