package postmark

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/postwave/mailkit/core/mail"
)

// Config holds Postmark API credentials and sending defaults.
type Config struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN,required"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN,required"`
	// From is the default sender; Postmark requires a verified signature.
	From string `env:"POSTMARK_FROM,required"`
	// TrackOpens enables open tracking for sent messages.
	TrackOpens bool `env:"POSTMARK_TRACK_OPENS" envDefault:"false"`
}

// Validate rejects configurations the client cannot operate with.
func (c Config) Validate() error {
	if c.ServerToken == "" {
		return fmt.Errorf("%w: ServerToken is required", mail.ErrInvalidConfig)
	}
	if c.AccountToken == "" {
		return fmt.Errorf("%w: AccountToken is required", mail.ErrInvalidConfig)
	}
	if c.From == "" || !mail.IsValidAddress(c.From) {
		return fmt.Errorf("%w: From must be a valid email address", mail.ErrInvalidConfig)
	}
	return nil
}

// api is the slice of the Postmark client used here, separated so tests can
// stub the HTTP layer.
type api interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// Client implements the mail.Sender interface on top of Postmark's
// transactional email API.
type Client struct {
	api api
	cfg Config
}

var _ mail.Sender = (*Client)(nil)

// New creates a Postmark-backed sender.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		api: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		cfg: cfg,
	}, nil
}

// Must creates a Postmark client that panics on invalid config, for
// initialization paths that should fail fast.
func Must(cfg Config) *Client {
	client, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Send delivers the message through the Postmark API. The same contract as
// the SMTP mailer applies: validation and attachment-read failures return
// errors before any network I/O, API failures are captured in the Result.
func (c *Client) Send(ctx context.Context, msg *mail.Message) (*mail.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg.Normalize()
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	email, err := c.buildEmail(msg)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.SendEmail(ctx, email)
	if err != nil {
		return mail.Failure(errors.Join(mail.ErrDeliveryFailed, err)), nil
	}
	if resp.ErrorCode > 0 {
		return mail.Failure(errors.Join(
			mail.ErrDeliveryFailed,
			fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message),
		)), nil
	}

	return &mail.Result{
		Success:    true,
		MessageID:  resp.MessageID,
		Recipients: msg.Recipients(),
	}, nil
}

// buildEmail maps the message model onto Postmark's wire type, reading
// attachment bytes from disk at assembly time.
func (c *Client) buildEmail(msg *mail.Message) (postmark.Email, error) {
	from := msg.From
	if from == "" {
		from = c.cfg.From
	}

	email := postmark.Email{
		From:       from,
		To:         strings.Join(msg.To, ", "),
		Cc:         strings.Join(msg.Cc, ", "),
		Bcc:        strings.Join(msg.Bcc, ", "),
		Subject:    msg.Subject,
		ReplyTo:    msg.ReplyTo,
		TrackOpens: c.cfg.TrackOpens,
	}
	if msg.HTML {
		email.HTMLBody = msg.Body
	} else {
		email.TextBody = msg.Body
	}

	for k, v := range msg.Headers {
		email.Headers = append(email.Headers, postmark.Header{Name: k, Value: v})
	}

	for _, a := range msg.Attachments {
		data, err := a.Bytes()
		if err != nil {
			return postmark.Email{}, err
		}
		attachment := postmark.Attachment{
			Name:        a.ResolveFilename(),
			Content:     base64.StdEncoding.EncodeToString(data),
			ContentType: a.ResolveContentType(),
		}
		if a.Inline {
			attachment.ContentID = "cid:" + a.ContentID
		}
		email.Attachments = append(email.Attachments, attachment)
	}

	return email, nil
}
