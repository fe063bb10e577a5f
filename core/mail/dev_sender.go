package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DevSender implements Sender for local development. It saves each message
// as a body file plus JSON metadata in a directory instead of delivering it
// through a mail server.
type DevSender struct {
	dir string
}

// NewDevSender creates a development sender that saves emails to disk.
// The directory is created on first send if it doesn't exist.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir}
}

// devMetadata is the message envelope saved to JSON (excluding the body).
type devMetadata struct {
	Timestamp  string   `json:"timestamp"`
	MessageID  string   `json:"message_id"`
	From       string   `json:"from,omitempty"`
	To         []string `json:"to"`
	Cc         []string `json:"cc,omitempty"`
	Bcc        []string `json:"bcc,omitempty"`
	ReplyTo    string   `json:"reply_to,omitempty"`
	Subject    string   `json:"subject"`
	HTML       bool     `json:"html"`
	Attachment []string `json:"attachments,omitempty"`
}

// Send saves the message body and metadata to the configured directory.
// The Result reports the same recipient union a real transport would accept.
func (d *DevSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return Failure(fmt.Errorf("%w: failed to create directory: %v", ErrDeliveryFailed, err)), nil
	}

	now := time.Now()
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(msg.Subject))

	ext := ".txt"
	if msg.HTML {
		ext = ".html"
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+ext), []byte(msg.Body), 0644); err != nil {
		return Failure(fmt.Errorf("%w: failed to write body file: %v", ErrDeliveryFailed, err)), nil
	}

	messageID := fmt.Sprintf("<%s@dev.local>", uuid.NewString())
	meta := devMetadata{
		Timestamp: now.Format(time.RFC3339),
		MessageID: messageID,
		From:      msg.From,
		To:        msg.To,
		Cc:        msg.Cc,
		Bcc:       msg.Bcc,
		ReplyTo:   msg.ReplyTo,
		Subject:   msg.Subject,
		HTML:      msg.HTML,
	}
	for _, a := range msg.Attachments {
		meta.Attachment = append(meta.Attachment, a.ResolveFilename())
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return Failure(fmt.Errorf("%w: failed to marshal metadata: %v", ErrDeliveryFailed, err)), nil
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), data, 0644); err != nil {
		return Failure(fmt.Errorf("%w: failed to write metadata file: %v", ErrDeliveryFailed, err)), nil
	}

	return &Result{
		Success:    true,
		MessageID:  messageID,
		Recipients: msg.Recipients(),
	}, nil
}

// sanitizeRegex removes filesystem-unsafe characters from filenames.
var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename converts a subject line into a safe lowercase filename.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
