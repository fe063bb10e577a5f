package mail

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// emailRegex is a simple regex for validating email addresses.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidAddress checks if the provided string is a syntactically valid email address.
func IsValidAddress(addr string) bool {
	return emailRegex.MatchString(addr)
}

// Attachment describes one file or inline resource to embed in a message.
// Exactly one of Path or Content must be set. Inline attachments are
// referenced from HTML bodies via "cid:" + ContentID.
type Attachment struct {
	Path        string
	Content     []byte
	Filename    string
	ContentType string
	ContentID   string
	Inline      bool
}

// Validate checks that the attachment has exactly one byte source and that
// inline attachments carry a content ID.
func (a Attachment) Validate() error {
	hasPath := a.Path != ""
	hasContent := len(a.Content) > 0
	switch {
	case hasPath && hasContent:
		return fmt.Errorf("%w: Path and Content are mutually exclusive", ErrInvalidAttachment)
	case !hasPath && !hasContent:
		return fmt.Errorf("%w: either Path or Content is required", ErrInvalidAttachment)
	case hasContent && a.Filename == "":
		return fmt.Errorf("%w: Filename is required for in-memory content", ErrInvalidAttachment)
	case a.Inline && a.ContentID == "":
		return fmt.Errorf("%w: inline attachments require a ContentID", ErrInvalidAttachment)
	}
	return nil
}

// Bytes returns the attachment payload, reading it from disk when the
// attachment is file-backed. Disk I/O happens here, at assembly time,
// not at construction.
func (a Attachment) Bytes() ([]byte, error) {
	if len(a.Content) > 0 {
		return a.Content, nil
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAttachment, err)
	}
	return data, nil
}

// ResolveFilename returns the explicit filename or derives one from Path.
func (a Attachment) ResolveFilename() string {
	if a.Filename != "" {
		return a.Filename
	}
	return filepath.Base(a.Path)
}

// ResolveContentType returns the explicit content type, or guesses it from
// the filename extension, falling back to application/octet-stream.
func (a Attachment) ResolveContentType() string {
	if a.ContentType != "" {
		return a.ContentType
	}
	if ct := mime.TypeByExtension(filepath.Ext(a.ResolveFilename())); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Message is the full logical email: recipients, subject, body, attachments
// and custom headers. Construct it via NewMessage or fill the struct directly
// and call Validate before handing it to a Sender.
type Message struct {
	// From overrides the sender address configured on the mailer when set.
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	ReplyTo     string
	Subject     string
	Body        string
	HTML        bool
	Headers     map[string]string
	Attachments []Attachment
}

// MessageOption customizes a Message built by NewMessage.
type MessageOption func(*Message)

// WithFrom overrides the sender address for this message.
func WithFrom(from string) MessageOption {
	return func(m *Message) { m.From = from }
}

// WithCc adds carbon-copy recipients.
func WithCc(addrs ...string) MessageOption {
	return func(m *Message) { m.Cc = append(m.Cc, addrs...) }
}

// WithBcc adds blind carbon-copy recipients. They receive the message but
// never appear in generated headers.
func WithBcc(addrs ...string) MessageOption {
	return func(m *Message) { m.Bcc = append(m.Bcc, addrs...) }
}

// WithReplyTo sets the Reply-To address.
func WithReplyTo(addr string) MessageOption {
	return func(m *Message) { m.ReplyTo = addr }
}

// WithHTML marks the body as text/html.
func WithHTML() MessageOption {
	return func(m *Message) { m.HTML = true }
}

// WithHeader sets a custom header on the message.
func WithHeader(key, value string) MessageOption {
	return func(m *Message) {
		if m.Headers == nil {
			m.Headers = make(map[string]string)
		}
		m.Headers[key] = value
	}
}

// WithAttachments appends attachments to the message.
func WithAttachments(attachments ...Attachment) MessageOption {
	return func(m *Message) { m.Attachments = append(m.Attachments, attachments...) }
}

// NewMessage builds a validated message. Recipient lists are normalized
// (whitespace trimmed, duplicates dropped, order preserved) and every address
// must pass the syntax check; a malformed address fails construction with an
// error wrapping ErrInvalidMessage.
func NewMessage(to []string, subject, body string, opts ...MessageOption) (*Message, error) {
	msg := &Message{
		To:      to,
		Subject: subject,
		Body:    body,
	}
	for _, opt := range opts {
		opt(msg)
	}
	msg.Normalize()
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

// Normalize trims whitespace and drops duplicate addresses from the
// recipient lists, preserving first-seen order.
func (m *Message) Normalize() {
	m.To = normalizeAddrs(m.To)
	m.Cc = normalizeAddrs(m.Cc)
	m.Bcc = normalizeAddrs(m.Bcc)
	m.ReplyTo = strings.TrimSpace(m.ReplyTo)
	m.From = strings.TrimSpace(m.From)
}

// Validate checks recipients, optional addresses and attachments. It performs
// no I/O; attachment bytes are only read at assembly time.
func (m *Message) Validate() error {
	if len(m.To)+len(m.Cc)+len(m.Bcc) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidMessage)
	}
	for _, group := range []struct {
		field string
		addrs []string
	}{
		{"To", m.To},
		{"Cc", m.Cc},
		{"Bcc", m.Bcc},
	} {
		for _, addr := range group.addrs {
			if !IsValidAddress(addr) {
				return fmt.Errorf("%w: invalid %s address %q", ErrInvalidMessage, group.field, addr)
			}
		}
	}
	if m.From != "" && !IsValidAddress(m.From) {
		return fmt.Errorf("%w: invalid From address %q", ErrInvalidMessage, m.From)
	}
	if m.ReplyTo != "" && !IsValidAddress(m.ReplyTo) {
		return fmt.Errorf("%w: invalid Reply-To address %q", ErrInvalidMessage, m.ReplyTo)
	}
	for _, a := range m.Attachments {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Recipients returns the envelope recipient set: the union of To, Cc and Bcc
// with duplicates dropped, in listing order.
func (m *Message) Recipients() []string {
	union := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	union = append(union, m.To...)
	union = append(union, m.Cc...)
	union = append(union, m.Bcc...)
	return normalizeAddrs(union)
}

func normalizeAddrs(addrs []string) []string {
	if len(addrs) == 0 {
		return addrs
	}
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
