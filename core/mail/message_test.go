package mail_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postwave/mailkit/core/mail"
)

func TestNewMessage_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		to      []string
		opts    []mail.MessageOption
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid single recipient",
			to:   []string{"a@x.com"},
		},
		{
			name: "valid multiple recipients",
			to:   []string{"a@x.com", "b@y.org"},
			opts: []mail.MessageOption{mail.WithCc("c@z.net"), mail.WithBcc("d@w.io")},
		},
		{
			name:    "no recipients at all",
			to:      nil,
			wantErr: true,
			errMsg:  "at least one recipient",
		},
		{
			name:    "malformed to address",
			to:      []string{"not-an-email"},
			wantErr: true,
			errMsg:  "invalid To address",
		},
		{
			name:    "malformed cc address",
			to:      []string{"a@x.com"},
			opts:    []mail.MessageOption{mail.WithCc("nope@")},
			wantErr: true,
			errMsg:  "invalid Cc address",
		},
		{
			name:    "malformed bcc address",
			to:      []string{"a@x.com"},
			opts:    []mail.MessageOption{mail.WithBcc("@nope.com")},
			wantErr: true,
			errMsg:  "invalid Bcc address",
		},
		{
			name:    "malformed reply-to",
			to:      []string{"a@x.com"},
			opts:    []mail.MessageOption{mail.WithReplyTo("broken")},
			wantErr: true,
			errMsg:  "invalid Reply-To address",
		},
		{
			name:    "malformed from override",
			to:      []string{"a@x.com"},
			opts:    []mail.MessageOption{mail.WithFrom("broken@host")},
			wantErr: true,
			errMsg:  "invalid From address",
		},
		{
			name: "bcc only is enough",
			to:   nil,
			opts: []mail.MessageOption{mail.WithBcc("d@w.io")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, err := mail.NewMessage(tt.to, "Subject", "Body", tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, mail.ErrInvalidMessage)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, msg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, msg)
		})
	}
}

func TestMessage_Normalize(t *testing.T) {
	t.Parallel()

	msg, err := mail.NewMessage(
		[]string{" a@x.com ", "a@x.com", "b@y.org"},
		"Subject", "Body",
		mail.WithCc("a@x.com", "c@z.net"),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"a@x.com", "b@y.org"}, msg.To)
	assert.Equal(t, []string{"a@x.com", "c@z.net"}, msg.Cc)
}

func TestMessage_Recipients(t *testing.T) {
	t.Parallel()

	msg, err := mail.NewMessage(
		[]string{"a@x.com", "b@y.org"},
		"Subject", "Body",
		mail.WithCc("b@y.org", "c@z.net"),
		mail.WithBcc("d@w.io", "a@x.com"),
	)
	require.NoError(t, err)

	// Union of to+cc+bcc, deduplicated, in listing order.
	assert.Equal(t, []string{"a@x.com", "b@y.org", "c@z.net", "d@w.io"}, msg.Recipients())
}

func TestAttachment_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		attachment mail.Attachment
		wantErr    bool
		errMsg     string
	}{
		{
			name:       "file-backed",
			attachment: mail.Attachment{Path: "/tmp/report.pdf"},
		},
		{
			name:       "in-memory content",
			attachment: mail.Attachment{Content: []byte("data"), Filename: "data.bin"},
		},
		{
			name:       "inline with content id",
			attachment: mail.Attachment{Content: []byte("img"), Filename: "logo.png", ContentID: "logo", Inline: true},
		},
		{
			name:       "no byte source",
			attachment: mail.Attachment{Filename: "ghost.txt"},
			wantErr:    true,
			errMsg:     "either Path or Content is required",
		},
		{
			name:       "both byte sources",
			attachment: mail.Attachment{Path: "/tmp/a", Content: []byte("x")},
			wantErr:    true,
			errMsg:     "mutually exclusive",
		},
		{
			name:       "content without filename",
			attachment: mail.Attachment{Content: []byte("x")},
			wantErr:    true,
			errMsg:     "Filename is required",
		},
		{
			name:       "inline without content id",
			attachment: mail.Attachment{Content: []byte("img"), Filename: "logo.png", Inline: true},
			wantErr:    true,
			errMsg:     "require a ContentID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.attachment.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, mail.ErrInvalidAttachment)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAttachment_Resolvers(t *testing.T) {
	t.Parallel()

	t.Run("filename from path", func(t *testing.T) {
		t.Parallel()
		a := mail.Attachment{Path: "/var/data/report.pdf"}
		assert.Equal(t, "report.pdf", a.ResolveFilename())
	})

	t.Run("explicit filename wins", func(t *testing.T) {
		t.Parallel()
		a := mail.Attachment{Path: "/var/data/report.pdf", Filename: "q3.pdf"}
		assert.Equal(t, "q3.pdf", a.ResolveFilename())
	})

	t.Run("content type from extension", func(t *testing.T) {
		t.Parallel()
		a := mail.Attachment{Filename: "doc.html", Content: []byte("<p>")}
		assert.Contains(t, a.ResolveContentType(), "text/html")
	})

	t.Run("unknown extension falls back to octet-stream", func(t *testing.T) {
		t.Parallel()
		a := mail.Attachment{Filename: "blob.zzz9", Content: []byte{1}}
		assert.Equal(t, "application/octet-stream", a.ResolveContentType())
	})
}

func TestAttachment_Bytes(t *testing.T) {
	t.Parallel()

	t.Run("in-memory", func(t *testing.T) {
		t.Parallel()
		a := mail.Attachment{Content: []byte("payload"), Filename: "p.bin"}
		data, err := a.Bytes()
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), data)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		a := mail.Attachment{Path: "/nonexistent/file.txt"}
		_, err := a.Bytes()
		require.Error(t, err)
		assert.ErrorIs(t, err, mail.ErrInvalidAttachment)
	})

	t.Run("file-backed", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "note.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))
		a := mail.Attachment{Path: path}
		data, err := a.Bytes()
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})
}
