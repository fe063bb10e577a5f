package mail_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postwave/mailkit/core/mail"
)

func TestDevSender_Send(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := mail.NewDevSender(dir)

	msg, err := mail.NewMessage(
		[]string{"user@example.com"},
		"Welcome Aboard!",
		"<h1>Hello</h1>",
		mail.WithHTML(),
		mail.WithBcc("audit@example.com"),
	)
	require.NoError(t, err)

	res, err := sender.Send(context.Background(), msg)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, []string{"user@example.com", "audit@example.com"}, res.Recipients)
	assert.NotEmpty(t, res.MessageID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var htmlFile, jsonFile string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".html":
			htmlFile = e.Name()
		case ".json":
			jsonFile = e.Name()
		}
	}
	require.NotEmpty(t, htmlFile)
	require.NotEmpty(t, jsonFile)

	body, err := os.ReadFile(filepath.Join(dir, htmlFile))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hello</h1>", string(body))

	metaRaw, err := os.ReadFile(filepath.Join(dir, jsonFile))
	require.NoError(t, err)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(metaRaw, &meta))
	assert.Equal(t, "Welcome Aboard!", meta["subject"])
	assert.Equal(t, true, meta["html"])
	assert.Contains(t, htmlFile, "welcome_aboard")
}

func TestDevSender_PlainTextExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := mail.NewDevSender(dir)

	msg, err := mail.NewMessage([]string{"a@x.com"}, "Hi", "hello")
	require.NoError(t, err)

	res, err := sender.Send(context.Background(), msg)
	require.NoError(t, err)
	require.True(t, res.Success)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var exts []string
	for _, e := range entries {
		exts = append(exts, filepath.Ext(e.Name()))
	}
	assert.Contains(t, exts, ".txt")
}

func TestDevSender_InvalidMessage(t *testing.T) {
	t.Parallel()

	sender := mail.NewDevSender(t.TempDir())

	msg := &mail.Message{To: []string{"not-an-email"}, Subject: "x", Body: "y"}
	res, err := sender.Send(context.Background(), msg)
	require.Error(t, err)
	assert.ErrorIs(t, err, mail.ErrInvalidMessage)
	assert.Nil(t, res)
}

func TestDevSender_CancelledContext(t *testing.T) {
	t.Parallel()

	sender := mail.NewDevSender(t.TempDir())
	msg, err := mail.NewMessage([]string{"a@x.com"}, "Hi", "hello")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sender.Send(ctx, msg)
	require.ErrorIs(t, err, context.Canceled)
}
