package smtp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/postwave/mailkit/core/mail"
)

// generateMessageID builds an RFC 5322 style Message-ID scoped to the
// sender's domain.
func generateMessageID(from string) string {
	host := "localhost"
	if i := strings.LastIndex(from, "@"); i != -1 && i+1 < len(from) {
		host = from[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), host)
}

// buildMIME assembles the wire form of a message: headers, the body part
// and one MIME part per attachment. Bcc recipients are deliberately absent
// from the generated headers; they only appear in the envelope.
func buildMIME(msg *mail.Message, from, messageID string) ([]byte, error) {
	var buf bytes.Buffer

	writeHeader(&buf, "From", from)
	writeHeader(&buf, "To", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		writeHeader(&buf, "Cc", strings.Join(msg.Cc, ", "))
	}
	if msg.ReplyTo != "" {
		writeHeader(&buf, "Reply-To", msg.ReplyTo)
	}
	writeHeader(&buf, "Subject", msg.Subject)
	writeHeader(&buf, "Date", time.Now().Format(time.RFC1123Z))
	writeHeader(&buf, "Message-ID", messageID)
	writeHeader(&buf, "MIME-Version", "1.0")

	// Custom headers in sorted order so identical messages serialize
	// identically.
	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeHeader(&buf, k, msg.Headers[k])
	}

	bodyType := "text/plain"
	if msg.HTML {
		bodyType = "text/html"
	}

	if len(msg.Attachments) == 0 {
		buf.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", bodyType))
		buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
		buf.WriteString("\r\n")
		if err := writeQuotedPrintable(&buf, msg.Body); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	mixed := multipart.NewWriter(&buf)
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", mixed.Boundary()))
	buf.WriteString("\r\n")

	bodyHdr := textproto.MIMEHeader{}
	bodyHdr.Set("Content-Type", fmt.Sprintf("%s; charset=\"UTF-8\"", bodyType))
	bodyHdr.Set("Content-Transfer-Encoding", "quoted-printable")
	bodyPart, err := mixed.CreatePart(bodyHdr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mail.ErrInvalidMessage, err)
	}
	if err := writeQuotedPrintable(bodyPart, msg.Body); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		if err := writeAttachment(mixed, a); err != nil {
			return nil, err
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", mail.ErrInvalidMessage, err)
	}
	return buf.Bytes(), nil
}

func writeAttachment(mixed *multipart.Writer, a mail.Attachment) error {
	data, err := a.Bytes()
	if err != nil {
		return err
	}

	filename := a.ResolveFilename()
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Type", fmt.Sprintf("%s; name=%q", a.ResolveContentType(), filename))
	hdr.Set("Content-Transfer-Encoding", "base64")
	if a.Inline {
		hdr.Set("Content-ID", fmt.Sprintf("<%s>", a.ContentID))
		hdr.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	} else {
		hdr.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}

	part, err := mixed.CreatePart(hdr)
	if err != nil {
		return fmt.Errorf("%w: %v", mail.ErrInvalidAttachment, err)
	}
	return writeBase64(part, data)
}

// writeHeader emits one header line with CR/LF stripped from the value so a
// crafted subject or address cannot inject extra headers.
func writeHeader(w io.Writer, key, value string) {
	value = strings.ReplaceAll(value, "\r", "")
	value = strings.ReplaceAll(value, "\n", "")
	fmt.Fprintf(w, "%s: %s\r\n", key, value)
}

func writeQuotedPrintable(w io.Writer, body string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(body)); err != nil {
		return fmt.Errorf("%w: encode body: %v", mail.ErrInvalidMessage, err)
	}
	if err := qp.Close(); err != nil {
		return fmt.Errorf("%w: encode body: %v", mail.ErrInvalidMessage, err)
	}
	return nil
}

// writeBase64 encodes data wrapped at the RFC 2045 line limit.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	const lineLen = 76
	for len(encoded) > 0 {
		n := min(lineLen, len(encoded))
		if _, err := io.WriteString(w, encoded[:n]+"\r\n"); err != nil {
			return fmt.Errorf("%w: encode attachment: %v", mail.ErrInvalidAttachment, err)
		}
		encoded = encoded[n:]
	}
	return nil
}
