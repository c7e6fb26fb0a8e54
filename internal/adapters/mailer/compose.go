package mailer

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/mail-screen/internal/core"
)

// envelope is the parsed addressing of an outbound message
type envelope struct {
	from *mail.Address
	to   []*mail.Address
}

// parseEnvelope validates the sender and recipient addresses of msg
func parseEnvelope(msg *core.Message) (*envelope, error) {
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", msg.From, err)
	}
	to, err := mail.ParseAddressList(msg.To)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}
	return &envelope{from: from, to: to}, nil
}

// recipients returns the bare recipient addresses for RCPT TO
func (e *envelope) recipients() []string {
	out := make([]string, len(e.to))
	for i, addr := range e.to {
		out[i] = addr.Address
	}
	return out
}

// compose renders msg as an RFC 5322 text/plain message
func compose(env *envelope, msg *core.Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	to := make([]string, len(env.to))
	for i, addr := range env.to {
		to[i] = addr.String()
	}

	domain := "localhost"
	if at := strings.LastIndex(env.from.Address, "@"); at >= 0 {
		domain = env.from.Address[at+1:]
	}

	// Subject is user input; Q-encoding also neutralises embedded CR/LF.
	fmt.Fprintf(&buf, "From: %s\r\n", env.from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domain)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	if _, err := qp.Write([]byte(strings.ReplaceAll(body, "\n", "\r\n"))); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	buf.WriteString("\r\n")

	return buf.Bytes(), nil
}
