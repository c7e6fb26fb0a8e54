package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/mail-screen/internal/core"
	"go.uber.org/zap"
)

const (
	dialTimeout    = 10 * time.Second
	sessionTimeout = 30 * time.Second
)

// ErrAllRecipientsRejected is returned when the relay refused every recipient
var ErrAllRecipientsRejected = errors.New("all recipients were rejected")

// SMTPMailer delivers messages through an SMTP relay
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	startTLS bool
	helo     string
	logger   *zap.Logger
}

// NewSMTPMailer creates a new SMTP mail gateway
func NewSMTPMailer(
	host string,
	port int,
	username string,
	password string,
	startTLS bool,
	helo string,
	logger *zap.Logger,
) *SMTPMailer {
	if helo == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "localhost"
		}
		helo = hostname
	}

	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		startTLS: startTLS,
		helo:     helo,
		logger:   logger,
	}
}

// Addr returns the relay address
func (m *SMTPMailer) Addr() string {
	return net.JoinHostPort(m.host, strconv.Itoa(m.port))
}

// Send delivers msg to the relay
func (m *SMTPMailer) Send(ctx context.Context, msg *core.Message) error {
	env, err := parseEnvelope(msg)
	if err != nil {
		return err
	}
	data, err := compose(env, msg, time.Now())
	if err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.Addr())
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP relay %s: %w", m.Addr(), err)
	}

	deadline := time.Now().Add(sessionTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(m.helo); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if m.startTLS {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	if m.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", m.username, m.password)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}

	if err := c.Mail(env.from.Address, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range env.recipients() {
		if err := c.Rcpt(recipient, nil); err != nil {
			m.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return ErrAllRecipientsRejected
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// The relay already accepted the message.
		m.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}
