package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Message is one outbound HTML email
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
}

// Sender delivers a single message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string

	// Connect, greeting and per-socket-operation limits
	DialTimeout     time.Duration
	GreetingTimeout time.Duration
	SocketTimeout   time.Duration
}

// SMTPSender sends mail through an SMTP relay
type SMTPSender struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(config SMTPConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		config: config,
		logger: logger,
	}
}

// Send delivers msg, upgrading to TLS when the server offers STARTTLS
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	raw, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	serverAddress := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	dialer := &net.Dialer{Timeout: s.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", serverAddress)
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	// The greeting must arrive within GreetingTimeout
	if s.config.GreetingTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.config.GreetingTimeout))
	}
	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create SMTP client")
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if s.config.SocketTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.config.SocketTimeout))
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			s.logger.Error().Err(err).Msg("SMTP authentication failed")
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.ToEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

// ErrInvalidHeader is returned for an address containing a line break
var ErrInvalidHeader = errors.New("invalid mail header value")

// buildMessage renders headers and body. Display names and the subject are
// RFC 2047 encoded when they are not plain printable ASCII.
func (s *SMTPSender) buildMessage(msg Message) ([]byte, error) {
	for _, addr := range []string{msg.ToEmail, s.config.FromEmail} {
		if strings.ContainsAny(addr, "\r\n") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, addr)
		}
	}

	from := mail.Address{Name: s.config.FromName, Address: s.config.FromEmail}
	to := mail.Address{Name: msg.ToName, Address: msg.ToEmail}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from.String())
	fmt.Fprintf(&b, "To: %s\r\n", to.String())
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String()), nil
}

// LogSender only logs messages. Used when no mail provider is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a sender that writes messages to the log
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message and reports success
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Warn().
		Str("toEmail", msg.ToEmail).
		Str("subject", msg.Subject).
		Msg("Mail provider not configured - email not sent")
	return nil
}
