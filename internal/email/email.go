// Package email delivers transactional mail through SMTP or SendGrid.
package email

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"strings"
)

// Message is a plain text email. From and To accept "Name <addr>" or a bare
// address.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
}

// Sender delivers a message. Failures are returned to the caller; there is
// no retry.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

type Config struct {
	Transport      string
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
	SendGridAPIKey string
	FromName       string
	FromAddress    string
}

// From renders the configured sender as "Name <address>".
func (c Config) From() string {
	if c.FromName == "" {
		return c.FromAddress
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromAddress)
}

// ConfigFromEnv reads mail transport settings. SMTP on localhost:1025 (a
// local mail catcher) is the default.
func ConfigFromEnv() Config {
	return Config{
		Transport:      getenv("EMAIL_TRANSPORT", "smtp"),
		SMTPHost:       getenv("EMAIL_SMTP_HOST", "localhost"),
		SMTPPort:       getenv("EMAIL_SMTP_PORT", "1025"),
		SMTPUser:       os.Getenv("EMAIL_SMTP_USER"),
		SMTPPassword:   os.Getenv("EMAIL_SMTP_PASSWORD"),
		SendGridAPIKey: os.Getenv("EMAIL_SENDGRID_API_KEY"),
		FromName:       getenv("EMAIL_FROM_NAME", "ExternBR"),
		FromAddress:    getenv("EMAIL_FROM_ADDRESS", "contact@externbr.com"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// NewSender builds the configured transport.
func NewSender(cfg Config) (Sender, error) {
	switch strings.ToLower(cfg.Transport) {
	case "", "smtp":
		return NewSMTPSender(cfg), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("email: sendgrid transport needs EMAIL_SENDGRID_API_KEY")
		}
		return NewSendGridSender(cfg.SendGridAPIKey), nil
	default:
		return nil, fmt.Errorf("email: unknown transport %q", cfg.Transport)
	}
}

func parseAddress(s string) (*mail.Address, error) {
	a, err := mail.ParseAddress(s)
	if err != nil {
		return nil, fmt.Errorf("email: parse address %q: %w", s, err)
	}
	return a, nil
}
