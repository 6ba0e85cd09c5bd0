package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
}

func NewSendGridSender(apiKey string) *SendGridSender {
	return &SendGridSender{client: sendgrid.NewSendClient(apiKey)}
}

func (s *SendGridSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := buildSendGrid(m)
	if err != nil {
		return err
	}
	resp, err := s.client.Send(msg)
	if err != nil {
		return fmt.Errorf("email: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("email: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func buildSendGrid(m Message) (*mail.SGMailV3, error) {
	from, err := parseAddress(m.From)
	if err != nil {
		return nil, err
	}
	to, err := parseAddress(m.To)
	if err != nil {
		return nil, err
	}
	return mail.NewSingleEmail(
		mail.NewEmail(from.Name, from.Address),
		m.Subject,
		mail.NewEmail(to.Name, to.Address),
		m.Text,
		"",
	), nil
}
