package email

import (
	"context"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunSender sends notification emails through the Mailgun API
type MailgunSender struct {
	mg     *mailgun.MailgunImpl
	sender string
}

func NewMailgunSender(domain, apiKey, sender string) *MailgunSender {
	return &MailgunSender{
		mg:     mailgun.NewMailgun(domain, apiKey),
		sender: sender,
	}
}

func (m *MailgunSender) Send(ctx context.Context, to string, subject string, body string) (string, error) {
	message := m.mg.NewMessage(m.sender, subject, body, to)

	sendCtx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	_, id, err := m.mg.Send(sendCtx, message)
	if err != nil {
		return "", err
	}
	return id, nil
}
