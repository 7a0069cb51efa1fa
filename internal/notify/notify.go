// Package notify delivers upload notifications for work orders.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Outcome statuses recorded for each delivery attempt.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
	StatusLogged = "logged"
)

// Message is a plain-text notification.
type Message struct {
	Subject string
	Body    string
}

// Notifier delivers a message.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier e-mails messages through the Resend API.
type ResendNotifier struct {
	emails  emailSender
	from    string
	to      []string
	timeout time.Duration
}

// NewResendNotifier builds a notifier for the given API key and addresses.
func NewResendNotifier(apiKey, from string, to []string, timeout time.Duration) (*ResendNotifier, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key is required")
	}
	if from == "" || len(to) == 0 {
		return nil, errors.New("sender and at least one recipient are required")
	}
	client := resend.NewClient(apiKey)
	return &ResendNotifier{emails: client.Emails, from: from, to: to, timeout: timeout}, nil
}

// Notify sends msg as a text e-mail.
func (n *ResendNotifier) Notify(ctx context.Context, msg Message) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	resp, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp == nil || resp.Id == "" {
		return errors.New("send email: empty response id")
	}
	return nil
}

// LogNotifier writes messages to the log when e-mail is not configured.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier builds a logging notifier.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

// Notify logs msg.
func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	n.log.Info("notification", zap.String("subject", msg.Subject), zap.String("body", msg.Body))
	return nil
}

// Status maps a delivery error to its recorded outcome.
func Status(n Notifier, err error) string {
	if err != nil {
		return StatusFailed
	}
	if _, ok := n.(*LogNotifier); ok {
		return StatusLogged
	}
	return StatusSent
}
