// Package mail delivers HTML e-mail over SMTP.
package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	From    string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// newDialer is a seam for tests.
var newDialer = func(host string, port int, user, password string) dialer {
	return gomail.NewDialer(host, port, user, password)
}

// SMTPSender opens one SMTP session per message.
type SMTPSender struct {
	dialer      dialer
	defaultFrom string
}

func NewSMTPSender(host string, port int, user, password, defaultFrom string) *SMTPSender {
	return &SMTPSender{
		dialer:      newDialer(host, port, user, password),
		defaultFrom: defaultFrom,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = s.defaultFrom
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}
