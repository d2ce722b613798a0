package email

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender envia correos via SMTP usando gomail.
type SMTPSender struct {
	dialer   mailDialer
	from     string
	fromName string
}

func NewSMTPSender(host string, port int, username, password, from, fromName string) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		from = username
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}, nil
}

func (s *SMTPSender) SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dialer.DialAndSend(s.buildOTPMessage(toEmail, code, expiresAt))
}

func (s *SMTPSender) buildOTPMessage(toEmail, code string, expiresAt time.Time) *gomail.Message {
	m := gomail.NewMessage()
	if strings.TrimSpace(s.fromName) != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "OTP Verification")
	m.SetBody("text/plain", fmt.Sprintf(
		"Your OTP is %s.\nIt expires at %s UTC.\n",
		code,
		expiresAt.UTC().Format(time.RFC3339),
	))
	m.AddAlternative("text/html", fmt.Sprintf(
		"<b>Your OTP is <h1>%s</h1></b><p>It expires at %s UTC.</p>",
		html.EscapeString(code),
		expiresAt.UTC().Format(time.RFC3339),
	))
	return m
}
