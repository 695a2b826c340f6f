package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("mailer: smtp host not configured")

type Sender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to []string, subject, body string) error {
	if s.Host == "" {
		return ErrNotConfigured
	}
	if len(to) == 0 {
		return errors.New("mailer: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	if err := s.sendMail(addr, auth, s.From, to, BuildMessage(s.From, to, subject, body, time.Now())); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// BuildMessage renders a plain-text RFC 5322 message.
func BuildMessage(from string, to []string, subject, body string, date time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + strings.NewReplacer("\r", "", "\n", "").Replace(subject) + "\r\n")
	b.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
