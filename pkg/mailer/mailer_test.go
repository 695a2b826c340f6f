package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	date := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	msg := string(BuildMessage("orders@example.com", []string{"a@example.com", "b@example.com"}, "Order\r\nBcc: x", "line1\nline2", date))

	assert.True(t, strings.HasPrefix(msg, "From: orders@example.com\r\n"))
	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Subject: OrderBcc: x\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nline1\r\nline2"))
}

func TestSMTPSender_Send(t *testing.T) {
	sender := NewSMTPSender("smtp.example.com", 587, "user", "pass", "orders@example.com")

	var gotAddr string
	var gotTo []string
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo = addr, to
		return nil
	}

	require.NoError(t, sender.Send(context.Background(), []string{"c@example.com"}, "Hi", "Body"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"c@example.com"}, gotTo)
}

func TestSMTPSender_Errors(t *testing.T) {
	assert.ErrorIs(t, NewSMTPSender("", 25, "", "", "x@example.com").Send(context.Background(), []string{"a@example.com"}, "s", "b"), ErrNotConfigured)

	sender := NewSMTPSender("smtp.example.com", 25, "", "", "x@example.com")
	assert.Error(t, sender.Send(context.Background(), nil, "s", "b"))

	sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 busy") }
	err := sender.Send(context.Background(), []string{"a@example.com"}, "s", "b")
	assert.ErrorContains(t, err, "421 busy")
}
