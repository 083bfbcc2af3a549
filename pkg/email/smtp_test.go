package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newCapturingService(t *testing.T, sendErr error) (*SMTPEmailService, *capturedMail) {
	t.Helper()
	captured := &capturedMail{}
	svc := NewSMTPEmailService(&Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     2525,
		FromEmail:    "noreply@example.com",
		FromName:     "Todo App",
		AppName:      "Todo App",
		BaseURL:      "https://todo.example.com",
		SupportEmail: "support@example.com",
	})
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.from = from
		captured.to = to
		captured.msg = string(msg)
		return sendErr
	}
	return svc, captured
}

func TestSMTPEmailService_SendContactMessage(t *testing.T) {
	svc, captured := newCapturingService(t, nil)

	err := svc.SendContactMessage(context.Background(), "admin@example.com", ContactMessage{
		Name:    "Jane\r\nBcc: evil@example.com",
		Email:   "jane@example.com",
		Message: "<b>hello</b>",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:2525", captured.addr)
	assert.Equal(t, "noreply@example.com", captured.from)
	assert.Equal(t, []string{"admin@example.com"}, captured.to)
	assert.Contains(t, captured.msg, "Reply-To: jane@example.com\r\n")
	assert.Contains(t, captured.msg, "Subject: [Todo App] Contact from Jane  Bcc: evil@example.com\r\n")
	headers := strings.SplitN(captured.msg, "\r\n\r\n", 2)[0]
	assert.NotContains(t, headers, "\r\nBcc:")
	assert.Contains(t, captured.msg, "&lt;b&gt;hello&lt;/b&gt;")
}

func TestSMTPEmailService_SendWelcomeEmail(t *testing.T) {
	svc, captured := newCapturingService(t, nil)

	err := svc.SendWelcomeEmail(context.Background(), Recipient{Email: "jane@example.com", Name: "Jane"})
	require.NoError(t, err)

	assert.Equal(t, []string{"jane@example.com"}, captured.to)
	assert.Contains(t, captured.msg, "Subject: Welcome to Todo App\r\n")
	assert.Contains(t, captured.msg, "Hi Jane,")
	assert.Contains(t, captured.msg, "https://todo.example.com")
}

func TestSMTPEmailService_SendFailure(t *testing.T) {
	svc, _ := newCapturingService(t, errors.New("connection refused"))

	err := svc.SendWelcomeEmail(context.Background(), Recipient{Email: "jane@example.com"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPEmailService_CancelledContext(t *testing.T) {
	svc, captured := newCapturingService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.SendWelcomeEmail(ctx, Recipient{Email: "jane@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, captured.msg)
}

func TestMockEmailService(t *testing.T) {
	m := NewMockEmailService()
	require.NoError(t, m.SendContactMessage(context.Background(), "admin@example.com", ContactMessage{Name: "a"}))
	require.NoError(t, m.SendWelcomeEmail(context.Background(), Recipient{Email: "b@example.com"}))

	assert.Len(t, m.GetSentEmails(), 2)
	assert.Equal(t, "welcome", m.GetLastSentEmail().Template)

	m.Err = errors.New("down")
	assert.Error(t, m.SendWelcomeEmail(context.Background(), Recipient{Email: "c@example.com"}))
	assert.Len(t, m.GetSentEmails(), 2)

	m.Clear()
	assert.Nil(t, m.GetLastSentEmail())
}
