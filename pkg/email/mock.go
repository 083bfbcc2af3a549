// pkg/email/mock.go
package email

import (
	"context"
	"sync"
	"time"
)

// MockEmailService records messages instead of delivering them. Setting Err
// makes every send fail, which exercises the callers' non-fatal paths.
type MockEmailService struct {
	mu         sync.Mutex
	SentEmails []SentEmail
	Err        error
}

type SentEmail struct {
	To       string
	Template string
	Data     *EmailData
	SentAt   time.Time
}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{
		SentEmails: make([]SentEmail, 0),
	}
}

func (m *MockEmailService) SendWelcomeEmail(ctx context.Context, to Recipient) error {
	return m.record(to.Email, "welcome", &EmailData{Recipient: to})
}

func (m *MockEmailService) SendContactMessage(ctx context.Context, to string, msg ContactMessage) error {
	return m.record(to, "contact_message", &EmailData{Contact: msg})
}

func (m *MockEmailService) record(to, template string, data *EmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.SentEmails = append(m.SentEmails, SentEmail{
		To:       to,
		Template: template,
		Data:     data,
		SentAt:   time.Now(),
	})
	return nil
}

func (m *MockEmailService) GetSentEmails() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentEmail(nil), m.SentEmails...)
}

func (m *MockEmailService) GetLastSentEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SentEmails) == 0 {
		return nil
	}
	last := m.SentEmails[len(m.SentEmails)-1]
	return &last
}

func (m *MockEmailService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = make([]SentEmail, 0)
}
