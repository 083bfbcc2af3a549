// internal/service/contact_service.go
package service

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/gurkanbulca/todoapp/internal/validation"
	"github.com/gurkanbulca/todoapp/pkg/email"
)

type ContactInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// ContactService forwards contact form messages to the site's recipient.
type ContactService struct {
	mailer    email.EmailService
	recipient string
	logger    *log.Logger
}

func NewContactService(mailer email.EmailService, recipient string, logger *log.Logger) *ContactService {
	return &ContactService{
		mailer:    mailer,
		recipient: recipient,
		logger:    logger.With("component", "contact"),
	}
}

// Send validates the message and mails it. Delivery failures are logged, never returned.
func (s *ContactService) Send(ctx context.Context, in ContactInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)

	if err := s.validateContact(in); err != nil {
		return err
	}

	msg := email.ContactMessage{Name: in.Name, Email: in.Email, Message: in.Message}
	if err := s.mailer.SendContactMessage(ctx, s.recipient, msg); err != nil {
		s.logger.Warn("failed to deliver contact message", "from", in.Email, "err", err)
	}
	return nil
}

func (s *ContactService) validateContact(in ContactInput) error {
	return validation.Struct(in).Err()
}
