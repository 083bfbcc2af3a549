// pkg/email/smtp.go
package email

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	htmltemplate "html/template"
	"net/smtp"
	"strings"
	"text/template"
)

// SMTPEmailService implements EmailService using SMTP
type SMTPEmailService struct {
	config    *Config
	templates *Templates
	auth      smtp.Auth
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPEmailService(config *Config) *SMTPEmailService {
	var auth smtp.Auth
	if config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", config.SMTPUsername, config.SMTPPassword, config.SMTPHost)
	}

	return &SMTPEmailService{
		config:    config,
		templates: NewTemplates(),
		auth:      auth,
		send:      smtp.SendMail,
	}
}

func (s *SMTPEmailService) SendWelcomeEmail(ctx context.Context, to Recipient) error {
	data := s.buildEmailData()
	data.Recipient = to

	return s.sendEmail(ctx, to.Email, "", s.templates.Welcome, data)
}

// SendContactMessage forwards a contact-form message; replies go to the sender.
func (s *SMTPEmailService) SendContactMessage(ctx context.Context, to string, msg ContactMessage) error {
	data := s.buildEmailData()
	data.Contact = msg

	return s.sendEmail(ctx, to, msg.Email, s.templates.ContactMessage, data)
}

func (s *SMTPEmailService) buildEmailData() *EmailData {
	return &EmailData{
		SupportEmail: s.config.SupportEmail,
		AppName:      s.config.AppName,
		BaseURL:      s.config.BaseURL,
	}
}

func (s *SMTPEmailService) sendEmail(ctx context.Context, to, replyTo string, tmpl EmailTemplate, data *EmailData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, err := renderText(tmpl.Subject, data)
	if err != nil {
		return fmt.Errorf("render subject: %w", err)
	}

	textBody, err := renderText(tmpl.TextBody, data)
	if err != nil {
		return fmt.Errorf("render text body: %w", err)
	}

	htmlBody, err := renderHTML(tmpl.HTMLBody, data)
	if err != nil {
		return fmt.Errorf("render HTML body: %w", err)
	}

	message := buildMIMEMessage(s.config.FromEmail, s.config.FromName, to, replyTo,
		sanitizeHeader(subject), textBody, htmlBody, generateBoundary())

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	if err := s.send(addr, s.auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

func renderText(src string, data *EmailData) (string, error) {
	t, err := template.New("email").Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTML(src string, data *EmailData) (string, error) {
	t, err := htmltemplate.New("email").Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sanitizeHeader strips CR/LF so user input cannot inject headers.
func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

func generateBoundary() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func buildMIMEMessage(from, fromName, to, replyTo, subject, textBody, htmlBody, boundary string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	if replyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", sanitizeHeader(replyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\nContent-Transfer-Encoding: 8bit\r\n\r\n%s\r\n\r\n", boundary, textBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\nContent-Transfer-Encoding: 8bit\r\n\r\n%s\r\n\r\n", boundary, htmlBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

// TestConnection dials the SMTP server and authenticates when credentials are configured.
func (s *SMTPEmailService) TestConnection(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial SMTP server: %w", err)
	}
	defer client.Close()

	if s.auth == nil {
		return nil
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(nil); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}
	if err := client.Auth(s.auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	return nil
}
