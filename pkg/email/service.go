// pkg/email/service.go
package email

import (
	"context"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendWelcomeEmail(ctx context.Context, to Recipient) error
	SendContactMessage(ctx context.Context, to string, msg ContactMessage) error
}

type Recipient struct {
	Email string
	Name  string
}

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

type EmailTemplate struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// EmailData contains data for template rendering
type EmailData struct {
	Recipient    Recipient
	Contact      ContactMessage
	SupportEmail string
	AppName      string
	BaseURL      string
}

type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	BaseURL      string
	AppName      string
	SupportEmail string
}

type Templates struct {
	Welcome        EmailTemplate
	ContactMessage EmailTemplate
}

func NewTemplates() *Templates {
	return &Templates{
		Welcome: EmailTemplate{
			Subject: "Welcome to {{.AppName}}",
			HTMLBody: `
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Welcome to {{.AppName}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #28a745; color: white; text-decoration: none; border-radius: 5px; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 14px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Welcome to {{.AppName}}!</h1>
        <p>Hi {{if .Recipient.Name}}{{.Recipient.Name}}{{else}}there{{end}},</p>
        <p>Your account is ready. Add your first todo, tag it, and give it a due date.</p>
        <p style="text-align: center; margin: 30px 0;">
            <a href="{{.BaseURL}}" class="button">Open {{.AppName}}</a>
        </p>
        <div class="footer">
            <p>Questions? Write to <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a></p>
        </div>
    </div>
</body>
</html>`,
			TextBody: `Welcome to {{.AppName}}!

Hi {{if .Recipient.Name}}{{.Recipient.Name}}{{else}}there{{end}},

Your account is ready. Add your first todo, tag it, and give it a due date.

{{.BaseURL}}

Questions? Write to {{.SupportEmail}}`,
		},

		ContactMessage: EmailTemplate{
			Subject: "[{{.AppName}}] Contact from {{.Contact.Name}}",
			HTMLBody: `
<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Contact message</title></head>
<body>
    <p><strong>From:</strong> {{.Contact.Name}} &lt;{{.Contact.Email}}&gt;</p>
    <pre style="white-space: pre-wrap;">{{.Contact.Message}}</pre>
</body>
</html>`,
			TextBody: `From: {{.Contact.Name}} <{{.Contact.Email}}>

{{.Contact.Message}}`,
		},
	}
}
