package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"go-tutoring-backend/config"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
}

// SessionConfirmationData holds the data for session booking confirmations
type SessionConfirmationData struct {
	RecipientEmail string
	StudentName    string
	Subject        string
	ScheduledAt    time.Time
	DurationMin    int
}

// NewEmailService creates a new email service with Brevo SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
	}
}

// sessionConfirmationTemplate is the HTML template for booking confirmations
const sessionConfirmationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Session Confirmed</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #555; }
        .value { margin-top: 5px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Tutoring Session Confirmed</h1>
        </div>
        <div class="content">
            <div class="field">
                <div class="label">Student:</div>
                <div class="value">{{.StudentName}}</div>
            </div>
            <div class="field">
                <div class="label">Subject:</div>
                <div class="value">{{.Subject}}</div>
            </div>
            <div class="field">
                <div class="label">When:</div>
                <div class="value">{{.ScheduledAt.Format "Monday, 2 January 2006 at 15:04 MST"}}</div>
            </div>
            <div class="field">
                <div class="label">Duration:</div>
                <div class="value">{{.DurationMin}} minutes</div>
            </div>
        </div>
        <div class="footer">
            <p>You can reschedule or cancel this session from your dashboard.</p>
        </div>
    </div>
</body>
</html>`

// SendSessionConfirmation sends a booking confirmation to the tutor
func (s *EmailService) SendSessionConfirmation(data SessionConfirmationData) error {
	// Parse and execute the template
	tmpl, err := template.New("session_confirmation").Parse(sessionConfirmationTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := fmt.Sprintf("Session confirmed: %s with %s", data.Subject, data.StudentName)

	// Construct MIME message
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		data.RecipientEmail,
		subject,
		body.String(),
	))

	// Setup SMTP authentication
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{data.RecipientEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
