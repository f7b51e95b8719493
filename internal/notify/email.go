package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"modbot/internal/config"
	"modbot/internal/core"
)

// alertEmailTemplate renders a single alert as a small responsive HTML email.
var alertEmailTemplate = template.Must(template.New("alert").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
</head>
<body style="margin:0; padding:0; background-color:#f8fafc; font-family:-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;">
    <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%">
        <tr>
            <td align="center" style="padding:24px;">
                <div style="max-width:600px; background-color:#ffffff; border:1px solid #e2e8f0; border-radius:8px; overflow:hidden;">
                    <div style="background-color:{{.SeverityColor}}; color:#ffffff; padding:16px 24px;">
                        <h1 style="margin:0; font-size:18px;">{{.Title}}</h1>
                        <p style="margin:4px 0 0; font-size:13px; opacity:0.9;">Severity: {{.Severity}}</p>
                    </div>
                    <div style="padding:24px; color:#1e293b; font-size:14px; line-height:1.6;">
                        <p style="margin-top:0;">{{.Description}}</p>
                        {{if .ContentID}}<p style="color:#64748b; font-size:12px;">Content ID: {{.ContentID}}</p>{{end}}
                    </div>
                </div>
            </td>
        </tr>
    </table>
</body>
</html>
`))

type alertEmailData struct {
	Title         string
	Description   string
	Severity      string
	SeverityColor string
	ContentID     string
}

// EmailSender delivers alert notifications over SMTP.
type EmailSender struct {
	smtp config.SMTP
	from string
	name string
}

// NewEmailSender creates an email sender from notification configuration.
func NewEmailSender(cfg config.Notifications) (*EmailSender, error) {
	if cfg.SMTP.Host == "" || cfg.FromAddress == "" {
		return nil, fmt.Errorf("smtp host and from address must be configured")
	}
	return &EmailSender{
		smtp: cfg.SMTP,
		from: cfg.FromAddress,
		name: cfg.FromName,
	}, nil
}

// RenderAlertEmail produces the HTML body for an alert notification.
func RenderAlertEmail(alert core.Alert) (string, error) {
	var buf bytes.Buffer
	err := alertEmailTemplate.Execute(&buf, alertEmailData{
		Title:         alert.Title,
		Description:   alert.Description,
		Severity:      string(alert.Severity),
		SeverityColor: severityColor(alert.Severity),
		ContentID:     alert.ContentID(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render alert email: %w", err)
	}
	return buf.String(), nil
}

// SendAlert delivers an alert to the given address.
func (s *EmailSender) SendAlert(to string, alert core.Alert) error {
	if to == "" {
		return fmt.Errorf("email address not configured")
	}

	body, err := RenderAlertEmail(alert)
	if err != nil {
		return err
	}

	from := s.from
	if s.name != "" {
		from = fmt.Sprintf("%s <%s>", s.name, s.from)
	}

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + alert.Title + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.smtp.Host, s.smtp.Port)
	var auth smtp.Auth
	if s.smtp.Username != "" {
		auth = smtp.PlainAuth("", s.smtp.Username, s.smtp.Password, s.smtp.Host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

func severityColor(severity core.AlertSeverity) string {
	switch severity {
	case core.SeverityCritical:
		return "#dc2626"
	case core.SeverityHigh:
		return "#ea580c"
	case core.SeverityMedium:
		return "#d97706"
	default:
		return "#2563eb"
	}
}
