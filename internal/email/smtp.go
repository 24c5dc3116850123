package email

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection
// via go-mail. Messages carry a plain-text body with an HTML alternative.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, textContent, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, textContent)
	msg.AddAlternativeString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// SendEventNotification delivers the task progress notification.
func (s *SMTPSender) SendEventNotification(ctx context.Context, toEmail string, data EventNotificationData) error {
	subject := fmt.Sprintf(subjectEventNotificationFmt, data.TaskTitle)
	content, err := renderEmailTemplate("event_notification.html", eventNotificationEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  "Avance registrado",
			CTALabel: "Ver tarea",
			CTAURL:   data.Link,
		},
		TaskTitle:     data.TaskTitle,
		Description:   data.Description,
		ReportContent: data.ReportContent,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, buildEventNotificationText(data), content)
}

// buildEventNotificationText assembles the plain-text body: the event
// description, the report content when present, and the task link.
func buildEventNotificationText(data EventNotificationData) string {
	parts := []string{
		fmt.Sprintf("Se registró un avance en la tarea '%s'.", data.TaskTitle),
		data.Description,
	}
	if data.ReportContent != "" {
		parts = append(parts, "Reporte:\n"+data.ReportContent)
	}
	parts = append(parts, "Ver más: "+data.Link)
	return strings.Join(parts, "\n\n")
}
