package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"mutuelle-membership/internal/logger"
)

// outgoingMail is a composed message ready for a transport.
type outgoingMail struct {
	To          string
	ToName      string
	Subject     string
	Body        string
	Attachments []Attachment
}

// mailTransport delivers a composed message.
type mailTransport interface {
	name() string
	deliver(ctx context.Context, m outgoingMail) error
}

type emailService struct {
	transport mailTransport
	orgName   string
}

// NewSMTPEmailService sends mail through an SMTP relay.
func NewSMTPEmailService(host string, port int, username, password, from, orgName string) EmailService {
	return &emailService{
		transport: &smtpTransport{host: host, port: port, username: username, password: password, from: from},
		orgName:   orgName,
	}
}

// NewSendGridEmailService sends mail through the SendGrid API.
func NewSendGridEmailService(apiKey, fromEmail, fromName, orgName string) EmailService {
	return &emailService{
		transport: &sendGridTransport{apiKey: apiKey, fromEmail: fromEmail, fromName: fromName},
		orgName:   orgName,
	}
}

func (s *emailService) SendCorrectionRequest(ctx context.Context, email, name, message string) error {
	return s.send(ctx, outgoingMail{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("%s - corrections requested on your membership application", s.orgName),
		Body:    message,
	})
}

func (s *emailService) SendCredentials(ctx context.Context, email, name string, document Attachment, downloadURL string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour membership application has been approved. Your access credentials are attached to this e-mail.\n", name)
	if downloadURL != "" {
		body += fmt.Sprintf("\nYou can also download them here:\n%s\n", downloadURL)
	}
	body += fmt.Sprintf("\nPlease change your password after your first login.\n\nBest regards,\n%s", s.orgName)

	return s.send(ctx, outgoingMail{
		To:          email,
		ToName:      name,
		Subject:     fmt.Sprintf("%s - welcome, your member credentials", s.orgName),
		Body:        body,
		Attachments: []Attachment{document},
	})
}

func (s *emailService) SendRejection(ctx context.Context, email, name, reason string) error {
	body := fmt.Sprintf("Hello %s,\n\nWe are sorry to inform you that your membership application has been rejected.\n\nReason: %s\n\nBest regards,\n%s", name, reason, s.orgName)
	return s.send(ctx, outgoingMail{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("%s - membership application", s.orgName),
		Body:    body,
	})
}

func (s *emailService) send(ctx context.Context, m outgoingMail) error {
	logger.ExternalServiceCall(s.transport.name(), "send", "to", m.To, "subject", m.Subject)
	err := s.transport.deliver(ctx, m)
	logger.ExternalServiceResult(s.transport.name(), "send", err, "to", m.To)
	return err
}

type smtpTransport struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func (t *smtpTransport) name() string { return "smtp" }

func (t *smtpTransport) deliver(ctx context.Context, m outgoingMail) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", t.from)
	msg.SetAddressHeader("To", m.To, m.ToName)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)
	for _, a := range m.Attachments {
		data := a.Data
		msg.Attach(a.Filename,
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}

	d := gomail.NewDialer(t.host, t.port, t.username, t.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

type sendGridTransport struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func (t *sendGridTransport) name() string { return "sendgrid" }

func (t *sendGridTransport) deliver(ctx context.Context, m outgoingMail) error {
	from := mail.NewEmail(t.fromName, t.fromEmail)
	recipient := mail.NewEmail(m.ToName, m.To)
	message := mail.NewSingleEmailPlainText(from, m.Subject, recipient, m.Body)
	for _, a := range m.Attachments {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Data))
		att.SetType(a.ContentType)
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}

	client := sendgrid.NewSendClient(t.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
