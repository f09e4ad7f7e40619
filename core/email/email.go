package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"bookstack/core/config"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a single outgoing email.
type Message struct {
	To        string
	Subject   string
	PlainText string
	HTML      string
}

// Sender delivers emails. All application email (welcome mail, password
// resets) goes through this interface; delivery failures are logged by
// callers and never fail the triggering request.
type Sender interface {
	Send(msg Message) error
}

// NewSender picks a provider implementation from config. An unset provider
// returns an error so the application can run without email.
func NewSender(cfg *config.Config) (Sender, error) {
	switch strings.ToLower(cfg.EmailProvider) {
	case "sendgrid":
		if cfg.SendgridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid provider requires SENDGRID_API_KEY")
		}
		return &sendgridSender{
			client:   sendgrid.NewSendClient(cfg.SendgridAPIKey),
			fromName: cfg.EmailFromName,
			fromAddr: cfg.EmailFromAddress,
		}, nil
	case "postmark":
		if cfg.PostmarkAPIKey == "" {
			return nil, fmt.Errorf("postmark provider requires POSTMARK_API_KEY")
		}
		return &postmarkSender{
			client:   postmark.NewClient(cfg.PostmarkAPIKey, ""),
			fromAddr: cfg.EmailFromAddress,
		}, nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("smtp provider requires SMTP_HOST")
		}
		return &smtpSender{cfg: cfg}, nil
	case "":
		return nil, fmt.Errorf("no email provider configured")
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.EmailProvider)
	}
}

type sendgridSender struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

func (s *sendgridSender) Send(msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromAddr)
	to := mail.NewEmail("", msg.To)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)
	resp, err := s.client.Send(m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

type postmarkSender struct {
	client   *postmark.Client
	fromAddr string
}

func (s *postmarkSender) Send(msg Message) error {
	_, err := s.client.SendEmail(postmark.Email{
		From:     s.fromAddr,
		To:       msg.To,
		Subject:  msg.Subject,
		TextBody: msg.PlainText,
		HtmlBody: msg.HTML,
	})
	return err
}

type smtpSender struct {
	cfg *config.Config
}

func (s *smtpSender) Send(msg Message) error {
	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	body := msg.PlainText
	contentType := "text/plain; charset=utf-8"
	if msg.HTML != "" {
		body = msg.HTML
		contentType = "text/html; charset=utf-8"
	}

	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: %s\r\n\r\n%s",
		s.cfg.EmailFromAddress, msg.To, msg.Subject, contentType, body)

	return smtp.SendMail(addr, auth, s.cfg.EmailFromAddress, []string{msg.To}, []byte(raw))
}
