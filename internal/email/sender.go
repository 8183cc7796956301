package email

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	mail "github.com/wneessen/go-mail"

	"oxyspa/b2b/internal/config"
)

// Sender defines the interface for sending plain-text emails.
type Sender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// NewSender returns an SMTP sender, or a LoggingSender when no SMTP host is configured.
func NewSender(cfg *config.Config) Sender {
	if cfg.SmtpHost == "" {
		log.Println("SMTP host not configured, using logging email sender.")
		return &LoggingSender{cfg: cfg}
	}
	return &SMTPSender{cfg: cfg}
}

// SMTPSender delivers mail through the configured SMTP relay.
type SMTPSender struct {
	cfg *config.Config
}

// buildMessage assembles the outgoing message.
func (s *SMTPSender) buildMessage(to []string, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.SmtpFromAddress); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

// Send sends an email using SMTP.
func (s *SMTPSender) Send(ctx context.Context, to []string, subject, body string) error {
	msg, err := s.buildMessage(to, subject, body)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.SmtpPort),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if s.cfg.SmtpUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.SmtpUsername),
			mail.WithPassword(s.cfg.SmtpPassword),
		)
	}

	client, err := mail.NewClient(s.cfg.SmtpHost, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		log.Printf("Failed to send email via SMTP to %v: %v", to, err)
		return fmt.Errorf("smtp error: %w", err)
	}
	log.Printf("Email sent via SMTP to %v (Subject: %s)", to, subject)
	return nil
}

// LoggingSender just logs email details. Used when SMTP isn't configured.
type LoggingSender struct {
	cfg *config.Config
}

func (s *LoggingSender) Send(ctx context.Context, to []string, subject, body string) error {
	log.Printf("--- Sending Email (Logged) ---")
	log.Printf("From: %s", s.cfg.SmtpFromAddress)
	log.Printf("To: %s", strings.Join(to, ", "))
	log.Printf("Subject: %s", subject)
	log.Println(body)
	log.Println("--- End Email ---")
	return nil
}
