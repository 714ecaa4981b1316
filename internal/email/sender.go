package email

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/fishmad/grokstatev3-sub001/internal/config"
)

// Sender defines the interface for sending emails. The rawMessage should
// contain the full message, headers included, properly formatted.
type Sender interface {
	Send(ctx context.Context, to []string, subject string, rawMessage []byte) error
}

// SMTPSender implements the Sender interface using Go's net/smtp package.
type SMTPSender struct {
	cfg  *config.Config
	auth smtp.Auth
	addr string
}

// NewSMTPSender creates a new SMTPSender. When no SMTP host is configured
// it falls back to a logging sender so alerts still land somewhere visible.
func NewSMTPSender(cfg *config.Config) Sender {
	if cfg.SmtpHost == "" {
		log.Println("SMTP host not configured, using logging email sender.")
		return &LoggingSender{cfg: cfg}
	}

	auth := smtp.PlainAuth(
		"", // identity
		cfg.SmtpUsername,
		cfg.SmtpPassword,
		cfg.SmtpHost,
	)
	addr := fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort)

	return &SMTPSender{
		cfg:  cfg,
		auth: auth,
		addr: addr,
	}
}

// Send sends an email using SMTP.
func (s *SMTPSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	err := smtp.SendMail(s.addr, s.auth, s.cfg.SmtpFromAddress, to, rawMessage)
	if err != nil {
		log.Printf("Failed to send email via SMTP to %v: %v", to, err)
		return fmt.Errorf("smtp error: %w", err)
	}
	log.Printf("Email sent successfully via SMTP to %v (Subject: %s)", to, subject)
	return nil
}

// LoggingSender logs email details instead of sending. Useful for
// development or when SMTP isn't configured.
type LoggingSender struct {
	cfg *config.Config
}

// Send logs the email details.
func (s *LoggingSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	log.Printf("--- Sending Email (Logged) ---")
	log.Printf("To: %v", to)
	log.Printf("Configured From: %s", s.cfg.SmtpFromAddress)
	log.Printf("Subject: %s", subject)
	log.Println("--- Raw Message ---")
	log.Println(string(rawMessage))
	log.Println("--- End Email ---")
	return nil
}

// CompositeSender delegates sending to multiple Senders, so an alert can
// be delivered over SMTP and mirrored to a local audit file at once.
type CompositeSender struct {
	senders []Sender
}

// NewCompositeSender creates a new CompositeSender.
func NewCompositeSender(senders ...Sender) *CompositeSender {
	return &CompositeSender{senders: senders}
}

// AddSender adds a sender to the composite sender's list.
func (cs *CompositeSender) AddSender(sender Sender) {
	if sender != nil {
		cs.senders = append(cs.senders, sender)
	}
}

// Send calls every registered sender, collecting all errors into one.
func (cs *CompositeSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if len(cs.senders) == 0 {
		return fmt.Errorf("no senders configured in CompositeSender")
	}

	var allErrors []string
	for _, sender := range cs.senders {
		if err := sender.Send(ctx, to, subject, rawMessage); err != nil {
			allErrors = append(allErrors, err.Error())
		}
	}

	if len(allErrors) > 0 {
		return fmt.Errorf("composite email send failed: [ %s ]", strings.Join(allErrors, "; "))
	}
	return nil
}
