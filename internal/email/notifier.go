package email

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fishmad/grokstatev3-sub001/internal/config"
)

// IAdminNotifier alerts administrators about a listing export that has
// exhausted its retry budget. Notification is fire-and-forget: delivery
// failures are logged and never surface to the caller.
type IAdminNotifier interface {
	NotifyAdmins(ctx context.Context, subject string, propertyID int64, headline, errorDetail string)
}

// adminNotifier implements IAdminNotifier over an email Sender.
type adminNotifier struct {
	cfg    *config.Config
	sender Sender
}

// NewAdminNotifier creates a new admin notifier.
func NewAdminNotifier(cfg *config.Config, sender Sender) IAdminNotifier {
	return &adminNotifier{cfg: cfg, sender: sender}
}

// NotifyAdmins sends one alert email to every configured admin address.
func (n *adminNotifier) NotifyAdmins(ctx context.Context, subject string, propertyID int64, headline, errorDetail string) {
	if len(n.cfg.AdminEmails) == 0 {
		log.Printf("WARN no admin emails configured, dropping alert for property %d (%s)", propertyID, subject)
		return
	}

	fullSubject := fmt.Sprintf("[%s] %s: property %d", n.cfg.AppName, subject, propertyID)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(n.cfg.AdminEmails, ", ")))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", n.cfg.SmtpFromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", fullSubject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(fmt.Sprintf("Property ID: %d\r\n", propertyID))
	sb.WriteString(fmt.Sprintf("Headline: %s\r\n", headline))
	sb.WriteString(fmt.Sprintf("Last failure: %s\r\n", errorDetail))
	sb.WriteString("\r\nAll export attempts for this listing have failed. No further retries will be made.\r\n")

	if err := n.sender.Send(ctx, n.cfg.AdminEmails, fullSubject, []byte(sb.String())); err != nil {
		log.Printf("ERROR failed to deliver admin alert for property %d: %v", propertyID, err)
	}
}
