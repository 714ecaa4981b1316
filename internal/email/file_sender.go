package email

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileSender implements the Sender interface by appending email content
// to a file. Used to keep a local audit trail of export-failure alerts.
type FileSender struct {
	filePath string
}

// NewFileSender creates a new FileSender, ensuring the directory for the
// audit file exists.
func NewFileSender(filePath string) (Sender, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("email audit file path cannot be empty")
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for email audit file '%s': %w", dir, err)
	}

	return &FileSender{filePath: filePath}, nil
}

// Send appends the raw email message to the configured file.
func (s *FileSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	timestamp := time.Now().Format(time.RFC3339Nano)

	file, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("FileSender: Failed to open audit file '%s': %v", s.filePath, err)
		return fmt.Errorf("failed to open email audit file: %w", err)
	}
	defer file.Close()

	entry := fmt.Sprintf("--- Email Logged at %s (To: %v, Subject: %s) ---\n%s--- End Logged Email ---\n\n",
		timestamp, to, subject, rawMessage)

	if _, err := file.WriteString(entry); err != nil {
		log.Printf("FileSender: Failed to write to audit file '%s': %v", s.filePath, err)
		return fmt.Errorf("failed to write email to audit file: %w", err)
	}

	return nil
}
