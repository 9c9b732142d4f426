// Package email delivers generated reports over SMTP.
package email

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/PauloMNogueira/adam-sandler-news-agent/report"
)

const maxSendAttempts = 3

// retryUnit scales the backoff between attempts. Tests shrink it.
var retryUnit = time.Second

// Config holds the SMTP settings. Gmail requires an app password on port
// 587, not the account password.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
}

// Validate checks that every field required to open an SMTP session is set.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.Port == "" {
		return fmt.Errorf("SMTP port is required")
	}
	if c.Username == "" {
		return fmt.Errorf("SMTP username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("SMTP password is required")
	}
	return nil
}

// Sender sends reports through one SMTP account.
type Sender struct {
	config Config

	// sendMail is swapped out in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender creates a sender after validating the config.
func NewSender(cfg Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sender{config: cfg, sendMail: smtp.SendMail}, nil
}

// ValidateAddress reports whether addr is a parseable RFC 5322 address.
func ValidateAddress(addr string) error {
	if _, err := mail.ParseAddress(addr); err != nil {
		return fmt.Errorf("invalid email address %q: %w", addr, err)
	}
	return nil
}

// SendReport emails the report as HTML to the recipient, falling back to
// nothing on render failure rather than sending a broken message.
func (s *Sender) SendReport(ctx context.Context, r *report.Report, recipient string) error {
	if err := ValidateAddress(recipient); err != nil {
		return err
	}

	body, err := r.HTML()
	if err != nil {
		return err
	}

	msg := s.buildMessage(recipient, s.subject(r), "text/html; charset=UTF-8", body)
	return s.sendWithRetry(ctx, recipient, msg)
}

// SendReportText emails the plain-text summary of the report.
func (s *Sender) SendReportText(ctx context.Context, r *report.Report, recipient string) error {
	if err := ValidateAddress(recipient); err != nil {
		return err
	}

	msg := s.buildMessage(recipient, s.subject(r), "text/plain; charset=UTF-8", r.Summary())
	return s.sendWithRetry(ctx, recipient, msg)
}

func (s *Sender) subject(r *report.Report) string {
	return fmt.Sprintf("%s (%d articles)", r.Title, r.Count())
}

// buildMessage assembles an RFC 5322 message. Headers are separated from the
// body by a blank CRLF line.
func (s *Sender) buildMessage(to, subject, contentType, body string) []byte {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.config.Username)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: %s\r\n", contentType)
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return []byte(msg.String())
}

// sendWithRetry retries with exponential backoff: 2s, then 4s between
// attempts. Transient SMTP failures usually clear within that window.
func (s *Sender) sendWithRetry(ctx context.Context, recipient string, msg []byte) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	addr := s.config.Host + ":" + s.config.Port

	var lastErr error
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("email send cancelled: %w", err)
			}
			wait := time.Duration(1<<attempt) * retryUnit
			log.Printf("WARN: retrying email send in %v", wait)
			select {
			case <-ctx.Done():
				return fmt.Errorf("email send cancelled: %w", ctx.Err())
			case <-time.After(wait):
			}
		}

		if err := s.sendMail(addr, auth, s.config.Username, []string{recipient}, msg); err != nil {
			lastErr = err
			log.Printf("WARN: email send failed (attempt %d/%d): %v", attempt+1, maxSendAttempts, err)
			continue
		}

		log.Printf("INFO: report emailed to %s", recipient)
		return nil
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxSendAttempts, lastErr)
}
