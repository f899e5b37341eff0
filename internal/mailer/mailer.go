package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Config holds the SMTP account used for confirmation mail.
type Config struct {
	Host     string
	Port     int
	From     string
	Password string
}

// SendRegistrationEmail sends a confirmation to the student after their
// registration has been committed.
func SendRegistrationEmail(log *zerolog.Logger, cfg Config, studentName, eventName string, tickets int, recipient string) error {
	subject := "Registration confirmed"
	body := fmt.Sprintf(
		"Hello %s!\n\nYour registration for \"%s\" (%d ticket(s)) has been recorded.\nSee you there!",
		studentName, eventName, tickets,
	)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		cfg.From, recipient, subject, body,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	auth := smtp.PlainAuth("", cfg.From, cfg.Password, cfg.Host)

	if err := smtp.SendMail(addr, auth, cfg.From, []string{recipient}, []byte(msg)); err != nil {
		log.Warn().Msgf("failed to send email to %s: %v", recipient, err)
		return fmt.Errorf("send email: %w", err)
	}

	log.Info().Msgf("confirmation email sent to %s", recipient)
	return nil
}
