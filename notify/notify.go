package notify

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/rs/zerolog/log"
)

// Notifier sends best-effort emails. Callers log and swallow errors; a failed
// notification must never fail the payment or order operation behind it.
type Notifier interface {
	PaymentConfirmed(email, orderNumber string, amount string) error
	PaymentFailed(email, orderNumber, reason string) error
}

type smtpNotifier struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewSMTPNotifier reads SMTP_* env vars. Falls back to a log-only notifier
// when no host is configured (local dev).
func NewSMTPNotifier() Notifier {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Warn().Msg("SMTP_HOST not set, using log-only notifier")
		return &logNotifier{}
	}
	return &smtpNotifier{
		host: host,
		port: os.Getenv("SMTP_PORT"),
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASSWORD"),
		from: os.Getenv("SMTP_FROM"),
	}
}

func (n *smtpNotifier) PaymentConfirmed(email, orderNumber, amount string) error {
	subject := "Payment received for order " + orderNumber
	body := fmt.Sprintf("We received your payment of %s for order %s. Your delivery is on the way.", amount, orderNumber)
	return n.send(email, subject, body)
}

func (n *smtpNotifier) PaymentFailed(email, orderNumber, reason string) error {
	subject := "Payment problem on order " + orderNumber
	body := fmt.Sprintf("A charge on order %s did not go through: %s. Please update your payment details.", orderNumber, reason)
	return n.send(email, subject, body)
}

func (n *smtpNotifier) send(to, subject, body string) error {
	msg := []byte("From: " + n.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", n.user, n.pass, n.host)
	return smtp.SendMail(n.host+":"+n.port, auth, n.from, []string{to}, msg)
}

// logNotifier only logs; used when mail is not configured.
type logNotifier struct{}

func (l *logNotifier) PaymentConfirmed(email, orderNumber, amount string) error {
	log.Info().Str("email", email).Str("order", orderNumber).Str("amount", amount).Msg("payment confirmation notification")
	return nil
}

func (l *logNotifier) PaymentFailed(email, orderNumber, reason string) error {
	log.Info().Str("email", email).Str("order", orderNumber).Str("reason", reason).Msg("payment failure notification")
	return nil
}
