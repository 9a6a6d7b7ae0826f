// Package mailer is the notification boundary. The transactional email
// service is an external collaborator; everything behind Sender is
// best-effort and must never fail a transition.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"studiopm/config"
)

type Sender interface {
	Send(recipients []string, template string, data map[string]string) error
}

// templates maps a transition template name to a subject/body pair. Body
// placeholders are {key} from the data map.
var templates = map[string][2]string{
	"proposal_approved":  {"Proposal approved", "Your proposal {title} was approved."},
	"proposal_rejected":  {"Proposal rejected", "Your proposal {title} was rejected. Reason: {reason}"},
	"timeoff_approved":   {"Time off approved", "Your time-off request was approved."},
	"timeoff_rejected":   {"Time off rejected", "Your time-off request was rejected. Reason: {reason}"},
	"variation_approved": {"Variation approved", "Your variation {title} was approved."},
	"variation_rejected": {"Variation rejected", "Your variation {title} was rejected. Reason: {reason}"},
	"payment_received":   {"Payment received", "A payment of {amount} was recorded on {project}."},
}

// Render produces the subject and body for a template.
func Render(template string, data map[string]string) (string, string, error) {
	t, ok := templates[template]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", template)
	}
	subject, body := t[0], t[1]
	for k, v := range data {
		body = strings.ReplaceAll(body, "{"+k+"}", v)
	}
	return subject, body, nil
}

// SMTPSender sends through the configured SMTP relay.
type SMTPSender struct{}

func (SMTPSender) Send(recipients []string, template string, data map[string]string) error {
	subject, body, err := Render(template, data)
	if err != nil {
		return err
	}
	msg := []byte("From: " + config.SMTPFrom + "\r\n" +
		"To: " + strings.Join(recipients, ", ") + "\r\n" +
		"Subject: " + subject + "\r\n\r\n" +
		body + "\r\n")

	addr := config.SMTPHost + ":" + config.SMTPPort
	var auth smtp.Auth
	if config.SMTPUser != "" {
		auth = smtp.PlainAuth("", config.SMTPUser, config.SMTPPass, config.SMTPHost)
	}
	return smtp.SendMail(addr, auth, config.SMTPFrom, recipients, msg)
}

// LogSender is the dev default when no SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(recipients []string, template string, data map[string]string) error {
	subject, body, err := Render(template, data)
	if err != nil {
		return err
	}
	log.Printf("mail (dry-run) to=%s subject=%q body=%q", strings.Join(recipients, ","), subject, body)
	return nil
}

// Default picks the sender for the current configuration.
func Default() Sender {
	if config.SMTPHost == "" {
		return LogSender{}
	}
	return SMTPSender{}
}
