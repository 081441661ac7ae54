package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/viniciusbm/onboardly/internal/pkg/env"
	"github.com/viniciusbm/onboardly/internal/pkg/metrics/counter"
)

// SMTPSender sends transactional email via SMTP.
type SMTPSender struct{}

// NewSMTPSender creates a sender configured from the environment.
func NewSMTPSender() *SMTPSender {
	return &SMTPSender{}
}

// Send delivers a multipart (text + html) message to a single recipient.
func (s *SMTPSender) Send(to string, subject string, htmlBody string, textBody string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	msg := buildMessage(sender, to, subject, htmlBody, textBody)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
		if cerr := counter.AddEmailSent("smtp"); cerr != nil {
			log.Printf("email counter increment failed: %v", cerr)
		}
	}
	return err
}

const altBoundary = "onboardly-alt-boundary"

func buildMessage(sender, to, subject, htmlBody, textBody string) []byte {
	return []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			fmt.Sprintf("Content-Type: multipart/alternative; boundary=%s\r\n\r\n", altBoundary) +
			fmt.Sprintf("--%s\r\n", altBoundary) +
			"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
			textBody + "\r\n\r\n" +
			fmt.Sprintf("--%s\r\n", altBoundary) +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			htmlBody + "\r\n\r\n" +
			fmt.Sprintf("--%s--\r\n", altBoundary),
	)
}
