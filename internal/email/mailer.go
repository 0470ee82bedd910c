package email

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Mailer sends transactional mail to clients.
type Mailer interface {
	// SendInvite mails a client their invite link so they can set a
	// password and activate their account.
	SendInvite(ctx context.Context, to, clientName, trainerName, inviteToken string) error
}

// SMTPConfig holds the connection settings for an SMTP relay.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	InviteURL string // Base URL the invite token is appended to
}

type smtpMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a Mailer backed by a plain SMTP relay.
func NewSMTPMailer(cfg SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) SendInvite(ctx context.Context, to, clientName, trainerName, inviteToken string) error {
	inviteLink := fmt.Sprintf("%s?token=%s", m.cfg.InviteURL, inviteToken)

	var body strings.Builder
	body.WriteString(fmt.Sprintf("From: %s\r\n", m.cfg.From))
	body.WriteString(fmt.Sprintf("To: %s\r\n", to))
	body.WriteString(fmt.Sprintf("Subject: %s invited you to start training\r\n", trainerName))
	body.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	body.WriteString(fmt.Sprintf("Hi %s,\r\n\r\n", clientName))
	body.WriteString(fmt.Sprintf("%s has invited you to track your training together.\r\n", trainerName))
	body.WriteString(fmt.Sprintf("Follow this link to set your password and get started:\r\n\r\n%s\r\n", inviteLink))

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	// smtp.SendMail has no context hook; check for cancellation up front.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body.String())); err != nil {
		log.Printf("ERROR: Failed to send invite email to %s: %v", to, err)
		return err
	}

	log.Printf("INFO: Invite email sent to %s", to)
	return nil
}
