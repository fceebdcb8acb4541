package service

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"freelance/internal/config"
)

// SMTPMailer delivers mail over SMTP with plain auth.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates a mailer for the given SMTP configuration.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendPasswordReset mails a password-reset link.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	body := fmt.Sprintf(
		"From: Support <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: Password Reset Request\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"<p>You requested to reset your password. Click the link below to reset it:</p>"+
			"<a href=%q>Reset Password</a>"+
			"<p>If you did not request this, please ignore this email.</p>\r\n",
		m.cfg.From, to, resetLink,
	)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogMailer logs mail instead of sending it. Used when no SMTP host is
// configured, typically in development.
type LogMailer struct {
	log *logrus.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(log *logrus.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// SendPasswordReset logs the reset link.
func (m *LogMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	m.log.WithFields(logrus.Fields{
		"to":   to,
		"link": resetLink,
	}).Info("password reset mail (delivery disabled)")
	return nil
}
