// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Email is a fully rendered message ready to send.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP settings. A Mailer with an empty Host is unconfigured
// and silently drops messages (useful in dev and tests).
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // sender address
	FromName string // display name, e.g. "Applications Team"
}

// Mailer sends email over SMTP. Safe for concurrent use; each Send dials a
// fresh connection.
type Mailer struct {
	cfg Config
	log *zap.Logger
}

// New creates a Mailer. Pass an empty Config.Host to get a no-op mailer.
func New(cfg Config, logger *zap.Logger) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg, log: logger}
}

// Configured reports whether SMTP settings are present.
func (m *Mailer) Configured() bool {
	return m.cfg.Host != ""
}

// Send delivers the email. Returns true on success. Failures are logged
// with the error classified (auth vs connection vs other) so operators can
// tell a bad password from a firewall problem; the caller only needs the
// bool because delivery is best-effort.
func (m *Mailer) Send(ctx context.Context, email Email) bool {
	if !m.Configured() {
		m.log.Info("mailer not configured, dropping email",
			zap.String("to", email.To),
			zap.String("subject", email.Subject))
		return false
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		m.log.Error("invalid from address", zap.Error(err), zap.String("from", m.cfg.From))
		return false
	}
	if err := msg.To(email.To); err != nil {
		m.log.Error("invalid recipient address", zap.Error(err), zap.String("to", email.To))
		return false
	}
	msg.Subject(email.Subject)
	if email.TextBody != "" {
		msg.SetBodyString(gomail.TypeTextPlain, email.TextBody)
	}
	if email.HTMLBody != "" {
		if email.TextBody != "" {
			msg.AddAlternativeString(gomail.TypeTextHTML, email.HTMLBody)
		} else {
			msg.SetBodyString(gomail.TypeTextHTML, email.HTMLBody)
		}
	}

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTimeout(10*time.Second),
	)
	if err != nil {
		m.log.Error("smtp client setup failed", zap.Error(err))
		return false
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logSendError(err, email.To)
		return false
	}

	m.log.Info("email sent",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return true
}

func (m *Mailer) logSendError(err error, to string) {
	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "auth"):
		m.log.Error("smtp authentication failed, check mail credentials",
			zap.Error(err), zap.String("to", to))
	case strings.Contains(text, "connect") || strings.Contains(text, "dial") || strings.Contains(text, "timeout"):
		m.log.Error("smtp connection failed, check network or host settings",
			zap.Error(err), zap.String("to", to))
	default:
		m.log.Error("email send failed", zap.Error(err), zap.String("to", to))
	}
}
