package mailer

import (
	"context"
	"fmt"
	"time"

	"aura-be/internal/pkg/logger"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Receipt struct {
	ID     string    `json:"id"`
	SentAt time.Time `json:"sent_at"`
}

// Sender delivers one mail. Implementations must be safe for concurrent use.
type Sender interface {
	SendMail(ctx context.Context, m Mail) (Receipt, error)
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
	log    logger.ILogger
}

func NewSMTPSender(host string, port int, username, password, from string, log logger.ILogger) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		log:    log,
	}
}

func (s *smtpSender) SendMail(ctx context.Context, m Mail) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.log.Error("MAILER", "Failed to send mail", map[string]interface{}{"to": m.To, "subject": m.Subject, "error": err})
		return Receipt{}, fmt.Errorf("smtp send: %w", err)
	}

	r := Receipt{ID: uuid.NewString(), SentAt: time.Now()}
	s.log.Info("MAILER", "Mail sent", map[string]interface{}{"to": m.To, "subject": m.Subject, "receipt": r.ID})
	return r, nil
}

type logSender struct {
	log logger.ILogger
}

// NewLogSender returns a Sender that only logs. Used when no SMTP host is configured.
func NewLogSender(log logger.ILogger) Sender {
	return &logSender{log: log}
}

func (s *logSender) SendMail(_ context.Context, m Mail) (Receipt, error) {
	r := Receipt{ID: uuid.NewString(), SentAt: time.Now()}
	s.log.Info("MAILER", "Mail (log only)", map[string]interface{}{
		"to":      m.To,
		"subject": m.Subject,
		"html":    m.HTML,
		"receipt": r.ID,
	})
	return r, nil
}
