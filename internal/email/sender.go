package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/pkg/circuitbreaker"
)

// ErrDisabled is returned by the sender used when no SMTP account is configured.
var ErrDisabled = errors.New("email transport is not configured")

// Sender hands a rendered message to a mail transport and returns its Message-ID.
type Sender interface {
	Send(ctx context.Context, msg *model.EmailMessage) (string, error)
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpSender struct {
	dialer   dialer
	from     string
	fromName string
}

// NewSMTPSender returns a gomail backed sender. STARTTLS is negotiated when
// the server offers it.
func NewSMTPSender(cfg SMTPConfig) Sender {
	return &smtpSender{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (s *smtpSender) Send(ctx context.Context, msg *model.EmailMessage) (string, error) {
	m, id := s.build(msg)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("failed to send email: %w", err)
		}
		return id, nil
	case <-ctx.Done():
		return "", fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

func (s *smtpSender) build(msg *model.EmailMessage) (*gomail.Message, string) {
	id := messageID(s.from)

	m := gomail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", id)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}
	return m, id
}

func messageID(from string) string {
	domain := "ayursutra.local"
	if _, d, ok := strings.Cut(from, "@"); ok && d != "" {
		domain = d
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

type disabledSender struct{}

// NewDisabledSender returns a sender that fails every call with ErrDisabled.
func NewDisabledSender() Sender {
	return disabledSender{}
}

func (disabledSender) Send(context.Context, *model.EmailMessage) (string, error) {
	return "", ErrDisabled
}

type breakerSender struct {
	next    Sender
	breaker *circuitbreaker.CircuitBreaker
}

// WithBreaker stops calling next while the transport keeps failing.
func WithBreaker(next Sender, breaker *circuitbreaker.CircuitBreaker) Sender {
	return &breakerSender{next: next, breaker: breaker}
}

func (b *breakerSender) Send(ctx context.Context, msg *model.EmailMessage) (string, error) {
	var id string
	err := b.breaker.Execute(func() error {
		var err error
		id, err = b.next.Send(ctx, msg)
		return err
	})
	return id, err
}
