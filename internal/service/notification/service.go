package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayursutra/clinic-api/internal/email"
	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/pkg/metrics"
)

const (
	defaultSendTimeout = 30 * time.Second
	templateCustom     = "custom"
)

// Service renders and sends transactional email. Send failures are
// reported as values and never abort the caller.
type Service struct {
	sender   email.Sender
	renderer *email.Renderer
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	timeout  time.Duration

	wg sync.WaitGroup
}

func NewService(sender email.Sender, renderer *email.Renderer, m *metrics.Metrics, logger zerolog.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Service{
		sender:   sender,
		renderer: renderer,
		metrics:  m,
		logger:   logger.With().Str("component", "notification").Logger(),
		timeout:  timeout,
	}
}

// Send delivers an already composed message.
func (s *Service) Send(ctx context.Context, to, subject, html, text string) model.SendResult {
	return s.deliver(ctx, templateCustom, &model.EmailMessage{To: to, Subject: subject, HTML: html, Text: text})
}

func (s *Service) Welcome(ctx context.Context, p *model.Practitioner) model.SendResult {
	msg, err := s.renderer.Welcome(p)
	return s.renderAndDeliver(ctx, email.TemplateWelcome, msg, err)
}

func (s *Service) PasswordReset(ctx context.Context, to, token string) model.SendResult {
	msg, err := s.renderer.PasswordReset(to, token)
	return s.renderAndDeliver(ctx, email.TemplateReset, msg, err)
}

func (s *Service) AppointmentReminder(ctx context.Context, patient *model.Patient, therapy *model.TherapySchedule) model.SendResult {
	msg, err := s.renderer.AppointmentReminder(patient, therapy)
	return s.renderAndDeliver(ctx, email.TemplateReminder, msg, err)
}

func (s *Service) TherapyCompletion(ctx context.Context, patient *model.Patient, therapy *model.TherapySchedule) model.SendResult {
	msg, err := s.renderer.TherapyCompletion(patient, therapy)
	return s.renderAndDeliver(ctx, email.TemplateCompletion, msg, err)
}

func (s *Service) Test(ctx context.Context, to string) model.SendResult {
	msg, err := s.renderer.Test(to)
	return s.renderAndDeliver(ctx, email.TemplateTest, msg, err)
}

func (s *Service) renderAndDeliver(ctx context.Context, template string, msg *model.EmailMessage, err error) model.SendResult {
	if err != nil {
		s.logger.Error().Err(err).Str("template", template).Msg("Failed to render email")
		s.metrics.EmailsSent.WithLabelValues(template, metrics.Outcome(false)).Inc()
		return model.SendResult{Success: false, Error: err.Error()}
	}
	return s.deliver(ctx, template, msg)
}

func (s *Service) deliver(ctx context.Context, template string, msg *model.EmailMessage) model.SendResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	id, err := s.sender.Send(ctx, msg)
	s.metrics.EmailLatency.Observe(time.Since(start).Seconds())
	s.metrics.EmailsSent.WithLabelValues(template, metrics.Outcome(err == nil)).Inc()

	if err != nil {
		s.logger.Error().
			Err(err).
			Str("template", template).
			Str("subject", msg.Subject).
			Msg("Email sending failed")
		return model.SendResult{Success: false, Error: err.Error()}
	}

	s.logger.Info().
		Str("template", template).
		Str("message_id", id).
		Msg("Email sent successfully")
	return model.SendResult{Success: true, MessageID: id}
}

// Go runs fn in the background on a context detached from the request,
// bounded by the send timeout.
func (s *Service) Go(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Interface("panic", r).Msg("Background email panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until every send started with Go has finished or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
