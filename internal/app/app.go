package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/ayursutra/clinic-api/internal/config"
	"github.com/ayursutra/clinic-api/internal/email"
	"github.com/ayursutra/clinic-api/internal/handler"
	authhandler "github.com/ayursutra/clinic-api/internal/handler/auth"
	emailhandler "github.com/ayursutra/clinic-api/internal/handler/email"
	"github.com/ayursutra/clinic-api/internal/handler/health"
	patienthandler "github.com/ayursutra/clinic-api/internal/handler/patient"
	"github.com/ayursutra/clinic-api/internal/handler/prometheus"
	therapyhandler "github.com/ayursutra/clinic-api/internal/handler/therapy"
	"github.com/ayursutra/clinic-api/internal/middleware"
	"github.com/ayursutra/clinic-api/internal/repository"
	"github.com/ayursutra/clinic-api/internal/repository/memory"
	"github.com/ayursutra/clinic-api/internal/repository/postgres"
	"github.com/ayursutra/clinic-api/internal/router"
	authService "github.com/ayursutra/clinic-api/internal/service/auth"
	eventService "github.com/ayursutra/clinic-api/internal/service/event"
	notificationService "github.com/ayursutra/clinic-api/internal/service/notification"
	patientService "github.com/ayursutra/clinic-api/internal/service/patient"
	therapyService "github.com/ayursutra/clinic-api/internal/service/therapy"
	"github.com/ayursutra/clinic-api/pkg/auth"
	"github.com/ayursutra/clinic-api/pkg/circuitbreaker"
	"github.com/ayursutra/clinic-api/pkg/messaging"
	"github.com/ayursutra/clinic-api/pkg/messaging/redis"
	"github.com/ayursutra/clinic-api/pkg/metrics"
	"github.com/ayursutra/clinic-api/pkg/security"
	"github.com/ayursutra/clinic-api/pkg/validator"
)

const (
	metricsNamespace = "ayursutra"
	bcryptCost       = 12
)

// App is the assembled API: storage, broker, services and HTTP router.
type App struct {
	cfg      *config.Config
	logger   zerolog.Logger
	db       *sqlx.DB
	broker   messaging.Broker
	notifier *notificationService.Service
	router   *router.Router
	metrics  *metrics.Metrics
}

type options struct {
	sender email.Sender
	broker messaging.Broker
}

type Option func(*options)

// WithSender replaces the configured mail transport.
func WithSender(s email.Sender) Option {
	return func(o *options) { o.sender = s }
}

// WithBroker replaces the configured event broker.
func WithBroker(b messaging.Broker) Option {
	return func(o *options) { o.broker = b }
}

type stores struct {
	practitioners repository.PractitionerRepository
	patients      repository.PatientRepository
	therapies     repository.TherapyRepository
	ping          health.Pinger
}

// New wires the application. Failing to open storage is an error; a broker
// that cannot be reached is replaced by a no-op publisher.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(metricsNamespace),
	}

	st, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	a.broker = o.broker
	if a.broker == nil {
		a.broker = a.connectBroker(ctx)
	}

	sender := o.sender
	if sender == nil {
		sender = a.newSender()
	}
	renderer, err := email.NewRenderer(cfg.Frontend.URL)
	if err != nil {
		a.closeStorage()
		return nil, err
	}
	a.notifier = notificationService.NewService(sender, renderer, a.metrics, logger, cfg.Email.SendTimeout)

	jwtSvc, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer,
		auth.WithRevocationList(auth.NewRevocationList(cfg.JWT.RevocationCleanup)),
	)
	if err != nil {
		a.closeStorage()
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	v := validator.New()
	events := eventService.NewService(a.broker, cfg.Redis.ChannelPrefix, a.metrics, logger)

	authSvc := authService.NewService(st.practitioners, jwtSvc, security.NewBcryptHasher(bcryptCost), v, a.notifier, a.metrics, logger)
	patientSvc := patientService.NewService(st.patients, events, v, logger)
	therapySvc := therapyService.NewService(st.therapies, st.patients, events, a.notifier, v, logger)

	handlers := router.Handlers{
		Index: handler.NewHandler(),
		Health: health.NewHandler(map[string]health.Pinger{
			"database": st.ping,
			"redis":    a.broker,
		}, logger),
		Metrics:  prometheus.NewHandler(a.metrics),
		Auth:     authhandler.NewHandler(authSvc),
		Patients: patienthandler.NewHandler(patientSvc),
		Therapy:  therapyhandler.NewHandler(therapySvc),
		Email:    emailhandler.NewHandler(a.notifier, authSvc, patientSvc, therapySvc, v),
	}

	a.router = router.NewRouter(a.routerConfig(), handlers, middleware.NewAuthMiddleware(authSvc), a.metrics, logger)
	a.router.Setup()
	return a, nil
}

func (a *App) routerConfig() router.RouterConfig {
	cfg := router.RouterConfig{
		ExposeErrors:   !a.cfg.IsProduction(),
		RequireAuth:    a.cfg.Server.RequireAuth,
		CORSOrigins:    []string{a.cfg.Frontend.URL},
		HSTS:           a.cfg.IsProduction(),
		BodyLimit:      a.cfg.Server.BodyLimit,
		RequestTimeout: a.cfg.Server.RequestTimeout,
	}
	if rl := a.cfg.Server.RateLimit; rl.Enabled {
		cfg.RateLimit = &middleware.RateLimiterConfig{
			RPS:     rl.RequestsPerSecond,
			Burst:   rl.Burst,
			IdleTTL: rl.IdleTTL,
		}
	}
	return cfg
}

func (a *App) openStorage(ctx context.Context) (*stores, error) {
	if a.cfg.Storage.Driver == config.StorageDriverMemory {
		a.logger.Warn().Msg("Using in-memory storage, data is lost on restart")
		practitioners := memory.NewPractitionerRepository()
		return &stores{
			practitioners: practitioners,
			patients:      memory.NewPatientRepository(),
			therapies:     memory.NewTherapyRepository(),
			ping:          practitioners,
		}, nil
	}

	db, err := postgres.NewDB(ctx, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.db = db

	if a.cfg.Database.AutoMigrate {
		n, err := postgres.NewMigrator(db).Up(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		a.logger.Info().Int("applied", n).Msg("Database migrations applied")
	}

	return &stores{
		practitioners: postgres.NewPractitionerRepository(db),
		patients:      postgres.NewPatientRepository(db),
		therapies:     postgres.NewTherapyRepository(db),
		ping:          health.PingFunc(db.PingContext),
	}, nil
}

func (a *App) connectBroker(ctx context.Context) messaging.Broker {
	if a.cfg.Redis.URL == "" {
		a.logger.Info().Msg("No Redis URL configured, domain events are discarded")
		return messaging.NopBroker{}
	}

	broker, err := redis.NewBroker(ctx, redis.Config{
		URL:         a.cfg.Redis.URL,
		PoolSize:    a.cfg.Redis.PoolSize,
		DialTimeout: a.cfg.Redis.DialTimeout,
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("Redis unavailable, domain events are discarded")
		return messaging.NopBroker{}
	}
	return broker
}

func (a *App) newSender() email.Sender {
	ec := a.cfg.Email
	if ec.Username == "" {
		a.logger.Warn().Msg("No SMTP account configured, emails will fail")
		return email.NewDisabledSender()
	}

	smtp := email.NewSMTPSender(email.SMTPConfig{
		Host:     ec.Host,
		Port:     ec.Port,
		Username: ec.Username,
		Password: ec.Password,
		From:     ec.Sender(),
		FromName: ec.FromName,
	})
	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "smtp",
		MaxFailures: ec.Breaker.MaxFailures,
		Timeout:     ec.Breaker.OpenTimeout,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			a.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
	return email.WithBreaker(smtp, breaker)
}

func (a *App) Handler() http.Handler {
	return a.router.Engine()
}

// WaitForEmails blocks until background sends have finished or ctx is done.
func (a *App) WaitForEmails(ctx context.Context) error {
	return a.notifier.Wait(ctx)
}

func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Close waits for in-flight emails, then releases the broker and database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.WaitForEmails(ctx); err != nil {
		errs = append(errs, fmt.Errorf("waiting for email sends: %w", err))
	}
	if err := a.broker.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing broker: %w", err))
	}
	if err := a.closeStorage(); err != nil {
		errs = append(errs, fmt.Errorf("closing database: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) closeStorage() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
