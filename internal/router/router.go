package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ayursutra/clinic-api/internal/handler"
	authhandler "github.com/ayursutra/clinic-api/internal/handler/auth"
	emailhandler "github.com/ayursutra/clinic-api/internal/handler/email"
	"github.com/ayursutra/clinic-api/internal/handler/health"
	patienthandler "github.com/ayursutra/clinic-api/internal/handler/patient"
	"github.com/ayursutra/clinic-api/internal/handler/prometheus"
	therapyhandler "github.com/ayursutra/clinic-api/internal/handler/therapy"
	"github.com/ayursutra/clinic-api/internal/middleware"
	"github.com/ayursutra/clinic-api/pkg/metrics"
)

type Handlers struct {
	Index    *handler.Handler
	Health   *health.Handler
	Metrics  *prometheus.Handler
	Auth     *authhandler.Handler
	Patients *patienthandler.Handler
	Therapy  *therapyhandler.Handler
	Email    *emailhandler.Handler
}

type RouterConfig struct {
	// ExposeErrors includes internal error detail in 500 responses.
	ExposeErrors   bool
	RequireAuth    bool
	CORSOrigins    []string
	HSTS           bool
	BodyLimit      int64
	RequestTimeout time.Duration
	// RateLimit disables per-client limiting when nil.
	RateLimit *middleware.RateLimiterConfig
}

type Router struct {
	engine   *gin.Engine
	handlers Handlers
	auth     *middleware.AuthMiddleware
	config   RouterConfig
}

func NewRouter(
	config RouterConfig,
	handlers Handlers,
	auth *middleware.AuthMiddleware,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Router {
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(logger.With().Str("component", "http").Logger()),
		middleware.Metrics(m),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig(config.HSTS)),
		middleware.CORS(middleware.DefaultCORSConfig(config.CORSOrigins...)),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig(config.BodyLimit)),
	)
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}
	engine.Use(middleware.ErrorHandler(config.ExposeErrors))

	return &Router{
		engine:   engine,
		handlers: handlers,
		auth:     auth,
		config:   config,
	}
}

func (r *Router) Setup() {
	root := &r.engine.RouterGroup

	r.handlers.Health.RegisterRoutes(root)
	r.handlers.Metrics.RegisterRoutes(root)
	r.engine.NoRoute(r.handlers.Index.NotFound)

	api := r.engine.Group("/api",
		middleware.NoStore(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: r.config.RequestTimeout}),
	)
	r.handlers.Index.RegisterRoutes(api)
	r.handlers.Auth.RegisterRoutes(api)

	var guard []gin.HandlerFunc
	if r.config.RequireAuth {
		guard = append(guard, r.auth.Authenticate())
	}
	r.handlers.Patients.RegisterRoutes(api, guard...)
	r.handlers.Therapy.RegisterRoutes(api, guard...)
	r.handlers.Email.RegisterRoutes(api, guard...)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
