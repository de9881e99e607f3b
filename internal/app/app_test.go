package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayursutra/clinic-api/internal/config"
	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/pkg/logger"
	"github.com/ayursutra/clinic-api/pkg/messaging"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []*model.EmailMessage
}

func (s *recordingSender) Send(_ context.Context, msg *model.EmailMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return "<test@ayursutra>", nil
}

func (s *recordingSender) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, m := range s.sent {
		out = append(out, m.To)
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Env:     config.EnvDevelopment,
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		Server: config.ServerConfig{
			BodyLimit:      1 << 20,
			RequestTimeout: 5 * time.Second,
		},
		JWT:      config.JWTConfig{Secret: "test-secret", Issuer: "ayursutra-test", RevocationCleanup: time.Minute},
		Email:    config.EmailConfig{SendTimeout: time.Second},
		Frontend: config.FrontendConfig{URL: "http://localhost:3000"},
	}
}

func newApp(t *testing.T, cfg *config.Config) (*App, *recordingSender) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sender := &recordingSender{}
	a, err := New(context.Background(), cfg, logger.Nop(), WithSender(sender), WithBroker(messaging.NopBroker{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a, sender
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w.Code, out
}

func TestAppServesHealthAndIndex(t *testing.T) {
	a, _ := newApp(t, testConfig())

	code, body := do(t, a.Handler(), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body["status"])

	code, _ = do(t, a.Handler(), http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, code)

	code, body = do(t, a.Handler(), http.MethodGet, "/api", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "AyurSutra API is running", body["message"])

	code, body = do(t, a.Handler(), http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route not found", body["error"])
	assert.NotEmpty(t, body["availableEndpoints"])
}

func TestAppRegisterSendsWelcomeEmail(t *testing.T) {
	a, sender := newApp(t, testConfig())

	code, body := do(t, a.Handler(), http.MethodPost, "/api/practitioner/register", model.RegisterRequest{
		Name:     "Dr. Rao",
		Email:    "rao@example.com",
		Password: "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, body["token"])

	require.NoError(t, a.WaitForEmails(context.Background()))
	assert.Equal(t, []string{"rao@example.com"}, sender.recipients())

	code, body = do(t, a.Handler(), http.MethodGet, "/api/practitioner/profile", nil, body["token"].(string))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
}

func TestAppRequireAuthGuardsResources(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RequireAuth = true
	a, _ := newApp(t, cfg)

	code, body := do(t, a.Handler(), http.MethodGet, "/api/patients/pr-1", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, body["error"])

	code, _ = do(t, a.Handler(), http.MethodPost, "/api/email/password-reset", map[string]string{"email": "x@example.com"}, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestAppRateLimitEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1, IdleTTL: time.Minute}
	a, _ := newApp(t, cfg)

	code, _ := do(t, a.Handler(), http.MethodGet, "/api", nil, "")
	assert.Equal(t, http.StatusOK, code)
	code, body := do(t, a.Handler(), http.MethodGet, "/api", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "Too many requests", body["error"])
}

func TestAppMetricsEndpoint(t *testing.T) {
	a, _ := newApp(t, testConfig())
	do(t, a.Handler(), http.MethodGet, "/api", nil, "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ayursutra_http_requests_total")
}
