package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewUsesIsolatedRegistries(t *testing.T) {
	a := New("ayursutra")
	b := New("ayursutra")

	a.EmailsSent.WithLabelValues("welcome", Outcome(true)).Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.EmailsSent.WithLabelValues("welcome", "success")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.EmailsSent.WithLabelValues("welcome", "success")))
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New("ayursutra")
	m.AuthAttempts.WithLabelValues("login", Outcome(false)).Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ayursutra_auth_attempts_total{operation="login",outcome="failure"} 1`)
}
