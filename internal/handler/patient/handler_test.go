package patient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayursutra/clinic-api/internal/middleware"
	"github.com/ayursutra/clinic-api/internal/repository/memory"
	"github.com/ayursutra/clinic-api/internal/service/event"
	"github.com/ayursutra/clinic-api/internal/service/patient"
	"github.com/ayursutra/clinic-api/pkg/logger"
	"github.com/ayursutra/clinic-api/pkg/messaging"
	"github.com/ayursutra/clinic-api/pkg/metrics"
	"github.com/ayursutra/clinic-api/pkg/validator"
)

func setup() *gin.Engine {
	gin.SetMode(gin.TestMode)
	events := event.NewService(messaging.NopBroker{}, "test", metrics.New("test"), logger.Nop())
	svc := patient.NewService(memory.NewPatientRepository(), events, validator.New(), logger.Nop())

	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func call(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func create(t *testing.T, r *gin.Engine, body string) map[string]interface{} {
	t.Helper()
	w, out := call(r, http.MethodPost, "/api/patients", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return out["patient"].(map[string]interface{})
}

func TestCreatePatient(t *testing.T) {
	r := setup()

	w, body := call(r, http.MethodPost, "/api/patients", `{"practitionerId":"pr-1","name":"Asha"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Patient created successfully", body["message"])

	p := body["patient"].(map[string]interface{})
	assert.Equal(t, "Asha", p["name"])
	assert.Equal(t, "", p["email"])
	assert.Equal(t, "", p["primaryDosha"])
	assert.NotEmpty(t, p["id"])
}

func TestCreatePatientMissingFields(t *testing.T) {
	r := setup()

	w, body := call(r, http.MethodPost, "/api/patients", `{"name":"Asha"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", body["error"])
	assert.Equal(t, "Practitioner ID and name are required", body["message"])
}

func TestListSearchAndGet(t *testing.T) {
	r := setup()
	asha := create(t, r, `{"practitionerId":"pr-1","name":"Asha","email":"asha@example.com"}`)
	create(t, r, `{"practitionerId":"pr-1","name":"Vikram"}`)
	create(t, r, `{"practitionerId":"pr-2","name":"Ashok"}`)

	w, body := call(r, http.MethodGet, "/api/patients/pr-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["count"])
	assert.Len(t, body["patients"], 2)

	w, body = call(r, http.MethodGet, "/api/patients/search/pr-1?q=ash", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	w, body = call(r, http.MethodGet, "/api/patients/search/pr-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Search query is required", body["message"])

	w, body = call(r, http.MethodGet, "/api/patients/single/"+asha["id"].(string), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha", body["patient"].(map[string]interface{})["name"])

	w, body = call(r, http.MethodGet, "/api/patients/nobody", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["count"])
	assert.Equal(t, []interface{}{}, body["patients"])
}

func TestUpdatePatientPartial(t *testing.T) {
	r := setup()
	p := create(t, r, `{"practitionerId":"pr-1","name":"Asha","phone":"98450","primaryDosha":"Vata"}`)
	id := p["id"].(string)

	w, body := call(r, http.MethodPut, "/api/patients/"+id, `{"name":"Asha Verma"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Patient updated successfully", body["message"])

	updated := body["patient"].(map[string]interface{})
	assert.Equal(t, "Asha Verma", updated["name"])
	assert.Equal(t, "98450", updated["phone"])
	assert.Equal(t, "Vata", updated["primaryDosha"])

	w, body = call(r, http.MethodPut, "/api/patients/"+id, `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name is required", body["message"])
}

func TestDeletePatient(t *testing.T) {
	r := setup()
	p := create(t, r, `{"practitionerId":"pr-1","name":"Asha"}`)
	id := p["id"].(string)

	w, body := call(r, http.MethodDelete, "/api/patients/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Patient deleted successfully", body["message"])

	for _, missing := range []string{id, uuid.NewString(), "not-a-uuid"} {
		w, body = call(r, http.MethodDelete, "/api/patients/"+missing, "")
		assert.Equal(t, http.StatusNotFound, w.Code, missing)
		assert.Equal(t, "Patient not found", body["message"])
	}
}
