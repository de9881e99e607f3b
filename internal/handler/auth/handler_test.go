package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayursutra/clinic-api/internal/middleware"
	"github.com/ayursutra/clinic-api/internal/model"
	apperrors "github.com/ayursutra/clinic-api/pkg/errors"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*model.AuthResult)
	return res, args.Error(1)
}

func (m *mockService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*model.AuthResult)
	return res, args.Error(1)
}

func (m *mockService) GetProfile(ctx context.Context, token string) (*model.Practitioner, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(*model.Practitioner)
	return p, args.Error(1)
}

func (m *mockService) Logout(token string) error {
	return m.Called(token).Error(0)
}

func (m *mockService) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

func setup() (*gin.Engine, *mockService) {
	gin.SetMode(gin.TestMode)
	svc := &mockService{}
	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r, svc
}

func call(r *gin.Engine, method, path, body, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func practitioner() *model.Practitioner {
	return &model.Practitioner{
		Base:  model.Base{ID: uuid.New()},
		Name:  "Dr. Rao",
		Email: "rao@example.com",
	}
}

func TestRegister(t *testing.T) {
	r, svc := setup()
	p := practitioner()
	svc.On("Register", mock.Anything, &model.RegisterRequest{
		Name: "Dr. Rao", Email: "rao@example.com", Password: "secret1",
	}).Return(&model.AuthResult{Practitioner: p, Token: "jwt"}, nil)

	w, body := call(r, http.MethodPost, "/api/practitioner/register",
		`{"name":"Dr. Rao","email":"rao@example.com","password":"secret1"}`, "")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Practitioner registered successfully", body["message"])
	assert.Equal(t, "jwt", body["token"])
	assert.NotContains(t, w.Body.String(), "password")
	svc.AssertExpectations(t)
}

func TestRegisterDuplicate(t *testing.T) {
	r, svc := setup()
	svc.On("Register", mock.Anything, mock.Anything).
		Return(nil, apperrors.DuplicateUser("Practitioner with this email already exists"))

	w, body := call(r, http.MethodPost, "/api/practitioner/register",
		`{"name":"Dr. Rao","email":"rao@example.com","password":"secret1"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", body["error"])
	assert.Equal(t, "Practitioner with this email already exists", body["message"])
}

func TestRegisterEmptyBodyReachesValidation(t *testing.T) {
	r, svc := setup()
	svc.On("Register", mock.Anything, &model.RegisterRequest{}).
		Return(nil, apperrors.Validation("Name, email, and password are required"))

	w, body := call(r, http.MethodPost, "/api/practitioner/register", "", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name, email, and password are required", body["message"])
}

func TestMalformedJSON(t *testing.T) {
	r, svc := setup()

	w, body := call(r, http.MethodPost, "/api/practitioner/login", `{"email":`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON", body["error"])
	assert.Equal(t, "Request body contains invalid JSON", body["message"])
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	r, svc := setup()
	svc.On("Login", mock.Anything, mock.Anything).
		Return(&model.AuthResult{Practitioner: practitioner(), Token: "jwt"}, nil).Once()
	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, apperrors.Authentication("Invalid credentials")).Once()

	w, body := call(r, http.MethodPost, "/api/practitioner/login", `{"email":"rao@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", body["message"])

	w, body = call(r, http.MethodPost, "/api/practitioner/login", `{"email":"rao@example.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication failed", body["error"])
	assert.Equal(t, "Invalid credentials", body["message"])
}

func TestProfile(t *testing.T) {
	r, svc := setup()
	p := practitioner()
	svc.On("GetProfile", mock.Anything, "jwt").Return(p, nil)
	svc.On("GetProfile", mock.Anything, "").Return(nil, apperrors.AuthenticationRequired())

	w, body := call(r, http.MethodGet, "/api/practitioner/profile", "", "jwt")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, p.ID.String(), body["practitioner"].(map[string]interface{})["id"])

	w, body = call(r, http.MethodGet, "/api/practitioner/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", body["message"])
}

func TestLogoutAndReset(t *testing.T) {
	r, svc := setup()
	svc.On("Logout", "jwt").Return(nil)
	svc.On("ResetPassword", mock.Anything, &model.ResetPasswordRequest{Token: "abc", Password: "newpass"}).Return(nil)

	w, body := call(r, http.MethodPost, "/api/practitioner/logout", "", "jwt")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", body["message"])

	w, body = call(r, http.MethodPost, "/api/practitioner/reset-password", `{"token":"abc","password":"newpass"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password has been reset successfully", body["message"])
	svc.AssertExpectations(t)
}
