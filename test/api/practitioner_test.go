package api_test

import (
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resetTokenPattern = regexp.MustCompile(`token=([0-9a-f]{64})`)

func TestPractitionerRegistrationFlow(t *testing.T) {
	email := uniqueEmail("practitioner")

	registerResp := makeRequest(http.MethodPost, "/api/practitioner/register", map[string]string{
		"name":     "Dr. Arjun Nair",
		"email":    email,
		"password": "vata-pitta",
	}, "")
	require.Equal(t, http.StatusCreated, registerResp.StatusCode, registerResp.RawData)
	assert.True(t, registerResp.IsSuccess())
	assert.Equal(t, "Practitioner registered successfully", registerResp.GetString("message"))
	assert.NotContains(t, registerResp.Object("practitioner"), "password")
	assert.NotContains(t, registerResp.Object("practitioner"), "passwordHash")

	dupResp := makeRequest(http.MethodPost, "/api/practitioner/register", map[string]string{
		"name":     "Someone Else",
		"email":    email,
		"password": "another1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, dupResp.StatusCode)
	assert.Equal(t, "User already exists", dupResp.GetString("error"))

	badLogin := makeRequest(http.MethodPost, "/api/practitioner/login", map[string]string{
		"email":    email,
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, badLogin.StatusCode)
	assert.Equal(t, "Invalid credentials", badLogin.GetString("message"))

	loginResp := makeRequest(http.MethodPost, "/api/practitioner/login", map[string]string{
		"email":    email,
		"password": "vata-pitta",
	}, "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode, loginResp.RawData)
	token := loginResp.GetString("token")
	require.NotEmpty(t, token)

	profileResp := makeRequest(http.MethodGet, "/api/practitioner/profile", nil, token)
	require.Equal(t, http.StatusOK, profileResp.StatusCode)
	assert.Equal(t, email, profileResp.Object("practitioner")["email"])

	logoutResp := makeRequest(http.MethodPost, "/api/practitioner/logout", nil, token)
	assert.Equal(t, http.StatusOK, logoutResp.StatusCode)
	assert.Equal(t, "Logged out successfully", logoutResp.GetString("message"))

	afterLogout := makeRequest(http.MethodGet, "/api/practitioner/profile", nil, token)
	assert.Equal(t, http.StatusUnauthorized, afterLogout.StatusCode)

	waitForEmails(t)
	welcome := mailbox.to(email)
	require.Len(t, welcome, 1)
	assert.Contains(t, welcome[0].HTML, "Dr. Arjun Nair")
}

func TestProfileRequiresToken(t *testing.T) {
	resp := makeRequest(http.MethodGet, "/api/practitioner/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "No token provided", resp.GetString("message"))

	resp = makeRequest(http.MethodGet, "/api/practitioner/profile", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", resp.GetString("error"))
}

func TestPasswordResetFlow(t *testing.T) {
	email := uniqueEmail("reset")
	registerResp := makeRequest(http.MethodPost, "/api/practitioner/register", map[string]string{
		"name":     "Dr. Kavya Menon",
		"email":    email,
		"password": "original",
	}, "")
	require.Equal(t, http.StatusCreated, registerResp.StatusCode, registerResp.RawData)

	unknown := makeRequest(http.MethodPost, "/api/email/password-reset", map[string]string{"email": uniqueEmail("nobody")}, "")
	known := makeRequest(http.MethodPost, "/api/email/password-reset", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, known.StatusCode, known.RawData)
	assert.Equal(t, unknown.Data, known.Data, "responses must not reveal whether the email exists")

	waitForEmails(t)
	var resetHTML string
	for _, m := range mailbox.to(email) {
		if resetTokenPattern.MatchString(m.HTML) {
			resetHTML = m.HTML
		}
	}
	require.NotEmpty(t, resetHTML, "reset email was not sent")
	token := resetTokenPattern.FindStringSubmatch(resetHTML)[1]

	resetResp := makeRequest(http.MethodPost, "/api/practitioner/reset-password", map[string]string{
		"token":    token,
		"password": "replacement",
	}, "")
	require.Equal(t, http.StatusOK, resetResp.StatusCode, resetResp.RawData)

	reused := makeRequest(http.MethodPost, "/api/practitioner/reset-password", map[string]string{
		"token":    token,
		"password": "again-and-again",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, reused.StatusCode)

	oldLogin := makeRequest(http.MethodPost, "/api/practitioner/login", map[string]string{"email": email, "password": "original"}, "")
	assert.Equal(t, http.StatusUnauthorized, oldLogin.StatusCode)

	newLogin := makeRequest(http.MethodPost, "/api/practitioner/login", map[string]string{"email": email, "password": "replacement"}, "")
	assert.Equal(t, http.StatusOK, newLogin.StatusCode)
}

func TestServiceEndpoints(t *testing.T) {
	health := makeRequest(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, health.StatusCode)
	assert.Equal(t, "OK", health.GetString("status"))
	assert.NotEmpty(t, health.GetString("timestamp"))

	index := makeRequest(http.MethodGet, "/api", nil, "")
	assert.Equal(t, http.StatusOK, index.StatusCode)
	assert.NotEmpty(t, index.Object("endpoints"))

	missing := makeRequest(http.MethodDelete, "/api/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	assert.Equal(t, "Cannot DELETE /api/unknown", missing.GetString("message"))

	malformed, err := http.Post(baseURL+"/api/practitioner/login", "application/json", stringsReader("{bad json"))
	require.NoError(t, err)
	defer malformed.Body.Close()
	assert.Equal(t, http.StatusBadRequest, malformed.StatusCode)
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	resp := makeRequest(http.MethodPost, "/api/practitioner/register", map[string]string{
		"name":     "Dr. Long Pass",
		"email":    uniqueEmail("longpass"),
		"password": strings.Repeat("k", 80),
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", resp.GetString("error"))
	assert.Equal(t, "Password must be at most 72 bytes long", resp.GetString("message"))
}
