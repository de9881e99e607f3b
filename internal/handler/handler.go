package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

// Handler serves the API index and the not-found fallback.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.Index)
}

func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "AyurSutra API is running",
		"version": Version,
		"endpoints": gin.H{
			"auth":      "/api/practitioner",
			"patients":  "/api/patients",
			"therapies": "/api/therapy",
			"email":     "/api/email",
		},
		"documentation": gin.H{
			"auth": gin.H{
				"POST /api/practitioner/register":       "Register a new practitioner",
				"POST /api/practitioner/login":          "Login practitioner",
				"GET /api/practitioner/profile":         "Get practitioner profile (protected)",
				"POST /api/practitioner/logout":         "Revoke the presented token (protected)",
				"POST /api/practitioner/reset-password": "Set a new password with a reset token",
			},
			"patients": gin.H{
				"GET /api/patients/:practitionerId":        "Get all patients for a practitioner",
				"GET /api/patients/single/:id":             "Get a specific patient",
				"POST /api/patients":                       "Create a new patient",
				"PUT /api/patients/:id":                    "Update a patient",
				"DELETE /api/patients/:id":                 "Delete a patient",
				"GET /api/patients/search/:practitionerId": "Search patients",
			},
			"therapies": gin.H{
				"POST /api/therapy":                             "Create a therapy schedule",
				"GET /api/therapy/practitioner/:practitionerId": "Get schedules for practitioner",
				"GET /api/therapy/patient/:patientId":           "Get schedules for patient",
				"GET /api/therapy/:id":                          "Get specific therapy schedule",
				"PUT /api/therapy/:id":                          "Update therapy schedule",
				"POST /api/therapy/feedback/:id":                "Add feedback to therapy",
				"DELETE /api/therapy/:id":                       "Delete therapy schedule",
				"GET /api/therapy/stats/:practitionerId":        "Get therapy statistics",
			},
			"email": gin.H{
				"POST /api/email/test":                 "Send test email",
				"POST /api/email/welcome":              "Send welcome email to practitioner",
				"POST /api/email/appointment-reminder": "Send appointment reminder",
				"POST /api/email/therapy-completion":   "Send therapy completion notification",
				"POST /api/email/password-reset":       "Send password reset email",
			},
		},
	})
}

// NotFound answers unmatched routes with a hint of the main endpoints.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "Route not found",
		"message": fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.RequestURI()),
		"availableEndpoints": gin.H{
			"health":    "GET /health",
			"api":       "GET /api",
			"auth":      "POST /api/practitioner/register, POST /api/practitioner/login",
			"patients":  "GET /api/patients/:practitionerId, POST /api/patients",
			"therapies": "POST /api/therapy, GET /api/therapy/practitioner/:practitionerId",
		},
	})
}
