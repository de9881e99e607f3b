package email

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ayursutra/clinic-api/internal/handler"
	"github.com/ayursutra/clinic-api/internal/model"
	apperrors "github.com/ayursutra/clinic-api/pkg/errors"
	"github.com/ayursutra/clinic-api/pkg/validator"
)

const (
	msgToRequired           = "Email address is required"
	msgPractitionerRequired = "Practitioner ID is required"
	msgReminderRequired     = "Patient ID and appointment ID are required"
	msgCompletionRequired   = "Patient ID and therapy ID are required"
	msgNoPatientEmail       = "Patient has no email address"
	msgResetRequested       = "If the email exists, a password reset link has been sent"
)

// Notifier sends the templated emails.
type Notifier interface {
	Test(ctx context.Context, to string) model.SendResult
	Welcome(ctx context.Context, p *model.Practitioner) model.SendResult
	AppointmentReminder(ctx context.Context, patient *model.Patient, therapy *model.TherapySchedule) model.SendResult
	TherapyCompletion(ctx context.Context, patient *model.Patient, therapy *model.TherapySchedule) model.SendResult
}

type Practitioners interface {
	GetPractitioner(ctx context.Context, id string) (*model.Practitioner, error)
	RequestPasswordReset(ctx context.Context, req *model.PasswordResetRequest) error
}

type Patients interface {
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
}

type Therapies interface {
	GetTherapy(ctx context.Context, id string) (*model.TherapySchedule, error)
}

type Handler struct {
	notifier      Notifier
	practitioners Practitioners
	patients      Patients
	therapies     Therapies
	validator     validator.Validator
}

func NewHandler(notifier Notifier, practitioners Practitioners, patients Patients, therapies Therapies, v validator.Validator) *Handler {
	return &Handler{
		notifier:      notifier,
		practitioners: practitioners,
		patients:      patients,
		therapies:     therapies,
		validator:     v,
	}
}

// RegisterRoutes mounts /email. The middleware guards every route except
// password-reset, which must stay reachable without a session.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	email := r.Group("/email")
	email.POST("/password-reset", h.PasswordReset)

	guarded := email.Group("", middleware...)
	{
		guarded.POST("/test", h.Test)
		guarded.POST("/welcome", h.Welcome)
		guarded.POST("/appointment-reminder", h.AppointmentReminder)
		guarded.POST("/therapy-completion", h.TherapyCompletion)
	}
}

func (h *Handler) Test(c *gin.Context) {
	var req model.TestEmailRequest
	if !h.bind(c, &req, msgToRequired) {
		return
	}

	h.respond(c, h.notifier.Test(c.Request.Context(), req.To), "Test email sent successfully")
}

func (h *Handler) Welcome(c *gin.Context) {
	var req model.WelcomeEmailRequest
	if !h.bind(c, &req, msgPractitionerRequired) {
		return
	}

	practitioner, err := h.practitioners.GetPractitioner(c.Request.Context(), req.PractitionerID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	h.respond(c, h.notifier.Welcome(c.Request.Context(), practitioner), "Welcome email sent successfully")
}

func (h *Handler) AppointmentReminder(c *gin.Context) {
	var req model.AppointmentReminderRequest
	if !h.bind(c, &req, msgReminderRequired) {
		return
	}

	patient, therapy, err := h.lookup(c.Request.Context(), req.PatientID, req.AppointmentID, "Appointment")
	if err != nil {
		handler.Fail(c, err)
		return
	}

	h.respond(c, h.notifier.AppointmentReminder(c.Request.Context(), patient, therapy), "Appointment reminder sent successfully")
}

func (h *Handler) TherapyCompletion(c *gin.Context) {
	var req model.TherapyCompletionRequest
	if !h.bind(c, &req, msgCompletionRequired) {
		return
	}

	patient, therapy, err := h.lookup(c.Request.Context(), req.PatientID, req.TherapyID, "Therapy")
	if err != nil {
		handler.Fail(c, err)
		return
	}

	h.respond(c, h.notifier.TherapyCompletion(c.Request.Context(), patient, therapy), "Therapy completion notification sent successfully")
}

// PasswordReset answers the same way whether or not the email is registered.
func (h *Handler) PasswordReset(c *gin.Context) {
	var req model.PasswordResetRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	if err := h.practitioners.RequestPasswordReset(c.Request.Context(), &req); err != nil {
		handler.Fail(c, err)
		return
	}

	handler.Message(c, msgResetRequested)
}

// lookup loads the patient and the therapy schedule an email is about.
// A missing schedule is reported under resource.
func (h *Handler) lookup(ctx context.Context, patientID, therapyID, resource string) (*model.Patient, *model.TherapySchedule, error) {
	patient, err := h.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}

	therapy, err := h.therapies.GetTherapy(ctx, therapyID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, nil, apperrors.NotFound(resource)
		}
		return nil, nil, err
	}

	if patient.Email == "" {
		return nil, nil, apperrors.Validation(msgNoPatientEmail)
	}
	return patient, therapy, nil
}

func (h *Handler) bind(c *gin.Context, req interface{}, requiredMsg string) bool {
	if !handler.BindJSON(c, req) {
		return false
	}
	if err := h.validator.Validate(req); err != nil {
		handler.Fail(c, apperrors.Validation(requiredMsg))
		return false
	}
	return true
}

func (h *Handler) respond(c *gin.Context, result model.SendResult, message string) {
	if !result.Success {
		handler.Fail(c, apperrors.EmailFailed(result.Error))
		return
	}

	handler.OK(c, gin.H{
		"message":   message,
		"messageId": result.MessageID,
	})
}
