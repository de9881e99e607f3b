package model

// EmailMessage is a rendered outbound email.
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// SendResult reports the outcome of a send. Failures are values, not errors.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type TestEmailRequest struct {
	To string `json:"to" validate:"required"`
}

type WelcomeEmailRequest struct {
	PractitionerID string `json:"practitionerId" validate:"required"`
}

type AppointmentReminderRequest struct {
	PatientID     string `json:"patientId" validate:"required"`
	AppointmentID string `json:"appointmentId" validate:"required"`
}

type TherapyCompletionRequest struct {
	PatientID string `json:"patientId" validate:"required"`
	TherapyID string `json:"therapyId" validate:"required"`
}
