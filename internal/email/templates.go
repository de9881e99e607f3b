package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/ayursutra/clinic-api/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names, also used as metric labels.
const (
	TemplateWelcome    = "welcome"
	TemplateReminder   = "reminder"
	TemplateCompletion = "completion"
	TemplateReset      = "reset"
	TemplateTest       = "test"
)

const (
	SubjectWelcome    = "Welcome to AyurSutra - Panchakarma Management System"
	SubjectReminder   = "Appointment Reminder - AyurSutra"
	SubjectCompletion = "Therapy Session Completed - AyurSutra"
	SubjectReset      = "Password Reset Request - AyurSutra"
	SubjectTest       = "Test Email - AyurSutra Backend"
)

// ResetLinkTTL is how long a password reset link stays valid.
const ResetLinkTTL = time.Hour

type Renderer struct {
	tmpl        *template.Template
	frontendURL string
	now         func() time.Time
}

func NewRenderer(frontendURL string) (*Renderer, error) {
	tmpl, err := template.New("email").
		Funcs(template.FuncMap{
			"date": func(t time.Time) string { return t.Format("January 2, 2006") },
		}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &Renderer{
		tmpl:        tmpl,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}, nil
}

func (r *Renderer) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return buf.String(), nil
}

func (r *Renderer) message(to, subject, name string, data interface{}) (*model.EmailMessage, error) {
	html, err := r.render(name, data)
	if err != nil {
		return nil, err
	}
	return &model.EmailMessage{To: to, Subject: subject, HTML: html}, nil
}

func (r *Renderer) Welcome(p *model.Practitioner) (*model.EmailMessage, error) {
	return r.message(p.Email, SubjectWelcome, TemplateWelcome, p)
}

type therapyData struct {
	Patient *model.Patient
	Therapy *model.TherapySchedule
}

func (r *Renderer) AppointmentReminder(patient *model.Patient, therapy *model.TherapySchedule) (*model.EmailMessage, error) {
	return r.message(patient.Email, SubjectReminder, TemplateReminder, therapyData{patient, therapy})
}

func (r *Renderer) TherapyCompletion(patient *model.Patient, therapy *model.TherapySchedule) (*model.EmailMessage, error) {
	return r.message(patient.Email, SubjectCompletion, TemplateCompletion, therapyData{patient, therapy})
}

// ResetURL is the frontend page that completes a password reset.
func (r *Renderer) ResetURL(token string) string {
	return r.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
}

func (r *Renderer) PasswordReset(to, token string) (*model.EmailMessage, error) {
	return r.message(to, SubjectReset, TemplateReset, struct {
		ResetURL  string
		ExpiresIn string
	}{r.ResetURL(token), "1 hour"})
}

func (r *Renderer) Test(to string) (*model.EmailMessage, error) {
	return r.message(to, SubjectTest, TemplateTest, struct {
		Timestamp string
	}{r.now().UTC().Format(time.RFC3339)})
}
