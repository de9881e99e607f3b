package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

const (
	TherapyStatusScheduled = "scheduled"
	TherapyStatusCompleted = "completed"
	TherapyStatusCancelled = "cancelled"
)

// TherapySchedule is a planned therapy session for a patient.
type TherapySchedule struct {
	Base
	PatientID      string     `db:"patient_id" json:"patientId"`
	PractitionerID string     `db:"practitioner_id" json:"practitionerId"`
	TherapyName    string     `db:"therapy_name" json:"therapyName"`
	ScheduledDate  time.Time  `db:"scheduled_date" json:"scheduledDate"`
	ScheduledTime  string     `db:"scheduled_time" json:"scheduledTime"`
	Status         string     `db:"status" json:"status"`
	Precautions    StringList `db:"precautions" json:"precautions"`
	Feedback       string     `db:"feedback" json:"feedback"`
}

type CreateTherapyRequest struct {
	PatientID      string   `json:"patientId" validate:"required"`
	PractitionerID string   `json:"practitionerId" validate:"required"`
	TherapyName    string   `json:"therapyName" validate:"required"`
	ScheduledDate  string   `json:"scheduledDate" validate:"required"`
	ScheduledTime  string   `json:"scheduledTime"`
	Status         string   `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Precautions    []string `json:"precautions"`
	Feedback       string   `json:"feedback"`
}

// UpdateTherapyRequest carries only the fields present in the request body.
type UpdateTherapyRequest struct {
	PatientID     *string   `json:"patientId"`
	TherapyName   *string   `json:"therapyName"`
	ScheduledDate *string   `json:"scheduledDate"`
	ScheduledTime *string   `json:"scheduledTime"`
	Status        *string   `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Precautions   *[]string `json:"precautions"`
	Feedback      *string   `json:"feedback"`
}

func (r *UpdateTherapyRequest) Empty() bool {
	return r.PatientID == nil && r.TherapyName == nil && r.ScheduledDate == nil &&
		r.ScheduledTime == nil && r.Status == nil && r.Precautions == nil && r.Feedback == nil
}

// TherapyChanges is a validated partial update.
type TherapyChanges struct {
	PatientID     *string
	TherapyName   *string
	ScheduledDate *time.Time
	ScheduledTime *string
	Status        *string
	Precautions   *[]string
	Feedback      *string
}

// Apply copies the present fields onto t.
func (c *TherapyChanges) Apply(t *TherapySchedule) {
	if c.PatientID != nil {
		t.PatientID = *c.PatientID
	}
	if c.TherapyName != nil {
		t.TherapyName = *c.TherapyName
	}
	if c.ScheduledDate != nil {
		t.ScheduledDate = *c.ScheduledDate
	}
	if c.ScheduledTime != nil {
		t.ScheduledTime = *c.ScheduledTime
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.Precautions != nil {
		t.Precautions = StringList(*c.Precautions)
	}
	if c.Feedback != nil {
		t.Feedback = *c.Feedback
	}
}

type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// TherapyFilter selects schedules. From is inclusive, To exclusive.
type TherapyFilter struct {
	PractitionerID string
	PatientID      string
	Status         string
	From           *time.Time
	To             *time.Time
}

type TherapyStats struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Today     int `json:"today"`
}

// StringList is a text[] column that encodes as an empty JSON array when nil.
type StringList []string

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l *StringList) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*l = StringList(arr)
	return nil
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "{}", nil
	}
	return pq.StringArray(l).Value()
}
