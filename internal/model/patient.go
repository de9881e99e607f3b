package model

// Patient is a record owned by a practitioner. PractitionerID is an
// unvalidated reference.
type Patient struct {
	Base
	PractitionerID string `db:"practitioner_id" json:"practitionerId"`
	Name           string `db:"name" json:"name"`
	Email          string `db:"email" json:"email"`
	Phone          string `db:"phone" json:"phone"`
	PrimaryDosha   string `db:"primary_dosha" json:"primaryDosha"`
	HealthNotes    string `db:"health_notes" json:"healthNotes"`
}

type CreatePatientRequest struct {
	PractitionerID string `json:"practitionerId" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PrimaryDosha   string `json:"primaryDosha"`
	HealthNotes    string `json:"healthNotes"`
}

// UpdatePatientRequest carries only the fields present in the request body.
type UpdatePatientRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	PrimaryDosha *string `json:"primaryDosha"`
	HealthNotes  *string `json:"healthNotes"`
}

func (r *UpdatePatientRequest) Empty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil && r.PrimaryDosha == nil && r.HealthNotes == nil
}

// Apply copies the present fields onto p.
func (r *UpdatePatientRequest) Apply(p *Patient) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Email != nil {
		p.Email = *r.Email
	}
	if r.Phone != nil {
		p.Phone = *r.Phone
	}
	if r.PrimaryDosha != nil {
		p.PrimaryDosha = *r.PrimaryDosha
	}
	if r.HealthNotes != nil {
		p.HealthNotes = *r.HealthNotes
	}
}

type PatientFilter struct {
	PractitionerID string
	Search         string
}
