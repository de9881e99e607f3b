package model

import (
	"time"

	"github.com/google/uuid"
)

// Practitioner is a clinic-owner account.
type Practitioner struct {
	Base
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	ClinicName   string `json:"clinicName" db:"clinic_name"`
}

// TokenType distinguishes single-use tokens stored per practitioner.
type TokenType string

const (
	TokenTypePasswordReset TokenType = "password_reset"
)

// PractitionerToken is an outstanding single-use token. Only the digest
// of the token is stored.
type PractitionerToken struct {
	PractitionerID uuid.UUID  `db:"practitioner_id"`
	Type           TokenType  `db:"type"`
	TokenHash      string     `db:"token_hash"`
	ExpiresAt      time.Time  `db:"expires_at"`
	UsedAt         *time.Time `db:"used_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// Usable reports whether the token can still be redeemed at now.
func (t *PractitionerToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
