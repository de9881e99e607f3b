package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayursutra/clinic-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// All repository interfaces in one file
type (
	// PractitionerRepository is the credential store.
	PractitionerRepository interface {
		// Create fails with ErrDuplicate when the email is already taken.
		Create(ctx context.Context, practitioner *model.Practitioner) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Practitioner, error)
		GetByEmail(ctx context.Context, email string) (*model.Practitioner, error)

		// UpdateResetToken replaces any outstanding reset token of the practitioner.
		UpdateResetToken(ctx context.Context, practitionerID uuid.UUID, tokenHash string, expiresAt time.Time) error
		GetResetToken(ctx context.Context, tokenHash string) (*model.PractitionerToken, error)
		// ResetPassword consumes the reset token and stores the new hash atomically.
		// It fails with ErrNotFound when the token is unknown, used or expired at now.
		ResetPassword(ctx context.Context, practitionerID uuid.UUID, tokenHash, passwordHash string, now time.Time) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		// List returns the practitioner's patients, newest first.
		List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error)
		Update(ctx context.Context, id uuid.UUID, changes *model.UpdatePatientRequest, now time.Time) (*model.Patient, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	TherapyRepository interface {
		Create(ctx context.Context, therapy *model.TherapySchedule) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.TherapySchedule, error)
		// List returns matching schedules ordered by scheduled date ascending.
		List(ctx context.Context, filter model.TherapyFilter) ([]*model.TherapySchedule, error)
		Update(ctx context.Context, id uuid.UUID, changes *model.TherapyChanges, now time.Time) (*model.TherapySchedule, error)
		Delete(ctx context.Context, id uuid.UUID) error
		// Stats counts the practitioner's schedules; Today counts those in [dayStart, dayEnd).
		Stats(ctx context.Context, practitionerID string, dayStart, dayEnd time.Time) (*model.TherapyStats, error)
	}

	// Pinger reports storage health.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
