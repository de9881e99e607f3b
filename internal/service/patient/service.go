package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/internal/repository"
	"github.com/ayursutra/clinic-api/pkg/auth"
	apperrors "github.com/ayursutra/clinic-api/pkg/errors"
	"github.com/ayursutra/clinic-api/pkg/validator"
)

const (
	msgCreateRequired = "Practitioner ID and name are required"
	msgNameRequired   = "Name is required"
	msgSearchRequired = "Search query is required"
	resourceName      = "Patient"
)

// EventEmitter publishes domain events on a best-effort basis.
type EventEmitter interface {
	Emit(ctx context.Context, eventType string, entityID uuid.UUID, practitionerID string, payload interface{})
}

type Service struct {
	repo      repository.PatientRepository
	events    EventEmitter
	validator validator.Validator
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo repository.PatientRepository, events EventEmitter, v validator.Validator, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		events:    events,
		validator: v,
		logger:    logger.With().Str("component", "patient").Logger(),
		now:       time.Now,
	}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.Validation(msgCreateRequired)
	}
	if !auth.OwnedBy(ctx, req.PractitionerID) {
		return nil, apperrors.Forbidden()
	}

	patient := &model.Patient{
		Base:           model.NewBase(s.now()),
		PractitionerID: req.PractitionerID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		PrimaryDosha:   req.PrimaryDosha,
		HealthNotes:    req.HealthNotes,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create patient: %w", err))
	}

	s.events.Emit(ctx, model.EventPatientCreated, patient.ID, patient.PractitionerID, patient)
	s.logger.Info().
		Str("patient_id", patient.ID.String()).
		Str("practitioner_id", patient.PractitionerID).
		Msg("Patient created")
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	patientID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NotFound(resourceName)
	}
	return s.owned(ctx, patientID)
}

// owned loads a patient the caller may access. Another practitioner's
// patient is reported as missing.
func (s *Service) owned(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "failed to get patient")
	}
	if !auth.OwnedBy(ctx, patient.PractitionerID) {
		return nil, apperrors.NotFound(resourceName)
	}
	return patient, nil
}

// ListPatients returns the practitioner's patients, newest first. A non-empty
// query narrows the list to names or emails containing it.
func (s *Service) ListPatients(ctx context.Context, practitionerID, query string) ([]*model.Patient, error) {
	if !auth.OwnedBy(ctx, practitionerID) {
		return nil, apperrors.Forbidden()
	}
	patients, err := s.repo.List(ctx, model.PatientFilter{
		PractitionerID: practitionerID,
		Search:         strings.TrimSpace(query),
	})
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list patients: %w", err))
	}
	return patients, nil
}

func (s *Service) SearchPatients(ctx context.Context, practitionerID, query string) ([]*model.Patient, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.Validation(msgSearchRequired)
	}
	return s.ListPatients(ctx, practitionerID, query)
}

// UpdatePatient applies the fields present in req and refreshes updatedAt.
func (s *Service) UpdatePatient(ctx context.Context, id string, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patientID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NotFound(resourceName)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apperrors.Validation(msgNameRequired)
	}
	if _, err := s.owned(ctx, patientID); err != nil {
		return nil, err
	}

	patient, err := s.repo.Update(ctx, patientID, req, s.now())
	if err != nil {
		return nil, mapError(err, "failed to update patient")
	}

	s.events.Emit(ctx, model.EventPatientUpdated, patient.ID, patient.PractitionerID, req)
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id string) error {
	patientID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.NotFound(resourceName)
	}

	patient, err := s.owned(ctx, patientID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, patientID); err != nil {
		return mapError(err, "failed to delete patient")
	}

	s.events.Emit(ctx, model.EventPatientDeleted, patientID, patient.PractitionerID, nil)
	s.logger.Info().Str("patient_id", id).Msg("Patient deleted")
	return nil
}

func mapError(err error, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resourceName)
	}
	return apperrors.Internal(fmt.Errorf("%s: %w", action, err))
}
