package therapy

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
	msgCreateRequired      = "Patient ID, practitioner ID, therapy name, and scheduled date are required"
	msgTherapyNameRequired = "Therapy name is required"
	msgFeedbackRequired    = "Feedback is required"
	msgInvalidDate         = "Invalid scheduled date, expected YYYY-MM-DD or RFC 3339"
	msgInvalidDateFilter   = "Invalid date filter, expected YYYY-MM-DD or RFC 3339"
	resourceName           = "Therapy schedule"

	dateLayout = "2006-01-02"
)

type EventEmitter interface {
	Emit(ctx context.Context, eventType string, entityID uuid.UUID, practitionerID string, payload interface{})
}

// Notifier sends the completion email when a session is marked completed.
type Notifier interface {
	TherapyCompletion(ctx context.Context, patient *model.Patient, therapy *model.TherapySchedule) model.SendResult
	Go(fn func(ctx context.Context))
}

// ListQuery holds the optional filters of a practitioner's schedule list.
// Date selects a single day; From and To bound a range and are ignored
// when Date is set.
type ListQuery struct {
	Status string
	Date   string
	From   string
	To     string
}

type Service struct {
	repo      repository.TherapyRepository
	patients  repository.PatientRepository
	events    EventEmitter
	notifier  Notifier
	validator validator.Validator
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(
	repo repository.TherapyRepository,
	patients repository.PatientRepository,
	events EventEmitter,
	notifier Notifier,
	v validator.Validator,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		events:    events,
		notifier:  notifier,
		validator: v,
		logger:    logger.With().Str("component", "therapy").Logger(),
		now:       time.Now,
	}
}

func (s *Service) CreateTherapy(ctx context.Context, req *model.CreateTherapyRequest) (*model.TherapySchedule, error) {
	if err := s.validate(req, msgCreateRequired); err != nil {
		return nil, err
	}
	if !auth.OwnedBy(ctx, req.PractitionerID) {
		return nil, apperrors.Forbidden()
	}

	scheduled, err := ParseDate(req.ScheduledDate)
	if err != nil {
		return nil, apperrors.Validation(msgInvalidDate)
	}

	status := req.Status
	if status == "" {
		status = model.TherapyStatusScheduled
	}
	precautions := model.StringList{}
	if req.Precautions != nil {
		precautions = model.StringList(req.Precautions)
	}

	therapy := &model.TherapySchedule{
		Base:           model.NewBase(s.now()),
		PatientID:      req.PatientID,
		PractitionerID: req.PractitionerID,
		TherapyName:    req.TherapyName,
		ScheduledDate:  scheduled,
		ScheduledTime:  req.ScheduledTime,
		Status:         status,
		Precautions:    precautions,
		Feedback:       req.Feedback,
	}
	if err := s.repo.Create(ctx, therapy); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create therapy schedule: %w", err))
	}

	s.events.Emit(ctx, model.EventTherapyCreated, therapy.ID, therapy.PractitionerID, therapy)
	s.logger.Info().
		Str("therapy_id", therapy.ID.String()).
		Str("practitioner_id", therapy.PractitionerID).
		Msg("Therapy schedule created")
	return therapy, nil
}

func (s *Service) GetTherapy(ctx context.Context, id string) (*model.TherapySchedule, error) {
	therapyID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NotFound(resourceName)
	}
	return s.owned(ctx, therapyID)
}

// owned loads a schedule the caller may access. Another practitioner's
// schedule is reported as missing.
func (s *Service) owned(ctx context.Context, id uuid.UUID) (*model.TherapySchedule, error) {
	therapy, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "failed to get therapy schedule")
	}
	if !auth.OwnedBy(ctx, therapy.PractitionerID) {
		return nil, apperrors.NotFound(resourceName)
	}
	return therapy, nil
}

func (s *Service) ListByPractitioner(ctx context.Context, practitionerID string, q ListQuery) ([]*model.TherapySchedule, error) {
	if !auth.OwnedBy(ctx, practitionerID) {
		return nil, apperrors.Forbidden()
	}
	filter := model.TherapyFilter{PractitionerID: practitionerID, Status: q.Status}

	if q.Date != "" {
		day, err := ParseDate(q.Date)
		if err != nil {
			return nil, apperrors.Validation(msgInvalidDateFilter)
		}
		end := day.AddDate(0, 0, 1)
		filter.From, filter.To = &day, &end
	} else {
		var err error
		if filter.From, err = parseOptionalDate(q.From); err != nil {
			return nil, apperrors.Validation(msgInvalidDateFilter)
		}
		if filter.To, err = parseOptionalDate(q.To); err != nil {
			return nil, apperrors.Validation(msgInvalidDateFilter)
		}
	}

	return s.list(ctx, filter)
}

// ListByPatient returns a patient's schedules. An authenticated caller only
// sees their own.
func (s *Service) ListByPatient(ctx context.Context, patientID, status string) ([]*model.TherapySchedule, error) {
	filter := model.TherapyFilter{PatientID: patientID, Status: status}
	if id, ok := auth.PractitionerFromContext(ctx); ok {
		filter.PractitionerID = id
	}
	return s.list(ctx, filter)
}

func (s *Service) list(ctx context.Context, filter model.TherapyFilter) ([]*model.TherapySchedule, error) {
	therapies, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list therapy schedules: %w", err))
	}
	return therapies, nil
}

// UpdateTherapy applies the fields present in req. Moving a session to
// completed sends the patient a completion email in the background.
func (s *Service) UpdateTherapy(ctx context.Context, id string, req *model.UpdateTherapyRequest) (*model.TherapySchedule, error) {
	therapyID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NotFound(resourceName)
	}
	if err := s.validate(req, msgTherapyNameRequired); err != nil {
		return nil, err
	}
	if req.TherapyName != nil && strings.TrimSpace(*req.TherapyName) == "" {
		return nil, apperrors.Validation(msgTherapyNameRequired)
	}

	changes := &model.TherapyChanges{
		PatientID:     req.PatientID,
		TherapyName:   req.TherapyName,
		ScheduledTime: req.ScheduledTime,
		Status:        req.Status,
		Precautions:   req.Precautions,
		Feedback:      req.Feedback,
	}
	if req.ScheduledDate != nil {
		scheduled, err := ParseDate(*req.ScheduledDate)
		if err != nil {
			return nil, apperrors.Validation(msgInvalidDate)
		}
		changes.ScheduledDate = &scheduled
	}

	previous, err := s.owned(ctx, therapyID)
	if err != nil {
		return nil, err
	}

	therapy, err := s.repo.Update(ctx, therapyID, changes, s.now())
	if err != nil {
		return nil, mapError(err, "failed to update therapy schedule")
	}

	s.events.Emit(ctx, model.EventTherapyUpdated, therapy.ID, therapy.PractitionerID, req)
	if previous.Status != model.TherapyStatusCompleted && therapy.Status == model.TherapyStatusCompleted {
		s.notifyCompletion(therapy)
	}
	return therapy, nil
}

func (s *Service) AddFeedback(ctx context.Context, id string, req *model.FeedbackRequest) (*model.TherapySchedule, error) {
	therapyID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NotFound(resourceName)
	}
	if err := s.validator.Validate(req); err != nil || strings.TrimSpace(req.Feedback) == "" {
		return nil, apperrors.Validation(msgFeedbackRequired)
	}
	if _, err := s.owned(ctx, therapyID); err != nil {
		return nil, err
	}

	therapy, err := s.repo.Update(ctx, therapyID, &model.TherapyChanges{Feedback: &req.Feedback}, s.now())
	if err != nil {
		return nil, mapError(err, "failed to add feedback")
	}

	s.events.Emit(ctx, model.EventTherapyFeedback, therapy.ID, therapy.PractitionerID, req)
	return therapy, nil
}

func (s *Service) DeleteTherapy(ctx context.Context, id string) error {
	therapyID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.NotFound(resourceName)
	}

	therapy, err := s.owned(ctx, therapyID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, therapyID); err != nil {
		return mapError(err, "failed to delete therapy schedule")
	}

	s.events.Emit(ctx, model.EventTherapyDeleted, therapyID, therapy.PractitionerID, nil)
	return nil
}

// Stats counts a practitioner's schedules by status. Today covers the
// current day in the server's time zone.
func (s *Service) Stats(ctx context.Context, practitionerID string) (*model.TherapyStats, error) {
	if !auth.OwnedBy(ctx, practitionerID) {
		return nil, apperrors.Forbidden()
	}
	now := s.now()
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	stats, err := s.repo.Stats(ctx, practitionerID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to get therapy stats: %w", err))
	}
	return stats, nil
}

func (s *Service) notifyCompletion(therapy *model.TherapySchedule) {
	completed := *therapy
	s.notifier.Go(func(ctx context.Context) {
		patientID, err := uuid.Parse(completed.PatientID)
		if err != nil {
			return
		}
		patient, err := s.patients.GetByID(ctx, patientID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				s.logger.Error().Err(err).Str("patient_id", completed.PatientID).Msg("Failed to load patient for completion email")
			}
			return
		}
		if patient.Email == "" {
			return
		}
		s.notifier.TherapyCompletion(ctx, patient, &completed)
	})
}

func (s *Service) validate(req interface{}, requiredMsg string) error {
	err := s.validator.Validate(req)
	if err == nil {
		return nil
	}

	var verr *validator.Error
	if !errors.As(err, &verr) {
		return apperrors.Internal(err)
	}
	for _, f := range verr.Fields {
		if f.Tag == "required" {
			return apperrors.Validation(requiredMsg)
		}
	}
	return apperrors.Validation(verr.Fields[0].Message())
}

// ParseDate accepts a calendar date (midnight UTC) or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func mapError(err error, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resourceName)
	}
	return apperrors.Internal(fmt.Errorf("%s: %w", action, err))
}
