package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/internal/repository"
)

type therapyRepository struct {
	BaseRepository
}

func NewTherapyRepository(db *sqlx.DB) repository.TherapyRepository {
	return &therapyRepository{NewBaseRepository(db)}
}

const therapyColumns = `id, patient_id, practitioner_id, therapy_name, scheduled_date, scheduled_time,
	status, precautions, feedback, created_at, updated_at`

func (r *therapyRepository) Create(ctx context.Context, therapy *model.TherapySchedule) error {
	query := `
		INSERT INTO therapy_schedules (` + therapyColumns + `)
		VALUES (:id, :patient_id, :practitioner_id, :therapy_name, :scheduled_date, :scheduled_time,
			:status, :precautions, :feedback, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, therapy); err != nil {
		return fmt.Errorf("failed to create therapy schedule: %w", err)
	}
	return nil
}

func (r *therapyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TherapySchedule, error) {
	var therapy model.TherapySchedule
	query := `SELECT ` + therapyColumns + ` FROM therapy_schedules WHERE id = $1`
	if err := r.get(ctx, &therapy, query, id); err != nil {
		return nil, err
	}
	return &therapy, nil
}

func (r *therapyRepository) List(ctx context.Context, filter model.TherapyFilter) ([]*model.TherapySchedule, error) {
	query, args := buildTherapyList(filter)
	therapies := []*model.TherapySchedule{}
	if err := r.db.SelectContext(ctx, &therapies, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list therapy schedules: %w", err)
	}
	return therapies, nil
}

func (r *therapyRepository) Update(ctx context.Context, id uuid.UUID, changes *model.TherapyChanges, now time.Time) (*model.TherapySchedule, error) {
	query, args := buildTherapyUpdate(id, changes, now)
	var therapy model.TherapySchedule
	if err := r.get(ctx, &therapy, query, args...); err != nil {
		return nil, err
	}
	return &therapy, nil
}

func (r *therapyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execAffecting(ctx, r.db, `DELETE FROM therapy_schedules WHERE id = $1`, id)
}

func (r *therapyRepository) Stats(ctx context.Context, practitionerID string, dayStart, dayEnd time.Time) (*model.TherapyStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = $2) AS scheduled,
			COUNT(*) FILTER (WHERE status = $3) AS completed,
			COUNT(*) FILTER (WHERE status = $4) AS cancelled,
			COUNT(*) FILTER (WHERE scheduled_date >= $5 AND scheduled_date < $6) AS today
		FROM therapy_schedules
		WHERE practitioner_id = $1
	`
	var stats model.TherapyStats
	err := r.db.GetContext(ctx, &stats, query, practitionerID,
		model.TherapyStatusScheduled, model.TherapyStatusCompleted, model.TherapyStatusCancelled,
		dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to compute therapy stats: %w", err)
	}
	return &stats, nil
}

func buildTherapyList(filter model.TherapyFilter) (string, []interface{}) {
	var where []string
	var args []interface{}
	add := func(cond string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.PractitionerID != "" {
		add("practitioner_id = $%d", filter.PractitionerID)
	}
	if filter.PatientID != "" {
		add("patient_id = $%d", filter.PatientID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.From != nil {
		add("scheduled_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("scheduled_date < $%d", *filter.To)
	}

	query := `SELECT ` + therapyColumns + ` FROM therapy_schedules`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	return query + ` ORDER BY scheduled_date ASC, created_at ASC`, args
}

func buildTherapyUpdate(id uuid.UUID, changes *model.TherapyChanges, now time.Time) (string, []interface{}) {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.PatientID != nil {
		set("patient_id", *changes.PatientID)
	}
	if changes.TherapyName != nil {
		set("therapy_name", *changes.TherapyName)
	}
	if changes.ScheduledDate != nil {
		set("scheduled_date", *changes.ScheduledDate)
	}
	if changes.ScheduledTime != nil {
		set("scheduled_time", *changes.ScheduledTime)
	}
	if changes.Status != nil {
		set("status", *changes.Status)
	}
	if changes.Precautions != nil {
		set("precautions", model.StringList(*changes.Precautions))
	}
	if changes.Feedback != nil {
		set("feedback", *changes.Feedback)
	}
	set("updated_at", now)
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE therapy_schedules SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), therapyColumns)
	return query, args
}
