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

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

const patientColumns = `id, practitioner_id, name, email, phone, primary_dosha, health_notes, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES (:id, :practitioner_id, :name, :email, :phone, :primary_dosha, :health_notes, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	if err := r.get(ctx, &patient, query, id); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error) {
	query, args := buildPatientList(filter)
	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Update(ctx context.Context, id uuid.UUID, changes *model.UpdatePatientRequest, now time.Time) (*model.Patient, error) {
	query, args := buildPatientUpdate(id, changes, now)
	var patient model.Patient
	if err := r.get(ctx, &patient, query, args...); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execAffecting(ctx, r.db, `DELETE FROM patients WHERE id = $1`, id)
}

func buildPatientList(filter model.PatientFilter) (string, []interface{}) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE practitioner_id = $1`
	args := []interface{}{filter.PractitionerID}

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		query += fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d)`, len(args), len(args))
	}
	return query + ` ORDER BY created_at DESC`, args
}

// buildPatientUpdate sets only the present fields and always refreshes updated_at.
func buildPatientUpdate(id uuid.UUID, changes *model.UpdatePatientRequest, now time.Time) (string, []interface{}) {
	var sets []string
	var args []interface{}
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	add("name", changes.Name)
	add("email", changes.Email)
	add("phone", changes.Phone)
	add("primary_dosha", changes.PrimaryDosha)
	add("health_notes", changes.HealthNotes)

	args = append(args, now)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE patients SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), patientColumns)
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
