package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/internal/repository"
)

type practitionerRepository struct {
	BaseRepository
}

func NewPractitionerRepository(db *sqlx.DB) repository.PractitionerRepository {
	return &practitionerRepository{NewBaseRepository(db)}
}

const practitionerColumns = `id, name, email, password_hash, clinic_name, created_at, updated_at`

func (r *practitionerRepository) Create(ctx context.Context, p *model.Practitioner) error {
	query := `
		INSERT INTO practitioners (` + practitionerColumns + `)
		VALUES (:id, :name, :email, :password_hash, :clinic_name, :created_at, :updated_at)
		ON CONFLICT (email) DO NOTHING
	`
	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create practitioner: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrDuplicate
	}
	return nil
}

func (r *practitionerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Practitioner, error) {
	var p model.Practitioner
	query := `SELECT ` + practitionerColumns + ` FROM practitioners WHERE id = $1`
	if err := r.get(ctx, &p, query, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *practitionerRepository) GetByEmail(ctx context.Context, email string) (*model.Practitioner, error) {
	var p model.Practitioner
	query := `SELECT ` + practitionerColumns + ` FROM practitioners WHERE email = $1`
	if err := r.get(ctx, &p, query, email); err != nil {
		return nil, err
	}
	return &p, nil
}
