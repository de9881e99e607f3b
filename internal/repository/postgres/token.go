package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/internal/repository"
)

func (r *practitionerRepository) UpdateResetToken(ctx context.Context, practitionerID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO practitioner_tokens (practitioner_id, type, token_hash, expires_at, used_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULL, NOW(), NOW())
		ON CONFLICT (practitioner_id, type) DO UPDATE
		SET token_hash = EXCLUDED.token_hash,
			expires_at = EXCLUDED.expires_at,
			used_at = NULL,
			updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, practitionerID, model.TokenTypePasswordReset, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (r *practitionerRepository) GetResetToken(ctx context.Context, tokenHash string) (*model.PractitionerToken, error) {
	query := `
		SELECT practitioner_id, type, token_hash, expires_at, used_at, created_at, updated_at
		FROM practitioner_tokens
		WHERE token_hash = $1 AND type = $2
	`
	var token model.PractitionerToken
	if err := r.get(ctx, &token, query, tokenHash, model.TokenTypePasswordReset); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *practitionerRepository) ResetPassword(ctx context.Context, practitionerID uuid.UUID, tokenHash, passwordHash string, now time.Time) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		consume := `
			UPDATE practitioner_tokens
			SET used_at = $4, updated_at = $4
			WHERE practitioner_id = $1
			AND type = $2
			AND token_hash = $3
			AND used_at IS NULL
			AND expires_at > $4
		`
		if err := execAffecting(ctx, tx, consume, practitionerID, model.TokenTypePasswordReset, tokenHash, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return err
			}
			return fmt.Errorf("failed to consume reset token: %w", err)
		}

		update := `UPDATE practitioners SET password_hash = $1, updated_at = $2 WHERE id = $3`
		if err := execAffecting(ctx, tx, update, passwordHash, now, practitionerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return err
			}
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})
}
