package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/internal/repository"
)

type PractitionerRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]model.Practitioner
	byEmail map[string]uuid.UUID
	tokens  map[uuid.UUID]model.PractitionerToken
}

var _ repository.PractitionerRepository = (*PractitionerRepository)(nil)

func NewPractitionerRepository() *PractitionerRepository {
	return &PractitionerRepository{
		byID:    make(map[uuid.UUID]model.Practitioner),
		byEmail: make(map[string]uuid.UUID),
		tokens:  make(map[uuid.UUID]model.PractitionerToken),
	}
}

func (r *PractitionerRepository) Create(_ context.Context, p *model.Practitioner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[p.Email]; exists {
		return repository.ErrDuplicate
	}
	r.byID[p.ID] = *p
	r.byEmail[p.Email] = p.ID
	return nil
}

func (r *PractitionerRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Practitioner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *PractitionerRepository) GetByEmail(_ context.Context, email string) (*model.Practitioner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := r.byID[id]
	return &p, nil
}

func (r *PractitionerRepository) UpdateResetToken(_ context.Context, practitionerID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	created := now
	if prev, ok := r.tokens[practitionerID]; ok {
		created = prev.CreatedAt
	}
	r.tokens[practitionerID] = model.PractitionerToken{
		PractitionerID: practitionerID,
		Type:           model.TokenTypePasswordReset,
		TokenHash:      tokenHash,
		ExpiresAt:      expiresAt,
		CreatedAt:      created,
		UpdatedAt:      now,
	}
	return nil
}

func (r *PractitionerRepository) GetResetToken(_ context.Context, tokenHash string) (*model.PractitionerToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PractitionerRepository) ResetPassword(_ context.Context, practitionerID uuid.UUID, tokenHash, passwordHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[practitionerID]
	if !ok || t.TokenHash != tokenHash || !t.Usable(now) {
		return repository.ErrNotFound
	}
	p, ok := r.byID[practitionerID]
	if !ok {
		return repository.ErrNotFound
	}

	t.UsedAt = &now
	t.UpdatedAt = now
	r.tokens[practitionerID] = t

	p.PasswordHash = passwordHash
	p.UpdatedAt = now
	r.byID[practitionerID] = p
	return nil
}

// ResetToken returns the stored token of a practitioner, for inspection.
func (r *PractitionerRepository) ResetToken(practitionerID uuid.UUID) (model.PractitionerToken, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[practitionerID]
	return t, ok
}

// Len returns the number of stored practitioners.
func (r *PractitionerRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *PractitionerRepository) Ping(context.Context) error { return nil }
