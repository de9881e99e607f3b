package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/internal/repository"
)

type PatientRepository struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]model.Patient
}

var _ repository.PatientRepository = (*PatientRepository)(nil)

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{patients: make(map[uuid.UUID]model.Patient)}
}

func (r *PatientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[patient.ID] = *patient
	return nil
}

func (r *PatientRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *PatientRepository) List(_ context.Context, filter model.PatientFilter) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(filter.Search)
	out := []*model.Patient{}
	for _, p := range r.patients {
		if p.PractitionerID != filter.PractitionerID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Email), needle) {
			continue
		}
		p := p
		out = append(out, &p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PatientRepository) Update(_ context.Context, id uuid.UUID, changes *model.UpdatePatientRequest, now time.Time) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	changes.Apply(&p)
	p.Touch(now)
	r.patients[id] = p
	return &p, nil
}

func (r *PatientRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.patients, id)
	return nil
}
