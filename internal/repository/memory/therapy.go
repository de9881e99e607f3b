package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/internal/repository"
)

type TherapyRepository struct {
	mu        sync.RWMutex
	therapies map[uuid.UUID]model.TherapySchedule
}

var _ repository.TherapyRepository = (*TherapyRepository)(nil)

func NewTherapyRepository() *TherapyRepository {
	return &TherapyRepository{therapies: make(map[uuid.UUID]model.TherapySchedule)}
}

func (r *TherapyRepository) Create(_ context.Context, therapy *model.TherapySchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.therapies[therapy.ID] = cloneTherapy(*therapy)
	return nil
}

func (r *TherapyRepository) GetByID(_ context.Context, id uuid.UUID) (*model.TherapySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.therapies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t = cloneTherapy(t)
	return &t, nil
}

func (r *TherapyRepository) List(_ context.Context, filter model.TherapyFilter) ([]*model.TherapySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.TherapySchedule{}
	for _, t := range r.therapies {
		if !matchTherapy(t, filter) {
			continue
		}
		t = cloneTherapy(t)
		out = append(out, &t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ScheduledDate.Before(out[j].ScheduledDate)
	})
	return out, nil
}

func (r *TherapyRepository) Update(_ context.Context, id uuid.UUID, changes *model.TherapyChanges, now time.Time) (*model.TherapySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.therapies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	changes.Apply(&t)
	t.Touch(now)
	t = cloneTherapy(t)
	r.therapies[id] = t

	t = cloneTherapy(t)
	return &t, nil
}

func (r *TherapyRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.therapies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.therapies, id)
	return nil
}

func (r *TherapyRepository) Stats(_ context.Context, practitionerID string, dayStart, dayEnd time.Time) (*model.TherapyStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &model.TherapyStats{}
	for _, t := range r.therapies {
		if t.PractitionerID != practitionerID {
			continue
		}
		stats.Total++
		switch t.Status {
		case model.TherapyStatusScheduled:
			stats.Scheduled++
		case model.TherapyStatusCompleted:
			stats.Completed++
		case model.TherapyStatusCancelled:
			stats.Cancelled++
		}
		if !t.ScheduledDate.Before(dayStart) && t.ScheduledDate.Before(dayEnd) {
			stats.Today++
		}
	}
	return stats, nil
}

func matchTherapy(t model.TherapySchedule, f model.TherapyFilter) bool {
	switch {
	case f.PractitionerID != "" && t.PractitionerID != f.PractitionerID:
		return false
	case f.PatientID != "" && t.PatientID != f.PatientID:
		return false
	case f.Status != "" && t.Status != f.Status:
		return false
	case f.From != nil && t.ScheduledDate.Before(*f.From):
		return false
	case f.To != nil && !t.ScheduledDate.Before(*f.To):
		return false
	}
	return true
}

func cloneTherapy(t model.TherapySchedule) model.TherapySchedule {
	if t.Precautions != nil {
		t.Precautions = append(model.StringList{}, t.Precautions...)
	}
	return t
}
