package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/internal/repository/memory"
	"github.com/ayursutra/clinic-api/pkg/auth"
	apperrors "github.com/ayursutra/clinic-api/pkg/errors"
	"github.com/ayursutra/clinic-api/pkg/logger"
	"github.com/ayursutra/clinic-api/pkg/validator"
)

type mockEmitter struct {
	mock.Mock
}

func (m *mockEmitter) Emit(ctx context.Context, eventType string, entityID uuid.UUID, practitionerID string, payload interface{}) {
	m.Called(ctx, eventType, entityID, practitionerID, payload)
}

func strPtr(s string) *string { return &s }

func newService(t *testing.T) (*Service, *mockEmitter, *time.Time) {
	t.Helper()
	events := &mockEmitter{}
	events.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(memory.NewPatientRepository(), events, validator.New(), logger.Nop())
	svc.now = func() time.Time { return now }
	return svc, events, &now
}

func TestCreatePatientDefaultsOptionalFields(t *testing.T) {
	svc, events, _ := newService(t)

	p, err := svc.CreatePatient(context.Background(), &model.CreatePatientRequest{
		PractitionerID: "pr-1",
		Name:           "Asha",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "", p.Email)
	assert.Equal(t, "", p.Phone)
	assert.Equal(t, "", p.PrimaryDosha)
	assert.Equal(t, "", p.HealthNotes)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	events.AssertCalled(t, "Emit", mock.Anything, model.EventPatientCreated, p.ID, "pr-1", mock.Anything)
}

func TestCreatePatientValidation(t *testing.T) {
	svc, events, _ := newService(t)

	_, err := svc.CreatePatient(context.Background(), &model.CreatePatientRequest{Name: "Asha"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Equal(t, msgCreateRequired, apperrors.As(err).Message)
	events.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPartialUpdateLeavesOtherFields(t *testing.T) {
	svc, _, now := newService(t)
	ctx := context.Background()

	created, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{
		PractitionerID: "pr-1",
		Name:           "Asha",
		Email:          "asha@example.com",
		Phone:          "98450",
		PrimaryDosha:   "Vata",
	})
	require.NoError(t, err)

	*now = now.Add(time.Hour)
	updated, err := svc.UpdatePatient(ctx, created.ID.String(), &model.UpdatePatientRequest{Name: strPtr("Asha Verma")})
	require.NoError(t, err)

	assert.Equal(t, "Asha Verma", updated.Name)
	assert.Equal(t, "asha@example.com", updated.Email)
	assert.Equal(t, "98450", updated.Phone)
	assert.Equal(t, "Vata", updated.PrimaryDosha)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdatePatientRejectsEmptyName(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.UpdatePatient(context.Background(), uuid.NewString(), &model.UpdatePatientRequest{Name: strPtr("  ")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Equal(t, msgNameRequired, apperrors.As(err).Message)
}

func TestMissingPatientIsNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		_, err := svc.GetPatient(ctx, id)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound), id)

		_, err = svc.UpdatePatient(ctx, id, &model.UpdatePatientRequest{Phone: strPtr("1")})
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound), id)

		err = svc.DeletePatient(ctx, id)
		require.Error(t, err)
		assert.Equal(t, 404, apperrors.As(err).StatusCode())
		assert.Equal(t, "Patient not found", apperrors.As(err).Message)
	}
}

func TestDeletePatient(t *testing.T) {
	svc, events, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{PractitionerID: "pr-1", Name: "Asha"})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePatient(ctx, p.ID.String()))
	events.AssertCalled(t, "Emit", mock.Anything, model.EventPatientDeleted, p.ID, "pr-1", nil)

	_, err = svc.GetPatient(ctx, p.ID.String())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestListAndSearchPatients(t *testing.T) {
	svc, _, now := newService(t)
	ctx := context.Background()

	for _, name := range []string{"Asha", "Vikram", "Ashok"} {
		_, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{PractitionerID: "pr-1", Name: name})
		require.NoError(t, err)
		*now = now.Add(time.Minute)
	}

	all, err := svc.ListPatients(ctx, "pr-1", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Ashok", all[0].Name, "newest first")

	found, err := svc.SearchPatients(ctx, "pr-1", "ash")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = svc.SearchPatients(ctx, "pr-1", " ")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Equal(t, msgSearchRequired, apperrors.As(err).Message)

	none, err := svc.ListPatients(ctx, "pr-2", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPatientOwnershipForAuthenticatedPractitioner(t *testing.T) {
	svc, _, _ := newService(t)
	theirs, err := svc.CreatePatient(context.Background(), &model.CreatePatientRequest{PractitionerID: "pr-2", Name: "Vikram"})
	require.NoError(t, err)

	ctx := auth.WithPractitioner(context.Background(), "pr-1")

	_, err = svc.ListPatients(ctx, "pr-2", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	assert.Equal(t, 403, apperrors.As(err).StatusCode())
	_, err = svc.SearchPatients(ctx, "pr-2", "vik")
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	_, err = svc.CreatePatient(ctx, &model.CreatePatientRequest{PractitionerID: "pr-2", Name: "Asha"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = svc.GetPatient(ctx, theirs.ID.String())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	_, err = svc.UpdatePatient(ctx, theirs.ID.String(), &model.UpdatePatientRequest{Name: strPtr("Changed")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.True(t, apperrors.IsKind(svc.DeletePatient(ctx, theirs.ID.String()), apperrors.KindNotFound))

	still, err := svc.GetPatient(context.Background(), theirs.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Vikram", still.Name)

	mine, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{PractitionerID: "pr-1", Name: "Asha"})
	require.NoError(t, err)
	_, err = svc.GetPatient(ctx, mine.ID.String())
	assert.NoError(t, err)
}
