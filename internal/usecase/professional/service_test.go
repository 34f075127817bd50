package professional

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/professional"
	"github.com/BruksfildServices01/pro-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

func TestService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore(), nil, nil)

	inactive := false
	_, err := svc.Create(ctx, CreateInput{Name: "  Bruno "})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Ana", IsActive: &inactive})
	require.NoError(t, err)

	all, err := svc.List(ctx, domain.ListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana", all[0].Name)
	assert.Equal(t, "Bruno", all[1].Name)

	active := true
	onlyActive, err := svc.List(ctx, domain.ListQuery{Active: &active})
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, "Bruno", onlyActive[0].Name)

	found, err := svc.List(ctx, domain.ListQuery{Search: "an"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ana", found[0].Name)
}

func TestService_CreateRejectsBlankName(t *testing.T) {
	svc := NewService(memory.NewStore(), nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestService_UpdateTogglesActive(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore(), nil, nil)

	p, err := svc.Create(ctx, CreateInput{Name: "Ana"})
	require.NoError(t, err)

	off := false
	updated, err := svc.Update(ctx, UpdateInput{ID: p.ID, IsActive: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Ana", updated.Name)

	_, err = svc.Update(ctx, UpdateInput{ID: 999, IsActive: &off})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_DeleteDetachesAppointments(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store, nil, nil)

	p, err := svc.Create(ctx, CreateInput{Name: "Ana"})
	require.NoError(t, err)

	start := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	pid := p.ID
	ap := &models.Appointment{
		UserID:         1,
		ProfessionalID: &pid,
		StartTime:      start,
		Duration:       time.Hour,
		EndTime:        start.Add(time.Hour),
		Status:         "pending",
	}
	require.NoError(t, store.Seed(ctx, ap))

	require.NoError(t, svc.Delete(ctx, 0, p.ID))

	got, err := store.GetAppointment(ctx, ap.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProfessionalID)

	assert.ErrorIs(t, svc.Delete(ctx, 0, p.ID), domain.ErrNotFound)
}
