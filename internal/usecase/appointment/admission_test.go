package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/pro-scheduler/internal/httperr"
	"github.com/BruksfildServices01/pro-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/pro-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

type fixture struct {
	store     *memory.Store
	locker    *lock.Local
	admission *Admission
	propose   *ProposeAppointment
}

func newFixture(t *testing.T, opts ...AdmissionOption) *fixture {
	t.Helper()

	store := memory.NewStore()
	locker := lock.NewLocal()
	admission := NewAdmission(store, locker, nil, opts...)

	return &fixture{
		store:     store,
		locker:    locker,
		admission: admission,
		propose:   NewProposeAppointment(admission, nil, nil, 0),
	}
}

func (f *fixture) professional(t *testing.T, name string, active bool) uint {
	t.Helper()

	p := &models.Professional{Name: name, IsActive: active}
	require.NoError(t, f.store.CreateProfessional(context.Background(), p))
	return p.ID
}

func (f *fixture) seed(t *testing.T, start time.Time, d time.Duration, professionalID *uint, status domain.Status) uint {
	t.Helper()

	ap := &models.Appointment{
		UserID:         99,
		ProfessionalID: professionalID,
		StartTime:      start,
		Duration:       d,
		EndTime:        start.Add(d),
		Status:         string(status),
	}
	require.NoError(t, f.store.Seed(context.Background(), ap))
	return ap.ID
}

func at(hour, minute int) time.Time {
	return time.Date(2030, 1, 7, hour, minute, 0, 0, time.UTC)
}

func minutes(n int) *time.Duration {
	d := time.Duration(n) * time.Minute
	return &d
}

func uintPtr(v uint) *uint {
	return &v
}

// ======================================================
// CREATE
// ======================================================

func TestPropose_NoProfessionals(t *testing.T) {
	f := newFixture(t)

	_, err := f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID: 1,
		Start:  at(10, 0),
	})
	assert.ErrorIs(t, err, domain.ErrNoProfessionalsAvailable)
}

func TestPropose_EmptyCalendarAdmitsWithDefaults(t *testing.T) {
	f := newFixture(t)
	f.professional(t, "Ana", true)

	ap, err := f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID: 1,
		Start:  at(10, 0),
	})
	require.NoError(t, err)

	assert.NotZero(t, ap.ID)
	assert.Equal(t, string(domain.StatusPending), ap.Status)
	assert.Equal(t, domain.DefaultDuration, ap.Duration)
	assert.True(t, ap.EndTime.Equal(at(11, 30)))
	assert.Nil(t, ap.ProfessionalID)
}

func TestPropose_PoolExhausted(t *testing.T) {
	f := newFixture(t)
	p1 := f.professional(t, "Ana", true)
	f.seed(t, at(10, 0), 90*time.Minute, &p1, domain.StatusConfirmed)

	_, err := f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID:   1,
		Start:    at(11, 0),
		Duration: minutes(60),
	})
	assert.ErrorIs(t, err, domain.ErrNoProfessionalsAvailable)
}

func TestPropose_NamedProfessionalBusy(t *testing.T) {
	f := newFixture(t)
	p1 := f.professional(t, "Ana", true)
	f.professional(t, "Bruno", true)
	f.seed(t, at(10, 0), 90*time.Minute, &p1, domain.StatusPending)

	_, err := f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID:         1,
		ProfessionalID: &p1,
		Start:          at(10, 30),
		Duration:       minutes(60),
	})
	assert.ErrorIs(t, err, domain.ErrProfessionalUnavailable)

	ap, err := f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID:   1,
		Start:    at(10, 30),
		Duration: minutes(60),
	})
	require.NoError(t, err)
	assert.Nil(t, ap.ProfessionalID)
}

func TestPropose_BackToBackDoesNotConflict(t *testing.T) {
	f := newFixture(t)
	p1 := f.professional(t, "Ana", true)
	f.seed(t, at(10, 0), 90*time.Minute, &p1, domain.StatusConfirmed)

	_, err := f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID:         1,
		ProfessionalID: &p1,
		Start:          at(11, 30),
	})
	assert.NoError(t, err)

	_, err = f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID:   1,
		Start:    at(8, 30),
		Duration: minutes(90),
	})
	assert.NoError(t, err)
}

func TestPropose_CancelledAppointmentsDoNotCount(t *testing.T) {
	f := newFixture(t)
	p1 := f.professional(t, "Ana", true)
	f.seed(t, at(10, 0), 90*time.Minute, &p1, domain.StatusCancelled)

	_, err := f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID:         1,
		ProfessionalID: &p1,
		Start:          at(10, 0),
	})
	assert.NoError(t, err)
}

func TestPropose_CancellationFreesSlot(t *testing.T) {
	f := newFixture(t)
	f.professional(t, "Ana", true)
	ctx := context.Background()

	first, err := f.propose.Execute(ctx, ProposeAppointmentInput{UserID: 1, Start: at(10, 0)})
	require.NoError(t, err)

	_, err = f.propose.Execute(ctx, ProposeAppointmentInput{UserID: 2, Start: at(10, 0)})
	require.ErrorIs(t, err, domain.ErrNoProfessionalsAvailable)

	cancel := NewCancelAppointment(f.store, nil)
	_, err = cancel.Execute(ctx, Actor{UserID: 1}, first.ID)
	require.NoError(t, err)

	_, err = f.propose.Execute(ctx, ProposeAppointmentInput{UserID: 2, Start: at(10, 0)})
	assert.NoError(t, err)
}

func TestPropose_InactiveProfessionals(t *testing.T) {
	f := newFixture(t)
	inactive := f.professional(t, "Ana", false)

	_, err := f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID: 1,
		Start:  at(10, 0),
	})
	assert.ErrorIs(t, err, domain.ErrNoProfessionalsAvailable)

	f.professional(t, "Bruno", true)

	_, err = f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID:         1,
		ProfessionalID: &inactive,
		Start:          at(10, 0),
	})
	assert.ErrorIs(t, err, domain.ErrProfessionalUnavailable)

	_, err = f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID:         1,
		ProfessionalID: uintPtr(404),
		Start:          at(10, 0),
	})
	assert.ErrorIs(t, err, domain.ErrProfessionalNotFound)
}

func TestPropose_InvalidDuration(t *testing.T) {
	f := newFixture(t)
	f.professional(t, "Ana", true)

	for _, d := range []int{0, -30} {
		_, err := f.propose.Execute(context.Background(), ProposeAppointmentInput{
			UserID:   1,
			Start:    at(10, 0),
			Duration: minutes(d),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidDuration, "duration %d", d)
	}
}

func TestAdmission_CreateRejectsInactiveStatus(t *testing.T) {
	f := newFixture(t)
	f.professional(t, "Ana", true)

	err := f.admission.Create(context.Background(), &models.Appointment{
		UserID:    1,
		StartTime: at(10, 0),
		Duration:  time.Hour,
		Status:    string(domain.StatusCancelled),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestAdmission_ConcurrentProposalsAdmitOne(t *testing.T) {
	f := newFixture(t)
	p1 := f.professional(t, "Ana", true)

	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		admitted  int
		rejected  int
		unexpected []error
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			in := ProposeAppointmentInput{
				UserID: uint(i + 1),
				Start:  at(10, 0),
			}
			if i%2 == 0 {
				in.ProfessionalID = &p1
			}

			_, err := f.propose.Execute(context.Background(), in)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case httperr.IsBusiness(err, "no_professionals_available"),
				httperr.IsBusiness(err, "professional_unavailable"):
				rejected++
			default:
				unexpected = append(unexpected, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, unexpected)
	assert.Equal(t, 1, admitted)
	assert.Equal(t, workers-1, rejected)

	booked, err := f.store.ListActiveOverlapping(context.Background(), at(10, 0), at(11, 30))
	require.NoError(t, err)
	assert.Len(t, booked, 1)
}

func TestAdmission_LockTimeoutIsTransient(t *testing.T) {
	f := newFixture(t, WithLockWait(20*time.Millisecond))
	f.professional(t, "Ana", true)

	release, err := f.locker.Acquire(context.Background(), admissionLockKey)
	require.NoError(t, err)
	defer release()

	_, err = f.propose.Execute(context.Background(), ProposeAppointmentInput{
		UserID: 1,
		Start:  at(10, 0),
	})
	require.Error(t, err)
	assert.True(t, httperr.IsTransient(err))

	booked, err := f.store.ListActiveOverlapping(context.Background(), at(10, 0), at(11, 30))
	require.NoError(t, err)
	assert.Empty(t, booked)
}

// ======================================================
// RESCHEDULE
// ======================================================

func TestReschedule_ExcludesItself(t *testing.T) {
	f := newFixture(t)
	p1 := f.professional(t, "Ana", true)
	id := f.seed(t, at(10, 0), 90*time.Minute, &p1, domain.StatusPending)

	ap, err := f.admission.Reschedule(context.Background(), id, ScheduleChange{
		Start: timePtr(at(10, 30)),
	})
	require.NoError(t, err)
	assert.True(t, ap.EndTime.Equal(at(12, 0)))
	assert.Equal(t, p1, *ap.ProfessionalID)
}

func TestReschedule_ProfessionalConflict(t *testing.T) {
	f := newFixture(t)
	p1 := f.professional(t, "Ana", true)
	p2 := f.professional(t, "Bruno", true)
	f.seed(t, at(10, 0), 90*time.Minute, &p1, domain.StatusConfirmed)
	id := f.seed(t, at(10, 0), 90*time.Minute, &p2, domain.StatusPending)

	_, err := f.admission.Reschedule(context.Background(), id, ScheduleChange{
		ProfessionalID: &p1,
	})
	assert.ErrorIs(t, err, domain.ErrProfessionalUnavailable)

	got, err := f.store.GetAppointment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, p2, *got.ProfessionalID)

	ap, err := f.admission.Reschedule(context.Background(), id, ScheduleChange{
		ClearProfessional: true,
	})
	require.NoError(t, err)
	assert.Nil(t, ap.ProfessionalID)
}

// Reschedule only re-runs the professional check, so an unassigned
// appointment can be moved into a window the pool cannot cover.
func TestReschedule_SkipsGeneralCheck(t *testing.T) {
	f := newFixture(t)
	f.professional(t, "Ana", true)
	ctx := context.Background()

	first, err := f.propose.Execute(ctx, ProposeAppointmentInput{UserID: 1, Start: at(10, 0)})
	require.NoError(t, err)
	second, err := f.propose.Execute(ctx, ProposeAppointmentInput{UserID: 2, Start: at(14, 0)})
	require.NoError(t, err)

	_, err = f.admission.Reschedule(ctx, second.ID, ScheduleChange{Start: timePtr(at(10, 0))})
	require.NoError(t, err)

	_, err = f.admission.Revalidate(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNoProfessionalsAvailable)
}

func TestReschedule_Rejections(t *testing.T) {
	f := newFixture(t)
	f.professional(t, "Ana", true)
	cancelled := f.seed(t, at(10, 0), time.Hour, nil, domain.StatusCancelled)
	pending := f.seed(t, at(12, 0), time.Hour, nil, domain.StatusPending)

	_, err := f.admission.Reschedule(context.Background(), cancelled, ScheduleChange{Start: timePtr(at(15, 0))})
	assert.ErrorIs(t, err, domain.ErrAppointmentCancelled)

	_, err = f.admission.Reschedule(context.Background(), pending, ScheduleChange{Duration: minutes(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)

	_, err = f.admission.Reschedule(context.Background(), 404, ScheduleChange{Start: timePtr(at(15, 0))})
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}

func TestUpdateSchedule_RequiresOwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	f.professional(t, "Ana", true)
	id := f.seed(t, at(10, 0), time.Hour, nil, domain.StatusPending)

	uc := NewUpdateAppointmentSchedule(f.store, f.admission, nil, nil)

	_, err := uc.Execute(context.Background(), UpdateAppointmentScheduleInput{
		AppointmentID: id,
		Actor:         Actor{UserID: 1},
		Start:         timePtr(at(13, 0)),
	})
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)

	ap, err := uc.Execute(context.Background(), UpdateAppointmentScheduleInput{
		AppointmentID: id,
		Actor:         Actor{UserID: 99},
		Start:         timePtr(at(13, 0)),
	})
	require.NoError(t, err)
	assert.True(t, ap.StartTime.Equal(at(13, 0)))
}

// ======================================================
// REVALIDATE
// ======================================================

func TestRevalidate_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	p1 := f.professional(t, "Ana", true)
	ctx := context.Background()

	ap, err := f.propose.Execute(ctx, ProposeAppointmentInput{
		UserID:         1,
		ProfessionalID: &p1,
		Start:          at(10, 0),
	})
	require.NoError(t, err)

	first, err := f.admission.Revalidate(ctx, ap.ID)
	require.NoError(t, err)
	second, err := f.admission.Revalidate(ctx, ap.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, first.ActiveProfessionals)
	assert.Equal(t, 0, first.Overlapping)

	after, err := f.store.GetAppointment(ctx, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, ap.StartTime, after.StartTime)
	assert.Equal(t, ap.Status, after.Status)
}

// ======================================================
// STATUS
// ======================================================

func TestConfirmAndCancel(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, at(10, 0), time.Hour, nil, domain.StatusPending)
	ctx := context.Background()

	confirm := NewConfirmAppointment(f.store, nil)
	cancel := NewCancelAppointment(f.store, nil)

	_, err := confirm.Execute(ctx, Actor{UserID: 99}, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	ap, err := confirm.Execute(ctx, Actor{UserID: 1, Admin: true}, id)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), ap.Status)
	assert.NotNil(t, ap.ConfirmedAt)

	_, err = cancel.Execute(ctx, Actor{UserID: 5}, id)
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)

	ap, err = cancel.Execute(ctx, Actor{UserID: 99}, id)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), ap.Status)
	assert.NotNil(t, ap.CancelledAt)

	_, err = confirm.Execute(ctx, Actor{UserID: 1, Admin: true}, id)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = cancel.Execute(ctx, Actor{UserID: 99}, id)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
