package appointment

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/pro-scheduler/internal/httperr"
	"github.com/BruksfildServices01/pro-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/pro-scheduler/internal/metrics"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

// admissionLockKey is global: the general-availability check counts every
// active appointment, so admission decisions cannot be partitioned.
const admissionLockKey = "appointments:admission"

// Admission decides whether an appointment may hold its interval and writes
// it in the same critical section. Every write that sets or changes start,
// duration or professional must go through Create or Reschedule.
//
// The critical section is the admission lock (process-local or Redis)
// wrapped around one repository transaction whose row locks cover the
// professionals consulted by the checks.
type Admission struct {
	repo     domain.Repository
	locker   lock.Locker
	lockWait time.Duration
	metrics  *metrics.Collector
	log      *zap.Logger
}

type AdmissionOption func(*Admission)

// WithLockWait bounds how long an admission waits for the lock.
func WithLockWait(d time.Duration) AdmissionOption {
	return func(a *Admission) { a.lockWait = d }
}

func WithMetrics(m *metrics.Collector) AdmissionOption {
	return func(a *Admission) { a.metrics = m }
}

func NewAdmission(
	repo domain.Repository,
	locker lock.Locker,
	log *zap.Logger,
	opts ...AdmissionOption,
) *Admission {
	a := &Admission{
		repo:   repo,
		locker: locker,
		log:    log,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	return a
}

// ScheduleChange lists the scheduling fields to modify. Nil fields keep
// their current value; ClearProfessional unassigns the professional.
type ScheduleChange struct {
	Start             *time.Time
	Duration          *time.Duration
	ProfessionalID    *uint
	ClearProfessional bool
}

// ======================================================
// CREATE
// ======================================================

// Create admits a new appointment and inserts it. An empty status becomes
// Pending. On success ap carries its id and derived end time.
func (a *Admission) Create(ctx context.Context, ap *models.Appointment) error {
	err := a.create(ctx, ap)
	a.observe("create", err)
	return err
}

func (a *Admission) create(ctx context.Context, ap *models.Appointment) error {
	iv, err := domain.NewInterval(ap.StartTime, ap.Duration)
	if err != nil {
		return err
	}

	if ap.Status == "" {
		ap.Status = string(domain.InitialStatus())
	}
	st, err := domain.StatusOf(ap)
	if err != nil || !st.IsActive() {
		return domain.ErrInvalidState
	}

	return a.guard(ctx, "admit appointment", func(tx domain.Tx) error {
		if err := a.checkGeneral(ctx, tx, iv, 0); err != nil {
			return err
		}

		if ap.ProfessionalID != nil {
			if err := a.checkProfessional(ctx, tx, iv, *ap.ProfessionalID, 0); err != nil {
				return err
			}
		}

		domain.Schedule(ap, iv)
		ap.ID = 0
		ap.Professional = nil
		return tx.CreateAppointment(ctx, ap)
	})
}

// ======================================================
// RESCHEDULE
// ======================================================

// Reschedule applies change to an existing, non-cancelled appointment.
//
// Only the professional-specific check re-runs; the general scarcity check
// is applied at creation only. An update can therefore move an
// unassigned appointment into a window where the pool is already full.
func (a *Admission) Reschedule(
	ctx context.Context,
	id uint,
	change ScheduleChange,
) (*models.Appointment, error) {
	ap, err := a.reschedule(ctx, id, change)
	a.observe("reschedule", err)
	return ap, err
}

func (a *Admission) reschedule(
	ctx context.Context,
	id uint,
	change ScheduleChange,
) (*models.Appointment, error) {

	if change.Duration != nil && *change.Duration <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	var updated *models.Appointment

	err := a.guard(ctx, "reschedule appointment", func(tx domain.Tx) error {
		ap, err := tx.LockAppointment(ctx, id)
		if err != nil {
			return err
		}

		st, err := domain.StatusOf(ap)
		if err != nil {
			return err
		}
		if !st.IsActive() {
			return domain.ErrAppointmentCancelled
		}

		start, duration := ap.StartTime, ap.Duration
		if change.Start != nil {
			start = *change.Start
		}
		if change.Duration != nil {
			duration = *change.Duration
		}
		iv, err := domain.NewInterval(start, duration)
		if err != nil {
			return err
		}

		professionalID := ap.ProfessionalID
		switch {
		case change.ClearProfessional:
			professionalID = nil
		case change.ProfessionalID != nil:
			pid := *change.ProfessionalID
			professionalID = &pid
		}

		if professionalID != nil {
			if err := a.checkProfessional(ctx, tx, iv, *professionalID, ap.ID); err != nil {
				return err
			}
		}

		domain.Schedule(ap, iv)
		ap.ProfessionalID = professionalID
		ap.Professional = nil

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}
		updated = ap
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ======================================================
// REVALIDATE
// ======================================================

// Revalidate re-runs both checks for an existing appointment without
// writing anything. The appointment never counts against itself, so an
// admitted, untouched appointment always passes.
func (a *Admission) Revalidate(ctx context.Context, id uint) (domain.Availability, error) {
	var av domain.Availability

	err := a.guard(ctx, "revalidate appointment", func(tx domain.Tx) error {
		ap, err := tx.LockAppointment(ctx, id)
		if err != nil {
			return err
		}

		st, err := domain.StatusOf(ap)
		if err != nil {
			return err
		}
		if !st.IsActive() {
			return domain.ErrAppointmentCancelled
		}

		iv, err := domain.NewInterval(ap.StartTime, ap.Duration)
		if err != nil {
			return err
		}

		av, err = a.availability(ctx, tx, iv, ap.ID)
		if err != nil {
			return err
		}
		if !av.Available() {
			return domain.ErrNoProfessionalsAvailable
		}

		if ap.ProfessionalID != nil {
			return a.checkProfessional(ctx, tx, iv, *ap.ProfessionalID, ap.ID)
		}
		return nil
	})

	a.observe("revalidate", err)
	return av, err
}

// ======================================================
// CHECKS
// ======================================================

func (a *Admission) availability(
	ctx context.Context,
	tx domain.Tx,
	iv domain.Interval,
	excludeID uint,
) (domain.Availability, error) {

	active, err := tx.LockActiveProfessionals(ctx)
	if err != nil {
		return domain.Availability{}, err
	}

	overlapping, err := tx.ListActiveOverlapping(ctx, iv.Start, iv.End(), nil, excludeID)
	if err != nil {
		return domain.Availability{}, err
	}

	return domain.NewAvailability(iv, active, domain.BookedOf(overlapping)), nil
}

func (a *Admission) checkGeneral(
	ctx context.Context,
	tx domain.Tx,
	iv domain.Interval,
	excludeID uint,
) error {

	av, err := a.availability(ctx, tx, iv, excludeID)
	if err != nil {
		return err
	}
	if !av.Available() {
		a.log.Debug("general availability exhausted",
			zap.Time("start", iv.Start),
			zap.Duration("duration", iv.Duration),
			zap.Int("active_professionals", av.ActiveProfessionals),
			zap.Int("overlapping", av.Overlapping),
		)
		return domain.ErrNoProfessionalsAvailable
	}
	return nil
}

// checkProfessional treats an inactive professional as unavailable.
func (a *Admission) checkProfessional(
	ctx context.Context,
	tx domain.Tx,
	iv domain.Interval,
	professionalID uint,
	excludeID uint,
) error {

	p, err := tx.LockProfessional(ctx, professionalID)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return domain.ErrProfessionalUnavailable
	}

	booked, err := tx.ListActiveOverlapping(ctx, iv.Start, iv.End(), &professionalID, excludeID)
	if err != nil {
		return err
	}
	if domain.CountOverlapping(iv, domain.BookedOf(booked), domain.ActiveOnly) > 0 {
		return domain.ErrProfessionalUnavailable
	}
	return nil
}

// ======================================================
// CRITICAL SECTION
// ======================================================

func (a *Admission) guard(
	ctx context.Context,
	op string,
	fn func(tx domain.Tx) error,
) error {

	lockCtx := ctx
	if a.lockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, a.lockWait)
		defer cancel()
	}

	waitStart := time.Now()
	release, err := a.locker.Acquire(lockCtx, admissionLockKey)
	a.metrics.ObserveLockWait(time.Since(waitStart))
	if err != nil {
		return httperr.Transient(op, err)
	}
	defer release()

	return httperr.ClassifyStorage(op, a.repo.Atomic(ctx, fn))
}

func (a *Admission) observe(op string, err error) {
	outcome := "admitted"
	if err != nil {
		if code, ok := httperr.BusinessCode(err); ok {
			outcome = code
		} else if httperr.IsTransient(err) {
			outcome = "transient"
		} else {
			outcome = "error"
		}
	}
	a.metrics.ObserveAdmission(op, outcome)
}
