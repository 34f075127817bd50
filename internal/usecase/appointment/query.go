package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/pro-scheduler/internal/dto"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

// ======================================================
// GET
// ======================================================

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

func (uc *GetAppointment) Execute(
	ctx context.Context,
	actor Actor,
	id uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(ap) {
		// Do not reveal other users' appointments.
		return nil, domain.ErrAppointmentNotFound
	}
	return ap, nil
}

// ======================================================
// LIST
// ======================================================

const maxListLimit = 500

// PageLimit clamps a requested page size to (0, 500].
func PageLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// Execute restricts non-admin callers to their own appointments.
func (uc *ListAppointments) Execute(
	ctx context.Context,
	actor Actor,
	q domain.ListQuery,
) ([]dto.AppointmentDTO, error) {

	if !actor.Admin {
		uid := actor.UserID
		q.UserID = &uid
	}
	q.Limit = PageLimit(q.Limit)

	appointments, err := uc.repo.ListAppointments(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentDTO, 0, len(appointments))
	for i := range appointments {
		out = append(out, dto.FromAppointment(&appointments[i]))
	}
	return out, nil
}

// ======================================================
// AVAILABILITY
// ======================================================

type GetAvailability struct {
	repo            domain.Repository
	defaultDuration time.Duration
}

func NewGetAvailability(repo domain.Repository, defaultDuration time.Duration) *GetAvailability {
	if defaultDuration <= 0 {
		defaultDuration = domain.DefaultDuration
	}
	return &GetAvailability{repo: repo, defaultDuration: defaultDuration}
}

// Execute reports the pool for an interval. It takes no locks, so the
// answer may be stale by the time a proposal is made; admission re-checks.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	start time.Time,
	duration *time.Duration,
) (domain.Availability, error) {

	d := uc.defaultDuration
	if duration != nil {
		d = *duration
	}

	iv, err := domain.NewInterval(start, d)
	if err != nil {
		return domain.Availability{}, err
	}

	active, err := uc.repo.CountActiveProfessionals(ctx)
	if err != nil {
		return domain.Availability{}, err
	}

	overlapping, err := uc.repo.ListActiveOverlapping(ctx, iv.Start, iv.End())
	if err != nil {
		return domain.Availability{}, err
	}

	return domain.NewAvailability(iv, active, domain.BookedOf(overlapping)), nil
}
