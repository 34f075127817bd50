package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/pro-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/pro-scheduler/internal/httperr"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
	"github.com/BruksfildServices01/pro-scheduler/internal/timezone"
)

// changeStatus loads the appointment under a row lock, applies transition
// and saves it in one transaction. Status changes do not move the interval,
// so no admission check runs.
func changeStatus(
	ctx context.Context,
	repo domain.Repository,
	id uint,
	actor Actor,
	transition func(*models.Appointment, time.Time) error,
) (*models.Appointment, error) {

	var out *models.Appointment

	err := repo.Atomic(ctx, func(tx domain.Tx) error {
		ap, err := tx.LockAppointment(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(ap) {
			return domain.ErrAppointmentNotFound
		}

		if err := transition(ap, timezone.Now()); err != nil {
			return err
		}

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}
		out = ap
		return nil
	})
	if err != nil {
		return nil, httperr.ClassifyStorage("change appointment status", err)
	}
	return out, nil
}

// ======================================================
// CONFIRM
// ======================================================

type ConfirmAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewConfirmAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *ConfirmAppointment {
	return &ConfirmAppointment{
		repo:  repo,
		audit: audit,
	}
}

func (uc *ConfirmAppointment) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
) (*models.Appointment, error) {

	if !actor.Admin {
		return nil, domain.ErrForbidden
	}

	ap, err := changeStatus(ctx, uc.repo, appointmentID, actor, domain.Confirm)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "appointment_confirmed",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

// ======================================================
// CANCEL
// ======================================================

type CancelAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCancelAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CancelAppointment {
	return &CancelAppointment{
		repo:  repo,
		audit: audit,
	}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := changeStatus(ctx, uc.repo, appointmentID, actor, domain.Cancel)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "appointment_cancelled",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
