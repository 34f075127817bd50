package appointment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/pro-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

type UpdateAppointmentScheduleInput struct {
	AppointmentID uint
	Actor         Actor

	Start             *time.Time
	Duration          *time.Duration
	ProfessionalID    *uint
	ClearProfessional bool
}

type UpdateAppointmentSchedule struct {
	repo      domain.Repository
	admission *Admission
	audit     *audit.Dispatcher
	log       *zap.Logger
}

func NewUpdateAppointmentSchedule(
	repo domain.Repository,
	admission *Admission,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *UpdateAppointmentSchedule {
	if log == nil {
		log = zap.NewNop()
	}
	return &UpdateAppointmentSchedule{
		repo:      repo,
		admission: admission,
		audit:     audit,
		log:       log,
	}
}

func (uc *UpdateAppointmentSchedule) Execute(
	ctx context.Context,
	in UpdateAppointmentScheduleInput,
) (*models.Appointment, error) {

	current, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !in.Actor.CanAccess(current) {
		return nil, domain.ErrAppointmentNotFound
	}

	ap, err := uc.admission.Reschedule(ctx, in.AppointmentID, ScheduleChange{
		Start:             in.Start,
		Duration:          in.Duration,
		ProfessionalID:    in.ProfessionalID,
		ClearProfessional: in.ClearProfessional,
	})
	if err != nil {
		uc.log.Info("reschedule rejected",
			zap.Uint("appointment_id", in.AppointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.Actor.UserID,
		Action:   "appointment_rescheduled",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"start":           ap.StartTime,
			"end":             ap.EndTime,
			"professional_id": ap.ProfessionalID,
		},
	})

	return ap, nil
}
