package appointment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/pro-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type ProposeAppointmentInput struct {
	UserID         uint
	ProfessionalID *uint
	Start          time.Time
	// Nil selects the default duration; zero or negative is rejected.
	Duration *time.Duration
}

// ======================================================
// USE CASE
// ======================================================

type ProposeAppointment struct {
	admission       *Admission
	audit           *audit.Dispatcher
	log             *zap.Logger
	defaultDuration time.Duration
}

func NewProposeAppointment(
	admission *Admission,
	audit *audit.Dispatcher,
	log *zap.Logger,
	defaultDuration time.Duration,
) *ProposeAppointment {
	if defaultDuration <= 0 {
		defaultDuration = domain.DefaultDuration
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProposeAppointment{
		admission:       admission,
		audit:           audit,
		log:             log,
		defaultDuration: defaultDuration,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *ProposeAppointment) Execute(
	ctx context.Context,
	in ProposeAppointmentInput,
) (*models.Appointment, error) {

	duration := uc.defaultDuration
	if in.Duration != nil {
		duration = *in.Duration
	}

	ap := &models.Appointment{
		UserID:         in.UserID,
		ProfessionalID: in.ProfessionalID,
		StartTime:      in.Start,
		Duration:       duration,
		Status:         string(domain.InitialStatus()),
	}

	if err := uc.admission.Create(ctx, ap); err != nil {
		uc.log.Info("appointment rejected",
			zap.Uint("user_id", in.UserID),
			zap.Time("start", in.Start),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		uc.audit.Dispatch(audit.Event{
			UserID: &in.UserID,
			Action: "appointment_rejected",
			Entity: "appointment",
			Metadata: map[string]any{
				"start":           in.Start,
				"duration":        duration.String(),
				"professional_id": in.ProfessionalID,
				"reason":          err.Error(),
			},
		})
		return nil, err
	}

	uc.log.Info("appointment admitted",
		zap.Uint("appointment_id", ap.ID),
		zap.Uint("user_id", ap.UserID),
		zap.Time("start", ap.StartTime),
		zap.Time("end", ap.EndTime),
	)
	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "appointment_admitted",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
