package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

// Repository is the appointment store. Every admission decision runs
// through Atomic so that reads and the final write share one transaction.
type Repository interface {
	// Atomic runs fn in a single transaction. fn's error rolls it back.
	Atomic(
		ctx context.Context,
		fn func(tx Tx) error,
	) error

	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	ListAppointments(
		ctx context.Context,
		q ListQuery,
	) ([]models.Appointment, error)

	// -------- Availability (read only) --------
	CountActiveProfessionals(
		ctx context.Context,
	) (int, error)

	ListActiveOverlapping(
		ctx context.Context,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}

// Tx is the view of the store inside Atomic. Lock* methods take row locks
// that are held until the transaction ends.
type Tx interface {
	// LockActiveProfessionals locks every active professional row and
	// returns how many there are.
	LockActiveProfessionals(
		ctx context.Context,
	) (int, error)

	// LockProfessional returns ErrProfessionalNotFound when id is unknown.
	LockProfessional(
		ctx context.Context,
		id uint,
	) (*models.Professional, error)

	// LockAppointment returns ErrAppointmentNotFound when id is unknown.
	LockAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	// ListActiveOverlapping returns pending/confirmed appointments whose
	// [start_time, end_time) intersects [start, end). A nil professionalID
	// means any professional; excludeID skips one appointment (0 = none).
	ListActiveOverlapping(
		ctx context.Context,
		start time.Time,
		end time.Time,
		professionalID *uint,
		excludeID uint,
	) ([]models.Appointment, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error
}

type ListQuery struct {
	UserID         *uint
	ProfessionalID *uint
	Status         *Status
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}
