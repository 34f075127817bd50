package appointment

import "github.com/BruksfildServices01/pro-scheduler/internal/httperr"

var (
	ErrNoProfessionalsAvailable = httperr.ErrBusiness("no_professionals_available")
	ErrProfessionalUnavailable  = httperr.ErrBusiness("professional_unavailable")
	ErrInvalidDuration          = httperr.ErrBusiness("invalid_duration")

	ErrAppointmentNotFound  = httperr.ErrBusiness("appointment_not_found")
	ErrProfessionalNotFound = httperr.ErrBusiness("professional_not_found")
	ErrAppointmentCancelled = httperr.ErrBusiness("appointment_cancelled")
	ErrInvalidState         = httperr.ErrBusiness("invalid_state")
	ErrForbidden            = httperr.ErrBusiness("forbidden")
)
