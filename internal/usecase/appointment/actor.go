package appointment

import "github.com/BruksfildServices01/pro-scheduler/internal/models"

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID uint
	Admin  bool
}

func (a Actor) CanAccess(ap *models.Appointment) bool {
	return a.Admin || ap.UserID == a.UserID
}
