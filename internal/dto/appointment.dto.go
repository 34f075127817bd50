package dto

import (
	"time"

	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

type AppointmentDTO struct {
	ID               uint       `json:"id"`
	UserID           uint       `json:"user_id"`
	ProfessionalID   *uint      `json:"professional_id"`
	ProfessionalName string     `json:"professional_name,omitempty"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	DurationMinutes  int64      `json:"duration_minutes"`
	Status           string     `json:"status"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func FromAppointment(ap *models.Appointment) AppointmentDTO {
	out := AppointmentDTO{
		ID:              ap.ID,
		UserID:          ap.UserID,
		ProfessionalID:  ap.ProfessionalID,
		StartTime:       ap.StartTime,
		EndTime:         ap.EndTime,
		DurationMinutes: int64(ap.Duration / time.Minute),
		Status:          ap.Status,
		ConfirmedAt:     ap.ConfirmedAt,
		CancelledAt:     ap.CancelledAt,
		CreatedAt:       ap.CreatedAt,
	}
	if ap.Professional != nil {
		out.ProfessionalName = ap.Professional.Name
	}
	return out
}
