package dto

import (
	"time"

	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/appointment"
)

type AvailabilityDTO struct {
	Start               time.Time `json:"start"`
	End                 time.Time `json:"end"`
	ActiveProfessionals int       `json:"active_professionals"`
	Overlapping         int       `json:"overlapping"`
	Free                int       `json:"free"`
	Available           bool      `json:"available"`
}

func FromAvailability(av domain.Availability) AvailabilityDTO {
	return AvailabilityDTO{
		Start:               av.Interval.Start,
		End:                 av.Interval.End(),
		ActiveProfessionals: av.ActiveProfessionals,
		Overlapping:         av.Overlapping,
		Free:                av.Free,
		Available:           av.Available(),
	}
}
