package appointment

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// StatusOf reads the persisted status of ap into the closed enumeration.
func StatusOf(ap *models.Appointment) (Status, error) {
	st, err := ParseStatus(ap.Status)
	if err != nil {
		return "", fmt.Errorf("appointment %d: %w", ap.ID, err)
	}
	return st, nil
}

// IntervalOf returns the interval booked by ap.
func IntervalOf(ap *models.Appointment) Interval {
	return Interval{Start: ap.StartTime, Duration: ap.Duration}
}

// BookedOf converts persisted rows for the overlap engine. Rows with an
// unknown status are treated as active so they keep blocking their slot.
func BookedOf(aps []models.Appointment) []Booked {
	out := make([]Booked, 0, len(aps))
	for i := range aps {
		st, err := StatusOf(&aps[i])
		if err != nil {
			st = StatusPending
		}
		out = append(out, Booked{
			ID:       aps[i].ID,
			Interval: IntervalOf(&aps[i]),
			Status:   st,
		})
	}
	return out
}

// Schedule sets start, duration and the derived end of ap.
func Schedule(ap *models.Appointment, iv Interval) {
	ap.StartTime = iv.Start
	ap.Duration = iv.Duration
	ap.EndTime = iv.End()
}

func Confirm(ap *models.Appointment, now time.Time) error {
	st, err := StatusOf(ap)
	if err != nil {
		return err
	}
	if err := CanConfirm(st); err != nil {
		return err
	}

	ap.Status = string(StatusConfirmed)
	ap.ConfirmedAt = &now
	return nil
}

func Cancel(ap *models.Appointment, now time.Time) error {
	st, err := StatusOf(ap)
	if err != nil {
		return err
	}
	if err := CanCancel(st); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}
