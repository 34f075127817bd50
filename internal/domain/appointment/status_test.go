package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusCancelled}
	allowed := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, st)

	_, err = ParseStatus("completed")
	assert.Error(t, err)
}

func TestConfirmAndCancel(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ap := &models.Appointment{ID: 7, Status: string(StatusPending)}

	require.NoError(t, Confirm(ap, now))
	assert.Equal(t, string(StatusConfirmed), ap.Status)
	require.NotNil(t, ap.ConfirmedAt)

	assert.ErrorIs(t, Confirm(ap, now), ErrInvalidState)

	require.NoError(t, Cancel(ap, now))
	assert.Equal(t, string(StatusCancelled), ap.Status)
	require.NotNil(t, ap.CancelledAt)

	assert.ErrorIs(t, Cancel(ap, now), ErrInvalidState)
	assert.ErrorIs(t, Confirm(ap, now), ErrInvalidState)
}

func TestBookedOf(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	aps := []models.Appointment{
		{ID: 1, StartTime: start, Duration: time.Hour, Status: "cancelled"},
		{ID: 2, StartTime: start, Duration: time.Hour, Status: "legacy"},
	}

	booked := BookedOf(aps)
	require.Len(t, booked, 2)
	assert.Equal(t, StatusCancelled, booked[0].Status)
	assert.Equal(t, StatusPending, booked[1].Status)
	assert.Equal(t, start.Add(time.Hour), booked[1].Interval.End())
}
