package appointment

import "time"

// DefaultDuration is applied when a proposal does not carry a duration.
const DefaultDuration = 90 * time.Minute

// Interval is the half-open span [Start, Start+Duration).
//
// Duration must be strictly positive. NewInterval enforces that; the
// functions below assume it and never validate.
type Interval struct {
	Start    time.Time
	Duration time.Duration
}

func NewInterval(start time.Time, duration time.Duration) (Interval, error) {
	if duration <= 0 {
		return Interval{}, ErrInvalidDuration
	}
	return Interval{Start: start, Duration: duration}, nil
}

func (i Interval) End() time.Time {
	return i.Start.Add(i.Duration)
}

// Overlaps reports whether a and b share at least one instant.
// Back-to-back intervals (a ends exactly when b starts) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End()) && b.Start.Before(a.End())
}

// Booked is an existing appointment as seen by the overlap engine.
type Booked struct {
	ID       uint
	Interval Interval
	Status   Status
}

// StatusFilter selects which booked entries take part in counting.
type StatusFilter func(Status) bool

// ActiveOnly keeps Pending and Confirmed entries.
var ActiveOnly StatusFilter = Status.IsActive

// CountOverlapping counts the members of booked that pass filter and overlap
// candidate. The caller narrows booked (by professional, by window) as needed.
func CountOverlapping(candidate Interval, booked []Booked, filter StatusFilter) int {
	n := 0
	for _, b := range booked {
		if filter != nil && !filter(b.Status) {
			continue
		}
		if Overlaps(candidate, b.Interval) {
			n++
		}
	}
	return n
}

// FreeProfessionals is how many active professionals remain unclaimed for an
// interval that already overlaps `overlapping` active appointments.
func FreeProfessionals(active, overlapping int) int {
	if overlapping >= active {
		return 0
	}
	return active - overlapping
}
