package appointment

// Availability describes the professional pool for one interval.
type Availability struct {
	Interval            Interval
	ActiveProfessionals int
	Overlapping         int
	Free                int
}

func NewAvailability(iv Interval, active int, booked []Booked) Availability {
	overlapping := CountOverlapping(iv, booked, ActiveOnly)
	return Availability{
		Interval:            iv,
		ActiveProfessionals: active,
		Overlapping:         overlapping,
		Free:                FreeProfessionals(active, overlapping),
	}
}

// Available reports the general-availability rule: strictly fewer
// overlapping active appointments than active professionals.
func (a Availability) Available() bool {
	return a.Overlapping < a.ActiveProfessionals
}
