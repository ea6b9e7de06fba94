package rental

import "time"

// DateRange is a closed interval of calendar days. Both endpoints are
// inclusive and normalized to midnight UTC, so two ranges that merely touch
// on one day still overlap.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Day truncates a timestamp to its calendar day at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// Overlaps reports whether two inclusive ranges share at least one day.
// This is the single overlap definition for the whole app: the SQL date
// filter and the booking-time guard both reduce to it.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

// Range returns the rental's booked interval.
func (r Rental) Range() DateRange {
	return NewDateRange(r.StartDate, r.EndDate)
}

// ExpandUnavailableDates expands each rental into its occupied calendar days,
// grouped by field. The booking UI uses this to disable days.
func ExpandUnavailableDates(rentals []Rental) map[string][]time.Time {
	out := make(map[string][]time.Time)

	for _, r := range rentals {
		start := Day(r.StartDate)
		end := Day(r.EndDate)

		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			out[r.SportFieldID] = append(out[r.SportFieldID], d)
		}
	}

	return out
}
