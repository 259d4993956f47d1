// Package recurrence expands a recurring event definition into concrete
// occurrences. Expansion happens once, at event creation; every occurrence is
// persisted as an independent event row with no series identifier.
package recurrence

import "time"

// Cadence is the interval tag driving occurrence expansion.
type Cadence string

const (
	Weekly   Cadence = "weekly"
	Biweekly Cadence = "biweekly"
	Monthly  Cadence = "monthly"
)

// DefaultCount is the number of occurrences generated when the caller does
// not specify one (a year of weekly events).
const DefaultCount = 52

// Occurrence is one materialized instance of a recurring event.
type Occurrence struct {
	Start time.Time
	End   *time.Time
}

// Expand generates exactly count occurrences starting at start, spaced by the
// cadence. count <= 0 falls back to DefaultCount. The optional end instant is
// shifted by the same offset as start, preserving the event's duration.
//
// Monthly expansion uses standard calendar arithmetic: a start near month-end
// may normalize into the following month (Jan 31 + 1 month = Mar 3 in a
// non-leap year). That rollover is accepted, not corrected.
//
// An unrecognized cadence yields no occurrences. Callers treat that as an
// input error to absorb, not a failure to raise.
func Expand(start time.Time, end *time.Time, cadence Cadence, count int) []Occurrence {
	if count <= 0 {
		count = DefaultCount
	}

	var shift func(t time.Time, i int) time.Time
	switch cadence {
	case Weekly:
		shift = func(t time.Time, i int) time.Time { return t.AddDate(0, 0, 7*i) }
	case Biweekly:
		shift = func(t time.Time, i int) time.Time { return t.AddDate(0, 0, 14*i) }
	case Monthly:
		shift = func(t time.Time, i int) time.Time { return t.AddDate(0, i, 0) }
	default:
		return nil
	}

	occurrences := make([]Occurrence, 0, count)
	for i := 0; i < count; i++ {
		occ := Occurrence{Start: shift(start, i)}
		if end != nil {
			e := shift(*end, i)
			occ.End = &e
		}
		occurrences = append(occurrences, occ)
	}
	return occurrences
}
