package recurrence

import (
	"testing"
	"time"
)

func TestExpandWeekly(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	occs := Expand(start, nil, Weekly, 3)
	if len(occs) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(occs))
	}

	want := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	for i, occ := range occs {
		if !occ.Start.Equal(want[i]) {
			t.Errorf("occurrence %d start = %v, want %v", i, occ.Start, want[i])
		}
		if occ.End != nil {
			t.Errorf("occurrence %d end should be nil", i)
		}
	}
}

func TestExpandBiweekly(t *testing.T) {
	start := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)

	occs := Expand(start, nil, Biweekly, 4)
	if len(occs) != 4 {
		t.Fatalf("got %d occurrences, want 4", len(occs))
	}
	for i := 1; i < len(occs); i++ {
		gap := occs[i].Start.Sub(occs[i-1].Start)
		if gap != 14*24*time.Hour {
			t.Errorf("gap between occurrence %d and %d = %v, want 336h", i-1, i, gap)
		}
	}
}

func TestExpandMonthly(t *testing.T) {
	start := time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)

	occs := Expand(start, nil, Monthly, 3)
	want := []time.Time{
		time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC),
		time.Date(2024, 2, 15, 18, 30, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC),
	}
	for i, occ := range occs {
		if !occ.Start.Equal(want[i]) {
			t.Errorf("occurrence %d start = %v, want %v", i, occ.Start, want[i])
		}
	}
}

func TestExpandMonthlyEndOfMonthRollsOver(t *testing.T) {
	// Jan 31 + 1 month normalizes to Mar 2 in a leap year. This is the
	// accepted calendar behavior, not something to correct.
	start := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)

	occs := Expand(start, nil, Monthly, 2)
	want := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	if !occs[1].Start.Equal(want) {
		t.Errorf("second occurrence = %v, want %v", occs[1].Start, want)
	}
}

func TestExpandShiftsEndWithStart(t *testing.T) {
	start := time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 20, 30, 0, 0, time.UTC)

	occs := Expand(start, &end, Weekly, 2)
	for i, occ := range occs {
		if occ.End == nil {
			t.Fatalf("occurrence %d end should not be nil", i)
		}
		if dur := occ.End.Sub(occ.Start); dur != 90*time.Minute {
			t.Errorf("occurrence %d duration = %v, want 90m", i, dur)
		}
	}
	if !occs[1].End.Equal(end.AddDate(0, 0, 7)) {
		t.Errorf("second end = %v, want %v", occs[1].End, end.AddDate(0, 0, 7))
	}
}

func TestExpandDefaultCount(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	occs := Expand(start, nil, Weekly, 0)
	if len(occs) != DefaultCount {
		t.Errorf("got %d occurrences, want %d", len(occs), DefaultCount)
	}
}

func TestExpandStrictlyIncreasing(t *testing.T) {
	start := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)

	for _, cadence := range []Cadence{Weekly, Biweekly, Monthly} {
		occs := Expand(start, nil, cadence, 12)
		for i := 1; i < len(occs); i++ {
			if !occs[i].Start.After(occs[i-1].Start) {
				t.Errorf("%s: occurrence %d (%v) not after %d (%v)",
					cadence, i, occs[i].Start, i-1, occs[i-1].Start)
			}
		}
	}
}

func TestExpandUnknownCadence(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, cadence := range []Cadence{"", "daily", "yearly", "WEEKLY"} {
		if occs := Expand(start, nil, cadence, 5); len(occs) != 0 {
			t.Errorf("Expand with cadence %q returned %d occurrences, want 0", cadence, len(occs))
		}
	}
}
