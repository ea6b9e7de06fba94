package rental

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayNormalization(t *testing.T) {
	in := time.Date(2024, time.June, 11, 23, 59, 59, 999, time.FixedZone("UTC+3", 3*3600))

	got := Day(in)
	want := date(2024, time.June, 11)

	// 23:59 UTC+3 is 20:59 UTC, still the 11th
	if !got.Equal(want) {
		t.Fatalf("Day(%v) = %v, want %v", in, got, want)
	}

	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("Day did not truncate to midnight: %v", got)
	}
}

func TestDateRangeOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    DateRange
		b    DateRange
		want bool
	}{
		{
			name: "disjoint_before",
			a:    NewDateRange(date(2024, time.June, 1), date(2024, time.June, 3)),
			b:    NewDateRange(date(2024, time.June, 4), date(2024, time.June, 6)),
			want: false,
		},
		{
			name: "touching_on_one_day",
			a:    NewDateRange(date(2024, time.June, 1), date(2024, time.June, 3)),
			b:    NewDateRange(date(2024, time.June, 3), date(2024, time.June, 6)),
			want: true,
		},
		{
			name: "partial_overlap",
			a:    NewDateRange(date(2024, time.June, 10), date(2024, time.June, 12)),
			b:    NewDateRange(date(2024, time.June, 11), date(2024, time.June, 15)),
			want: true,
		},
		{
			name: "fully_contained",
			a:    NewDateRange(date(2024, time.June, 1), date(2024, time.June, 30)),
			b:    NewDateRange(date(2024, time.June, 10), date(2024, time.June, 12)),
			want: true,
		},
		{
			name: "identical_single_day",
			a:    NewDateRange(date(2024, time.June, 5), date(2024, time.June, 5)),
			b:    NewDateRange(date(2024, time.June, 5), date(2024, time.June, 5)),
			want: true,
		},
		{
			name: "single_day_outside",
			a:    NewDateRange(date(2024, time.June, 5), date(2024, time.June, 5)),
			b:    NewDateRange(date(2024, time.June, 6), date(2024, time.June, 6)),
			want: false,
		},
		{
			name: "disjoint_after",
			a:    NewDateRange(date(2024, time.June, 13), date(2024, time.June, 15)),
			b:    NewDateRange(date(2024, time.June, 10), date(2024, time.June, 12)),
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}

			// symmetric by definition
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Fatalf("Overlaps is not symmetric for %v / %v", tt.a, tt.b)
			}
		})
	}
}

func TestOverlapsIgnoresTimeOfDay(t *testing.T) {
	a := NewDateRange(
		time.Date(2024, time.June, 3, 22, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 3, 23, 0, 0, 0, time.UTC),
	)
	b := NewDateRange(
		time.Date(2024, time.June, 3, 1, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 3, 2, 0, 0, 0, time.UTC),
	)

	if !a.Overlaps(b) {
		t.Fatal("ranges on the same calendar day must overlap regardless of clock time")
	}
}

func TestExpandUnavailableDates(t *testing.T) {
	fieldA := "7b0d5a46-9c40-4a9d-8c39-8f9f2f28a111"
	fieldB := "1e7f4458-08a1-4de2-b6a3-b71f5cf3b222"

	rentals := []Rental{
		{SportFieldID: fieldA, StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 3)},
		{SportFieldID: fieldB, StartDate: date(2024, time.January, 2), EndDate: date(2024, time.January, 2)},
	}

	out := ExpandUnavailableDates(rentals)

	if len(out) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(out))
	}

	wantA := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 2),
		date(2024, time.January, 3),
	}

	gotA := out[fieldA]

	if len(gotA) != len(wantA) {
		t.Fatalf("field A: expected %d days, got %d (%v)", len(wantA), len(gotA), gotA)
	}

	for i := range wantA {
		if !gotA[i].Equal(wantA[i]) {
			t.Fatalf("field A day %d: got %v, want %v", i, gotA[i], wantA[i])
		}
	}

	gotB := out[fieldB]

	if len(gotB) != 1 || !gotB[0].Equal(date(2024, time.January, 2)) {
		t.Fatalf("field B: got %v, want exactly [2024-01-02]", gotB)
	}
}

func TestExpandUnavailableDatesEmpty(t *testing.T) {
	out := ExpandUnavailableDates(nil)

	if len(out) != 0 {
		t.Fatalf("expected empty map, got %v", out)
	}
}

func TestCreateRentalRequestValidate(t *testing.T) {
	ok := CreateRentalRequest{
		SportFieldID: "7b0d5a46-9c40-4a9d-8c39-8f9f2f28a111",
		StartDate:    date(2024, time.June, 10),
		EndDate:      date(2024, time.June, 12),
	}

	if err := ok.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	// same day is a valid one-day rental
	sameDay := ok
	sameDay.EndDate = sameDay.StartDate

	if err := sameDay.Validate(); err != nil {
		t.Fatalf("single-day rental rejected: %v", err)
	}

	// end before start only counts after day truncation
	clockInverted := ok
	clockInverted.StartDate = time.Date(2024, time.June, 10, 18, 0, 0, 0, time.UTC)
	clockInverted.EndDate = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

	if err := clockInverted.Validate(); err != nil {
		t.Fatalf("same-day request with inverted clock times rejected: %v", err)
	}

	bad := ok
	bad.EndDate = date(2024, time.June, 9)

	if err := bad.Validate(); err == nil {
		t.Fatal("endDate before startDate must be rejected")
	}
}
