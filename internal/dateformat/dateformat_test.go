package dateformat

import (
	"testing"
	"time"
)

// A fixed reference clock keeps every case deterministic.
// 2024-11-22 is a Friday.
var now = time.Date(2024, time.November, 22, 18, 30, 0, 0, time.UTC)

func TestDynamic(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{
			name: "today shows time of day",
			ts:   time.Date(2024, time.November, 22, 16, 20, 0, 0, time.UTC),
			want: "16:20",
		},
		{
			name: "within a week shows weekday",
			ts:   time.Date(2024, time.November, 18, 9, 0, 0, 0, time.UTC), // Monday
			want: "hétfő",
		},
		{
			name: "same year shows abbreviated month and day",
			ts:   time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC),
			want: "márc. 5.",
		},
		{
			name: "older shows full date",
			ts:   time.Date(2022, time.October, 20, 9, 0, 0, 0, time.UTC),
			want: "2022. 10. 20.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dynamic(tt.ts, now); got != tt.want {
				t.Errorf("Dynamic(%v) = %q, want %q", tt.ts, got, tt.want)
			}
		})
	}
}

func TestDynamicBoundary(t *testing.T) {
	// Exactly 7 days ago falls out of the weekday window.
	ts := now.Add(-7 * 24 * time.Hour)
	if got := Dynamic(ts, now); got != "nov. 15." {
		t.Errorf("Dynamic(7 days ago) = %q, want %q", got, "nov. 15.")
	}
}

func TestEventHelpers(t *testing.T) {
	start := time.Date(2024, time.September, 3, 18, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.September, 3, 19, 30, 0, 0, time.UTC)

	if got := MonthShort(start); got != "szept" {
		t.Errorf("MonthShort = %q, want %q", got, "szept")
	}
	if got := Day(start); got != 3 {
		t.Errorf("Day = %d, want 3", got)
	}
	if got := TimeRange(start, end); got != "18:00-19:30" {
		t.Errorf("TimeRange = %q, want %q", got, "18:00-19:30")
	}
}
