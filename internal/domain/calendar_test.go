package domain_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"streaks/internal/domain"
)

func TestEligibleDays(t *testing.T) {
	tests := []struct {
		name   string
		anchor string
		asOf   string
		sent   []string
		want   []string
	}{
		{
			name:   "excludes sundays",
			anchor: "2026-03-02",
			asOf:   "2026-03-09",
			want: []string{
				"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05",
				"2026-03-06", "2026-03-07", "2026-03-09",
			},
		},
		{
			name:   "intersects with sent days",
			anchor: "2026-03-02",
			asOf:   "2026-03-09",
			sent:   []string{"2026-03-02", "2026-03-04", "2026-03-08", "2026-03-09"},
			// 03-08 is a Sunday and stays out even though it appears sent.
			want: []string{"2026-03-02", "2026-03-04", "2026-03-09"},
		},
		{
			name:   "single day window",
			anchor: "2026-03-04",
			asOf:   "2026-03-04",
			want:   []string{"2026-03-04"},
		},
		{
			name:   "sunday-only window is empty",
			anchor: "2026-03-08",
			asOf:   "2026-03-08",
			want:   []string{},
		},
		{
			name:   "inverted range is empty",
			anchor: "2026-03-09",
			asOf:   "2026-03-02",
			want:   []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var sent domain.DaySet
			if tc.sent != nil {
				sent = domain.NewDaySet(tc.sent...)
			}
			got, err := domain.EligibleDays(tc.anchor, tc.asOf, time.UTC, sent)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got.Sorted()); diff != "" {
				t.Errorf("eligible days mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEligibleDays_BadInput(t *testing.T) {
	if _, err := domain.EligibleDays("nope", "2026-03-04", time.UTC, nil); err == nil {
		t.Fatal("expected error for malformed anchor")
	}
	if _, err := domain.EligibleDays("2026-03-04", "nope", time.UTC, nil); err == nil {
		t.Fatal("expected error for malformed asOf")
	}
}

func TestEligibleDays_YearRange(t *testing.T) {
	got, err := domain.EligibleDays("2025-01-01", "2025-12-31", time.UTC, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 365 days in 2025, 52 of them Sundays.
	if got.Has("2025-01-05") {
		t.Error("2025-01-05 is a Sunday and must not be eligible")
	}
	if len(got) != 365-52 {
		t.Errorf("len = %d; want %d", len(got), 365-52)
	}
}
