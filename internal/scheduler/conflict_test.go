package scheduler

import (
	"testing"
	"time"
)

func TestDetectOverlaps(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, time.October, 1, 16, 0, 0, 0, time.UTC)

	t.Run("intersecting slots produce a conflict", func(t *testing.T) {
		t.Parallel()

		conflicts := DetectOverlaps([]Slot{
			{ID: "a", StudentID: "s1", Start: base, DurationMinutes: 60},
			{ID: "b", StudentID: "s2", Start: base.Add(30 * time.Minute), DurationMinutes: 60},
		})
		if len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(conflicts))
		}
		if conflicts[0].FirstID != "a" || conflicts[0].SecondID != "b" {
			t.Fatalf("unexpected pair: %+v", conflicts[0])
		}
		if conflicts[0].Overlap != 30*time.Minute {
			t.Fatalf("expected 30m overlap, got %s", conflicts[0].Overlap)
		}
	})

	t.Run("contained slot reports its own length", func(t *testing.T) {
		t.Parallel()

		conflicts := DetectOverlaps([]Slot{
			{ID: "long", Start: base, DurationMinutes: 90},
			{ID: "short", Start: base.Add(20 * time.Minute), DurationMinutes: 30},
		})
		if len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(conflicts))
		}
		if conflicts[0].Overlap != 30*time.Minute {
			t.Fatalf("expected the contained slot's 30m, got %s", conflicts[0].Overlap)
		}
	})

	t.Run("back to back slots do not conflict", func(t *testing.T) {
		t.Parallel()

		conflicts := DetectOverlaps([]Slot{
			{ID: "a", Start: base, DurationMinutes: 40},
			{ID: "b", Start: base.Add(40 * time.Minute), DurationMinutes: 40},
		})
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %v", conflicts)
		}
	})

	t.Run("one slot overlapping several reports each pair", func(t *testing.T) {
		t.Parallel()

		conflicts := DetectOverlaps([]Slot{
			{ID: "block", Start: base, DurationMinutes: 120},
			{ID: "first", Start: base.Add(10 * time.Minute), DurationMinutes: 30},
			{ID: "second", Start: base.Add(60 * time.Minute), DurationMinutes: 30},
		})
		if len(conflicts) != 2 {
			t.Fatalf("expected 2 conflicts, got %d: %v", len(conflicts), conflicts)
		}
	})

	t.Run("fewer than two slots never conflict", func(t *testing.T) {
		t.Parallel()

		if got := DetectOverlaps(nil); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
		if got := DetectOverlaps([]Slot{{ID: "solo", Start: base, DurationMinutes: 40}}); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})
}
