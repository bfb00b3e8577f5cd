package recurrence

import (
	"testing"
	"time"
)

func TestDeduplicate(t *testing.T) {
	t.Parallel()

	at := func(day, hour int) time.Time {
		return time.Date(2025, time.October, day, hour, 0, 0, 0, time.UTC)
	}

	candidates := []Occurrence{
		{RuleID: "rule-1", StudentID: "student-1", Start: at(1, 16)},
		{RuleID: "rule-1", StudentID: "student-1", Start: at(8, 16)},
		{RuleID: "rule-1", StudentID: "student-1", Start: at(15, 16)},
		{RuleID: "rule-2", StudentID: "student-2", Start: at(8, 16)},
	}

	t.Run("removes exact student and start matches", func(t *testing.T) {
		t.Parallel()

		existing := []LessonKey{KeyFor("student-1", at(8, 16))}

		got := Deduplicate(candidates, existing)
		if len(got) != 3 {
			t.Fatalf("expected 3 survivors, got %d", len(got))
		}
		for _, occurrence := range got {
			if occurrence.StudentID == "student-1" && occurrence.Start.Equal(at(8, 16)) {
				t.Errorf("duplicate survived: %+v", occurrence)
			}
		}
		// Same timestamp for a different student is not a duplicate.
		if got[2].StudentID != "student-2" {
			t.Errorf("student-2 candidate should survive, got %+v", got[2])
		}
	})

	t.Run("matches on exact timestamps only", func(t *testing.T) {
		t.Parallel()

		// Same student and day, different time of day.
		existing := []LessonKey{KeyFor("student-1", at(8, 17))}

		got := Deduplicate(candidates, existing)
		if len(got) != len(candidates) {
			t.Fatalf("expected all %d candidates to survive, got %d", len(candidates), len(got))
		}
	})

	t.Run("preserves input order", func(t *testing.T) {
		t.Parallel()

		got := Deduplicate(candidates, nil)
		if len(got) != len(candidates) {
			t.Fatalf("expected %d survivors, got %d", len(candidates), len(got))
		}
		for i := range got {
			if got[i] != candidates[i] {
				t.Errorf("order changed at %d: %+v vs %+v", i, got[i], candidates[i])
			}
		}
	})

	t.Run("output never intersects the existing set", func(t *testing.T) {
		t.Parallel()

		existing := make([]LessonKey, 0, len(candidates))
		for _, candidate := range candidates {
			existing = append(existing, KeyFor(candidate.StudentID, candidate.Start))
		}

		if got := Deduplicate(candidates, existing); len(got) != 0 {
			t.Fatalf("expected empty result, got %d", len(got))
		}
	})

	t.Run("handles empty inputs", func(t *testing.T) {
		t.Parallel()

		if got := Deduplicate(nil, nil); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})
}
