package recurrence

import "time"

// LessonKey identifies a booking by student and exact start instant.
//
// Start times are compared at millisecond precision: two lessons for the same
// student on the same day at different times are distinct, and no fuzzy
// matching is applied.
type LessonKey struct {
	StudentID string
	StartMs   int64
}

// KeyFor builds the deduplication key for a student and start timestamp.
func KeyFor(studentID string, start time.Time) LessonKey {
	return LessonKey{StudentID: studentID, StartMs: start.UnixMilli()}
}

// Deduplicate removes candidates that already exist as persisted lessons,
// matched by (student, exact start). Input order is preserved.
func Deduplicate(candidates []Occurrence, existing []LessonKey) []Occurrence {
	if len(candidates) == 0 {
		return nil
	}

	seen := make(map[LessonKey]struct{}, len(existing))
	for _, key := range existing {
		seen[key] = struct{}{}
	}

	kept := make([]Occurrence, 0, len(candidates))
	for _, candidate := range candidates {
		if _, ok := seen[KeyFor(candidate.StudentID, candidate.Start)]; ok {
			continue
		}
		kept = append(kept, candidate)
	}

	if len(kept) == 0 {
		return nil
	}
	return kept
}
