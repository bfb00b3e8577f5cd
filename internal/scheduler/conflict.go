// Package scheduler detects overlapping lesson slots. A single tutor teaches
// one student at a time, so two lessons whose intervals intersect are a
// booking mistake worth surfacing even though they are distinct slots.
package scheduler

import (
	"sort"
	"time"
)

// Slot is a concrete or planned lesson interval.
type Slot struct {
	ID              string
	StudentID       string
	Start           time.Time
	DurationMinutes int
}

// End returns the exclusive end of the slot.
func (s Slot) End() time.Time {
	return s.Start.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Conflict reports two slots whose intervals intersect.
type Conflict struct {
	FirstID  string
	SecondID string
	Overlap  time.Duration
}

// DetectOverlaps finds every pair of slots that overlap in time. Slots that
// merely touch (one ends exactly when the next starts) do not conflict.
// Results come back ordered by the start of the earlier slot.
func DetectOverlaps(slots []Slot) []Conflict {
	if len(slots) < 2 {
		return nil
	}

	sorted := make([]Slot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var conflicts []Conflict
	for i, slot := range sorted {
		end := slot.End()
		for j := i + 1; j < len(sorted); j++ {
			next := sorted[j]
			if !next.Start.Before(end) {
				break
			}
			overlap := end.Sub(next.Start)
			if nextEnd := next.End(); nextEnd.Before(end) {
				overlap = nextEnd.Sub(next.Start)
			}
			conflicts = append(conflicts, Conflict{
				FirstID:  slot.ID,
				SecondID: next.ID,
				Overlap:  overlap,
			})
		}
	}
	return conflicts
}
