package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2025, time.October, 6, 9, 30, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(45 * time.Minute)
	if !updated.Equal(start.Add(45 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(3 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(3 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(3*time.Hour), got)
	}
}

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("lesson")

	if first, second := gen.Next(), gen.Next(); first != "lesson-1" || second != "lesson-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}

	gen.Reset()
	if next := gen.Next(); next != "lesson-1" {
		t.Fatalf("expected lesson-1 after reset, got %q", next)
	}
}
