package application

import (
	"time"

	"github.com/example/tutor-scheduler/internal/persistence"
)

// StudentInput captures caller provided student fields.
type StudentInput struct {
	FirstName       string
	LastName        string
	GuardianName    *string
	Phone           string
	Email           *string
	DefaultDuration int
	DefaultPrice    float64
}

// LessonInput captures caller provided fields for a one-off lesson.
//
// DurationMinutes and Price fall back to the student's billing defaults when
// left at zero.
type LessonInput struct {
	StudentID       string
	StartsAt        time.Time
	DurationMinutes int
	Price           float64
	PaymentStatus   persistence.PaymentStatus
	Note            *string
}

// RuleInput captures caller provided fields for a weekly recurrence rule.
type RuleInput struct {
	StudentID       string
	Weekday         int // 0 = Sunday .. 6 = Saturday
	StartTime       string
	DurationMinutes int
	Price           float64
	StartsOn        time.Time
	EndsOn          *time.Time
}

// ProgressInput captures caller provided fields for a progress note.
type ProgressInput struct {
	StudentID  string
	RecordedOn time.Time
	Notes      string
}

// TimelineEntry is one slot of the reconciled calendar: either a persisted
// lesson or a virtual occurrence generated from a recurrence rule.
//
// Generated entries carry a synthetic display ID and are never persisted with
// it; callers edit the underlying rule for generated entries and the lesson
// itself for persisted ones.
type TimelineEntry struct {
	ID              string
	StudentID       string
	StartsAt        time.Time
	DurationMinutes int
	Price           float64
	PaymentStatus   persistence.PaymentStatus
	Note            *string
	RecurrenceID    *string
	Generated       bool
}

// MaterializeResult reports the outcome of persisting generated occurrences.
//
// Writes are best effort: Created counts successful inserts, Skipped counts
// candidates the store rejected as duplicates of an existing booking, and
// Errors collects per-candidate failure messages.
type MaterializeResult struct {
	Created int
	Skipped int
	Errors  []string
}

// PaymentSummary aggregates payment state over a lesson collection.
//
// Cancelled lessons count toward Total but contribute nothing to the amount
// fields.
type PaymentSummary struct {
	Total          int
	Paid           int
	Pending        int
	Cancelled      int
	TotalAmount    float64
	PaidAmount     float64
	PendingAmount  float64
	PaidPercent    float64
	PendingPercent float64
}
