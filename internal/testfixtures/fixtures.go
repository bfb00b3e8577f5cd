package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/tutor-scheduler/internal/persistence"
)

var (
	studentCounter  uint64
	lessonCounter   uint64
	ruleCounter     uint64
	progressCounter uint64
)

// StudentOption configures a generated student fixture.
type StudentOption func(*persistence.Student)

// NewStudentFixture returns a deterministic student record with optional
// overrides.
func NewStudentFixture(opts ...StudentOption) persistence.Student {
	idx := atomic.AddUint64(&studentCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	student := persistence.Student{
		ID:              fmt.Sprintf("student-%03d", idx),
		FirstName:       fmt.Sprintf("Student%03d", idx),
		LastName:        "Example",
		Phone:           fmt.Sprintf("+30-69%07d", idx),
		DefaultDuration: 40,
		DefaultPrice:    20,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&student)
	}
	return student
}

// WithStudentID overrides the generated student ID.
func WithStudentID(id string) StudentOption {
	return func(s *persistence.Student) { s.ID = id }
}

// WithStudentName overrides the generated name fields.
func WithStudentName(first, last string) StudentOption {
	return func(s *persistence.Student) {
		s.FirstName = first
		s.LastName = last
	}
}

// WithStudentDefaults overrides the billing defaults.
func WithStudentDefaults(duration int, price float64) StudentOption {
	return func(s *persistence.Student) {
		s.DefaultDuration = duration
		s.DefaultPrice = price
	}
}

// LessonOption configures a generated lesson fixture.
type LessonOption func(*persistence.Lesson)

// NewLessonFixture returns a deterministic pending lesson for the given
// student, one hour after the reference time per invocation.
func NewLessonFixture(studentID string, opts ...LessonOption) persistence.Lesson {
	idx := atomic.AddUint64(&lessonCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	lesson := persistence.Lesson{
		ID:              fmt.Sprintf("lesson-%03d", idx),
		StudentID:       studentID,
		StartsAt:        referenceTime.Add(time.Duration(idx) * time.Hour),
		DurationMinutes: 40,
		Price:           20,
		PaymentStatus:   persistence.PaymentPending,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&lesson)
	}
	return lesson
}

// WithLessonID overrides the generated lesson ID.
func WithLessonID(id string) LessonOption {
	return func(l *persistence.Lesson) { l.ID = id }
}

// WithLessonStart overrides the generated start time.
func WithLessonStart(t time.Time) LessonOption {
	return func(l *persistence.Lesson) { l.StartsAt = t }
}

// WithLessonPayment overrides the payment status.
func WithLessonPayment(status persistence.PaymentStatus) LessonOption {
	return func(l *persistence.Lesson) { l.PaymentStatus = status }
}

// WithLessonPrice overrides the price.
func WithLessonPrice(price float64) LessonOption {
	return func(l *persistence.Lesson) { l.Price = price }
}

// WithLessonRecurrence sets the advisory rule back-reference.
func WithLessonRecurrence(ruleID string) LessonOption {
	return func(l *persistence.Lesson) { l.RecurrenceID = &ruleID }
}

// RuleOption configures a generated recurrence rule fixture.
type RuleOption func(*persistence.RecurrenceRule)

// NewRuleFixture returns a deterministic weekly rule for the given student:
// Wednesdays at 16:00 starting from the reference date, open ended.
func NewRuleFixture(studentID string, opts ...RuleOption) persistence.RecurrenceRule {
	idx := atomic.AddUint64(&ruleCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	rule := persistence.RecurrenceRule{
		ID:              fmt.Sprintf("rule-%03d", idx),
		StudentID:       studentID,
		Weekday:         time.Wednesday,
		StartTime:       "16:00",
		DurationMinutes: 40,
		Price:           20,
		StartsOn:        time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&rule)
	}
	return rule
}

// WithRuleID overrides the generated rule ID.
func WithRuleID(id string) RuleOption {
	return func(r *persistence.RecurrenceRule) { r.ID = id }
}

// WithRuleSlot overrides the weekday and start time.
func WithRuleSlot(weekday time.Weekday, startTime string) RuleOption {
	return func(r *persistence.RecurrenceRule) {
		r.Weekday = weekday
		r.StartTime = startTime
	}
}

// WithRuleBounds overrides the active date range.
func WithRuleBounds(startsOn time.Time, endsOn *time.Time) RuleOption {
	return func(r *persistence.RecurrenceRule) {
		r.StartsOn = startsOn
		r.EndsOn = endsOn
	}
}

// ProgressOption configures a generated progress entry fixture.
type ProgressOption func(*persistence.ProgressEntry)

// NewProgressFixture returns a deterministic progress note for the given
// student.
func NewProgressFixture(studentID string, opts ...ProgressOption) persistence.ProgressEntry {
	idx := atomic.AddUint64(&progressCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	entry := persistence.ProgressEntry{
		ID:         fmt.Sprintf("progress-%03d", idx),
		StudentID:  studentID,
		RecordedOn: referenceTime.AddDate(0, 0, int(idx)),
		Notes:      fmt.Sprintf("worked on scales, session %d", idx),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&entry)
	}
	return entry
}

// WithProgressNotes overrides the note text.
func WithProgressNotes(notes string) ProgressOption {
	return func(p *persistence.ProgressEntry) { p.Notes = notes }
}
