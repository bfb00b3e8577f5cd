package persistence

import "time"

// PaymentStatus enumerates the billing states a lesson can be in.
type PaymentStatus string

const (
	// PaymentPending marks a lesson that has not been paid yet.
	PaymentPending PaymentStatus = "pending"
	// PaymentPaid marks a lesson that has been settled.
	PaymentPaid PaymentStatus = "paid"
	// PaymentCancelled marks a lesson that was called off and carries no billable amount.
	PaymentCancelled PaymentStatus = "cancelled"
)

// Valid reports whether the status is one of the three known values.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentCancelled:
		return true
	}
	return false
}

// Student represents a pupil in the tutor's roster together with billing defaults.
type Student struct {
	ID              string
	FirstName       string
	LastName        string
	GuardianName    *string
	Phone           string
	Email           *string
	DefaultDuration int
	DefaultPrice    float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RecurrenceRule represents a weekly repeating lesson slot for a student.
//
// StartsOn and EndsOn are calendar dates (midnight in the service location);
// both bounds are inclusive. A nil EndsOn means the rule is open-ended.
type RecurrenceRule struct {
	ID              string
	StudentID       string
	Weekday         time.Weekday
	StartTime       string // "HH:MM", 24-hour
	DurationMinutes int
	Price           float64
	StartsOn        time.Time
	EndsOn          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Lesson represents a single concrete booking stored in persistence.
//
// RecurrenceID is set only for lessons materialized from a rule; the link is
// advisory and survives rule deletion (the lesson becomes standalone).
type Lesson struct {
	ID              string
	StudentID       string
	StartsAt        time.Time
	DurationMinutes int
	Price           float64
	PaymentStatus   PaymentStatus
	Note            *string
	RecurrenceID    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProgressEntry represents a dated free-text progress note for a student.
type ProgressEntry struct {
	ID         string
	StudentID  string
	RecordedOn time.Time
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
