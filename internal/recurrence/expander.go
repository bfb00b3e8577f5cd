package recurrence

import (
	"errors"
	"time"
)

// Rule describes one weekly repeating lesson slot.
type Rule struct {
	ID              string
	StudentID       string
	Weekday         time.Weekday
	StartHour       int
	StartMinute     int
	DurationMinutes int
	Price           float64
	StartsOn        time.Time
	EndsOn          *time.Time
}

// Occurrence represents a generated instance of a rule. Occurrences are
// transient: they only become lessons once the reconciler materializes them.
type Occurrence struct {
	RuleID          string
	StudentID       string
	Start           time.Time
	DurationMinutes int
	Price           float64
}

// Expander turns rules into concrete occurrences inside a date window.
type Expander struct {
	location *time.Location
}

// NewExpander constructs an Expander that generates occurrences in the
// provided location. If loc is nil, local wall-clock time is used.
func NewExpander(loc *time.Location) *Expander {
	if loc == nil {
		loc = time.Local
	}
	return &Expander{location: loc}
}

// ErrInvalidWeekday indicates the rule weekday is outside Sunday..Saturday.
var ErrInvalidWeekday = errors.New("recurrence: invalid weekday")

// ErrInvalidTimeOfDay indicates the rule start time is not a valid HH:MM value.
var ErrInvalidTimeOfDay = errors.New("recurrence: invalid time of day")

// ErrInvalidDuration indicates the rule duration is not positive.
var ErrInvalidDuration = errors.New("recurrence: duration must be positive")

// ErrInvalidBounds indicates the rule end date precedes its start date.
var ErrInvalidBounds = errors.New("recurrence: rule end date precedes start date")

// ErrInvalidWindow indicates the requested window end precedes its start.
var ErrInvalidWindow = errors.New("recurrence: window end precedes window start")

// Expand produces the occurrences implied by rule inside the closed window
// [windowStart, windowEnd], ordered ascending by start time.
//
// Bounds are evaluated at calendar-date granularity in the expander's
// location: an occurrence whose date equals the rule start, rule end, window
// start, or window end is included. The walk advances day by day to the first
// matching weekday, then steps in fixed 7-day increments. Expand performs no
// I/O and is deterministic for fixed inputs.
func (e *Expander) Expand(rule Rule, windowStart, windowEnd time.Time) ([]Occurrence, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}

	loc := e.location
	if loc == nil {
		loc = time.Local
	}

	winStart := dateOf(windowStart, loc)
	winEnd := dateOf(windowEnd, loc)
	if winEnd.Before(winStart) {
		return nil, ErrInvalidWindow
	}

	lower := winStart
	if ruleStart := dateOf(rule.StartsOn, loc); ruleStart.After(lower) {
		lower = ruleStart
	}

	upper := winEnd
	if rule.EndsOn != nil {
		if ruleEnd := dateOf(*rule.EndsOn, loc); ruleEnd.Before(upper) {
			upper = ruleEnd
		}
	}
	if lower.After(upper) {
		return nil, nil
	}

	cursor := lower
	for cursor.Weekday() != rule.Weekday && !cursor.After(upper) {
		cursor = cursor.AddDate(0, 0, 1)
	}

	var occurrences []Occurrence
	for !cursor.After(upper) {
		start := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), rule.StartHour, rule.StartMinute, 0, 0, loc)
		occurrences = append(occurrences, Occurrence{
			RuleID:          rule.ID,
			StudentID:       rule.StudentID,
			Start:           start,
			DurationMinutes: rule.DurationMinutes,
			Price:           rule.Price,
		})
		cursor = cursor.AddDate(0, 0, 7)
	}

	return occurrences, nil
}

func validateRule(rule Rule) error {
	if rule.Weekday < time.Sunday || rule.Weekday > time.Saturday {
		return ErrInvalidWeekday
	}
	if rule.StartHour < 0 || rule.StartHour > 23 || rule.StartMinute < 0 || rule.StartMinute > 59 {
		return ErrInvalidTimeOfDay
	}
	if rule.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if rule.EndsOn != nil && rule.EndsOn.Before(rule.StartsOn) {
		return ErrInvalidBounds
	}
	return nil
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
