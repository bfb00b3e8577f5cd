package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/tutor-scheduler/internal/persistence"
	"github.com/example/tutor-scheduler/internal/recurrence"
)

// RuleService orchestrates validation and persistence for weekly recurrence
// rules.
//
// Updating a rule changes future generation only; lessons already
// materialized from it are never rewritten. Deleting a rule leaves its
// materialized lessons behind as ordinary standalone bookings.
type RuleService struct {
	rules       persistence.RecurrenceRepository
	students    persistence.StudentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRuleService wires dependencies for recurrence rule operations.
func NewRuleService(rules persistence.RecurrenceRepository, students persistence.StudentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RuleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RuleService{
		rules:       rules,
		students:    students,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateRule validates and stores a new weekly slot.
func (s *RuleService) CreateRule(ctx context.Context, input RuleInput) (persistence.RecurrenceRule, error) {
	if s == nil || s.rules == nil {
		return persistence.RecurrenceRule{}, fmt.Errorf("recurrence repository not configured")
	}

	student, vErr := resolveStudent(ctx, s.students, input.StudentID)
	if vErr != nil {
		return persistence.RecurrenceRule{}, vErr
	}
	if input.DurationMinutes == 0 {
		input.DurationMinutes = student.DefaultDuration
	}
	if input.Price == 0 {
		input.Price = student.DefaultPrice
	}

	normalized, err := validateRuleCore(input)
	if err != nil {
		return persistence.RecurrenceRule{}, err
	}

	createdAt := s.now()
	rule := persistence.RecurrenceRule{
		ID:              s.idGenerator(),
		StudentID:       input.StudentID,
		Weekday:         time.Weekday(input.Weekday),
		StartTime:       normalized,
		DurationMinutes: input.DurationMinutes,
		Price:           input.Price,
		StartsOn:        input.StartsOn,
		EndsOn:          input.EndsOn,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}

	if err := s.rules.CreateRecurrence(ctx, rule); err != nil {
		return persistence.RecurrenceRule{}, mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "rules", "create", "rule_id", rule.ID, "student_id", rule.StudentID).
		InfoContext(ctx, "recurrence rule created")
	return rule, nil
}

// UpdateRule applies validated changes to an existing rule.
func (s *RuleService) UpdateRule(ctx context.Context, id string, input RuleInput) (persistence.RecurrenceRule, error) {
	if s == nil || s.rules == nil {
		return persistence.RecurrenceRule{}, fmt.Errorf("recurrence repository not configured")
	}

	existing, err := s.rules.GetRecurrence(ctx, id)
	if err != nil {
		return persistence.RecurrenceRule{}, mapRepoError(err)
	}

	if input.StudentID == "" {
		input.StudentID = existing.StudentID
	}
	if _, vErr := resolveStudent(ctx, s.students, input.StudentID); vErr != nil {
		return persistence.RecurrenceRule{}, vErr
	}

	normalized, err := validateRuleCore(input)
	if err != nil {
		return persistence.RecurrenceRule{}, err
	}

	updated := existing
	updated.StudentID = input.StudentID
	updated.Weekday = time.Weekday(input.Weekday)
	updated.StartTime = normalized
	updated.DurationMinutes = input.DurationMinutes
	updated.Price = input.Price
	updated.StartsOn = input.StartsOn
	updated.EndsOn = input.EndsOn
	updated.UpdatedAt = s.now()

	if err := s.rules.UpdateRecurrence(ctx, updated); err != nil {
		return persistence.RecurrenceRule{}, mapRepoError(err)
	}

	return updated, nil
}

// GetRule retrieves one rule by ID.
func (s *RuleService) GetRule(ctx context.Context, id string) (persistence.RecurrenceRule, error) {
	if s == nil || s.rules == nil {
		return persistence.RecurrenceRule{}, fmt.Errorf("recurrence repository not configured")
	}

	rule, err := s.rules.GetRecurrence(ctx, id)
	if err != nil {
		return persistence.RecurrenceRule{}, mapRepoError(err)
	}
	return rule, nil
}

// ListRules returns every stored rule.
func (s *RuleService) ListRules(ctx context.Context) ([]persistence.RecurrenceRule, error) {
	if s == nil || s.rules == nil {
		return nil, fmt.Errorf("recurrence repository not configured")
	}

	rules, err := s.rules.ListRecurrences(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return rules, nil
}

// ListRulesByStudent returns the rules attached to one student.
func (s *RuleService) ListRulesByStudent(ctx context.Context, studentID string) ([]persistence.RecurrenceRule, error) {
	if s == nil || s.rules == nil {
		return nil, fmt.Errorf("recurrence repository not configured")
	}

	rules, err := s.rules.ListRecurrencesByStudent(ctx, studentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return rules, nil
}

// DeleteRule removes a rule. Lessons already materialized from it stay in
// place as standalone bookings.
func (s *RuleService) DeleteRule(ctx context.Context, id string) error {
	if s == nil || s.rules == nil {
		return fmt.Errorf("recurrence repository not configured")
	}

	if err := s.rules.DeleteRecurrence(ctx, id); err != nil {
		return mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "rules", "delete", "rule_id", id).
		InfoContext(ctx, "recurrence rule deleted")
	return nil
}

func validateRuleCore(input RuleInput) (string, error) {
	vErr := &ValidationError{}

	if input.Weekday < 0 || input.Weekday > 6 {
		vErr.add("weekday", "weekday must be between 0 (Sunday) and 6 (Saturday)")
	}

	hour, minute, parseErr := recurrence.ParseTimeOfDay(input.StartTime)
	if parseErr != nil {
		vErr.add("start_time", "start time must be HH:MM in 24-hour format")
	}

	if input.DurationMinutes <= 0 {
		vErr.add("duration_minutes", "duration must be positive")
	}
	if input.Price < 0 {
		vErr.add("price", "price must not be negative")
	}
	if input.StartsOn.IsZero() {
		vErr.add("starts_on", "rule start date is required")
	}
	if input.EndsOn != nil && !input.StartsOn.IsZero() && input.EndsOn.Before(input.StartsOn) {
		vErr.add("ends_on", "rule end date must not precede its start date")
	}

	if vErr.HasErrors() {
		return "", vErr
	}
	return recurrence.FormatTimeOfDay(hour, minute), nil
}
