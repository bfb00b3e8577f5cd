package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tutor-scheduler/internal/persistence"
)

// CreateRecurrence inserts a weekly rule.
func (s *Store) CreateRecurrence(ctx context.Context, rule persistence.RecurrenceRule) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurrence_rules (id, student_id, weekday, start_time, duration_minutes, price, starts_on, ends_on, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID,
		rule.StudentID,
		int(rule.Weekday),
		rule.StartTime,
		rule.DurationMinutes,
		rule.Price,
		formatTime(rule.StartsOn),
		nullableTime(rule.EndsOn),
		formatTime(rule.CreatedAt),
		formatTime(rule.UpdatedAt),
	)
	return mapError(err)
}

// UpdateRecurrence overwrites the mutable fields of an existing rule. Changes
// affect future expansion only; lessons already materialized keep their data.
func (s *Store) UpdateRecurrence(ctx context.Context, rule persistence.RecurrenceRule) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recurrence_rules
		 SET student_id = ?, weekday = ?, start_time = ?, duration_minutes = ?, price = ?, starts_on = ?, ends_on = ?, updated_at = ?
		 WHERE id = ?`,
		rule.StudentID,
		int(rule.Weekday),
		rule.StartTime,
		rule.DurationMinutes,
		rule.Price,
		formatTime(rule.StartsOn),
		nullableTime(rule.EndsOn),
		formatTime(rule.UpdatedAt),
		rule.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetRecurrence retrieves one rule by ID.
func (s *Store) GetRecurrence(ctx context.Context, id string) (persistence.RecurrenceRule, error) {
	row := s.db.QueryRowContext(ctx, ruleSelect+` WHERE id = ?`, id)
	return scanRule(row)
}

// ListRecurrences returns every stored rule ordered by ID.
func (s *Store) ListRecurrences(ctx context.Context) ([]persistence.RecurrenceRule, error) {
	rows, err := s.db.QueryContext(ctx, ruleSelect+` ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	return collectRules(rows)
}

// ListRecurrencesByStudent returns one student's rules ordered by ID.
func (s *Store) ListRecurrencesByStudent(ctx context.Context, studentID string) ([]persistence.RecurrenceRule, error) {
	rows, err := s.db.QueryContext(ctx, ruleSelect+` WHERE student_id = ? ORDER BY id`, studentID)
	if err != nil {
		return nil, mapError(err)
	}
	return collectRules(rows)
}

// DeleteRecurrence removes a rule. The lessons materialized from it survive
// with their back-reference cleared by the ON DELETE SET NULL constraint.
func (s *Store) DeleteRecurrence(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurrence_rules WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

const ruleSelect = `SELECT id, student_id, weekday, start_time, duration_minutes, price, starts_on, ends_on, created_at, updated_at FROM recurrence_rules`

func collectRules(rows *sql.Rows) ([]persistence.RecurrenceRule, error) {
	defer rows.Close()

	var rules []persistence.RecurrenceRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurrence rules: %w", err)
	}
	return rules, nil
}

func scanRule(row rowScanner) (persistence.RecurrenceRule, error) {
	var (
		rule               persistence.RecurrenceRule
		weekday            int
		startsOn           string
		endsOn             sql.NullString
		createdAt, updated string
	)
	err := row.Scan(
		&rule.ID,
		&rule.StudentID,
		&weekday,
		&rule.StartTime,
		&rule.DurationMinutes,
		&rule.Price,
		&startsOn,
		&endsOn,
		&createdAt,
		&updated,
	)
	if err != nil {
		return persistence.RecurrenceRule{}, mapError(err)
	}

	rule.Weekday = time.Weekday(weekday)
	if rule.StartsOn, err = parseTime(startsOn); err != nil {
		return persistence.RecurrenceRule{}, err
	}
	if rule.EndsOn, err = timePtr(endsOn); err != nil {
		return persistence.RecurrenceRule{}, err
	}
	if rule.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.RecurrenceRule{}, err
	}
	if rule.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.RecurrenceRule{}, err
	}
	return rule, nil
}
