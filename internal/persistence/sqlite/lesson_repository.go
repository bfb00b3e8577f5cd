package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tutor-scheduler/internal/persistence"
)

// CreateLesson inserts a booking. The unique (student_id, starts_at) index
// turns a second booking of the same slot into ErrDuplicate, which is what
// makes materialization safe to race.
func (s *Store) CreateLesson(ctx context.Context, lesson persistence.Lesson) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lessons (id, student_id, starts_at, duration_minutes, price, payment_status, note, recurrence_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lesson.ID,
		lesson.StudentID,
		lesson.StartsAt.UnixMilli(),
		lesson.DurationMinutes,
		lesson.Price,
		string(lesson.PaymentStatus),
		nullableString(lesson.Note),
		nullableString(lesson.RecurrenceID),
		formatTime(lesson.CreatedAt),
		formatTime(lesson.UpdatedAt),
	)
	return mapError(err)
}

// UpdateLesson overwrites the mutable fields of an existing booking. The
// recurrence back-reference is deliberately not part of the update set.
func (s *Store) UpdateLesson(ctx context.Context, lesson persistence.Lesson) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lessons
		 SET student_id = ?, starts_at = ?, duration_minutes = ?, price = ?, payment_status = ?, note = ?, updated_at = ?
		 WHERE id = ?`,
		lesson.StudentID,
		lesson.StartsAt.UnixMilli(),
		lesson.DurationMinutes,
		lesson.Price,
		string(lesson.PaymentStatus),
		nullableString(lesson.Note),
		formatTime(lesson.UpdatedAt),
		lesson.ID,
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

// UpdateLessonPayment changes only the payment status of one booking.
func (s *Store) UpdateLessonPayment(ctx context.Context, id string, status persistence.PaymentStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lessons SET payment_status = ?, updated_at = ? WHERE id = ?`,
		string(status),
		formatTime(time.Now()),
		id,
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

// GetLesson retrieves one booking by ID.
func (s *Store) GetLesson(ctx context.Context, id string) (persistence.Lesson, error) {
	row := s.db.QueryRowContext(ctx, lessonSelect+` WHERE id = ?`, id)
	return scanLesson(row)
}

// ListLessonsInRange returns bookings whose start instant falls inside the
// closed range [from, to], ascending.
func (s *Store) ListLessonsInRange(ctx context.Context, from, to time.Time) ([]persistence.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		lessonSelect+` WHERE starts_at BETWEEN ? AND ? ORDER BY starts_at, id`,
		from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, mapError(err)
	}
	return collectLessons(rows)
}

// ListLessonsByStudent returns one student's bookings ascending by start.
func (s *Store) ListLessonsByStudent(ctx context.Context, studentID string) ([]persistence.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		lessonSelect+` WHERE student_id = ? ORDER BY starts_at, id`, studentID)
	if err != nil {
		return nil, mapError(err)
	}
	return collectLessons(rows)
}

// DeleteLesson removes a single booking.
func (s *Store) DeleteLesson(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = ?`, id)
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

const lessonSelect = `SELECT id, student_id, starts_at, duration_minutes, price, payment_status, note, recurrence_id, created_at, updated_at FROM lessons`

func collectLessons(rows *sql.Rows) ([]persistence.Lesson, error) {
	defer rows.Close()

	var lessons []persistence.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}
	return lessons, nil
}

func scanLesson(row rowScanner) (persistence.Lesson, error) {
	var (
		lesson             persistence.Lesson
		startsAtMs         int64
		status             string
		note, ruleID       sql.NullString
		createdAt, updated string
	)
	err := row.Scan(
		&lesson.ID,
		&lesson.StudentID,
		&startsAtMs,
		&lesson.DurationMinutes,
		&lesson.Price,
		&status,
		&note,
		&ruleID,
		&createdAt,
		&updated,
	)
	if err != nil {
		return persistence.Lesson{}, mapError(err)
	}

	lesson.StartsAt = time.UnixMilli(startsAtMs).UTC()
	lesson.PaymentStatus = persistence.PaymentStatus(status)
	lesson.Note = stringPtr(note)
	lesson.RecurrenceID = stringPtr(ruleID)
	if lesson.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Lesson{}, err
	}
	if lesson.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.Lesson{}, err
	}
	return lesson, nil
}
