package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/tutor-scheduler/internal/persistence"
)

// CreateStudent inserts a new roster entry.
func (s *Store) CreateStudent(ctx context.Context, student persistence.Student) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (id, first_name, last_name, guardian_name, phone, email, default_duration, default_price, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		student.ID,
		student.FirstName,
		student.LastName,
		nullableString(student.GuardianName),
		student.Phone,
		nullableString(student.Email),
		student.DefaultDuration,
		student.DefaultPrice,
		formatTime(student.CreatedAt),
		formatTime(student.UpdatedAt),
	)
	return mapError(err)
}

// UpdateStudent overwrites the mutable fields of an existing student.
func (s *Store) UpdateStudent(ctx context.Context, student persistence.Student) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE students
		 SET first_name = ?, last_name = ?, guardian_name = ?, phone = ?, email = ?, default_duration = ?, default_price = ?, updated_at = ?
		 WHERE id = ?`,
		student.FirstName,
		student.LastName,
		nullableString(student.GuardianName),
		student.Phone,
		nullableString(student.Email),
		student.DefaultDuration,
		student.DefaultPrice,
		formatTime(student.UpdatedAt),
		student.ID,
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

// GetStudent retrieves one student by ID.
func (s *Store) GetStudent(ctx context.Context, id string) (persistence.Student, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, guardian_name, phone, email, default_duration, default_price, created_at, updated_at
		 FROM students WHERE id = ?`, id)
	return scanStudent(row)
}

// ListStudents returns the roster ordered by last then first name.
func (s *Store) ListStudents(ctx context.Context) ([]persistence.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, guardian_name, phone, email, default_duration, default_price, created_at, updated_at
		 FROM students ORDER BY last_name COLLATE NOCASE, first_name COLLATE NOCASE, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var students []persistence.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// DeleteStudent removes a student; lessons, rules, and progress entries
// cascade at the schema level.
func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (persistence.Student, error) {
	var (
		student            persistence.Student
		guardian, email    sql.NullString
		createdAt, updated string
	)
	err := row.Scan(
		&student.ID,
		&student.FirstName,
		&student.LastName,
		&guardian,
		&student.Phone,
		&email,
		&student.DefaultDuration,
		&student.DefaultPrice,
		&createdAt,
		&updated,
	)
	if err != nil {
		return persistence.Student{}, mapError(err)
	}

	student.GuardianName = stringPtr(guardian)
	student.Email = stringPtr(email)
	if student.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Student{}, err
	}
	if student.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.Student{}, err
	}
	return student, nil
}
