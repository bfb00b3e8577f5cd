package sqlite

import (
	"context"
	"fmt"

	"github.com/example/tutor-scheduler/internal/persistence"
)

// CreateProgress inserts a progress note.
func (s *Store) CreateProgress(ctx context.Context, entry persistence.ProgressEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress_entries (id, student_id, recorded_on, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.StudentID,
		formatTime(entry.RecordedOn),
		entry.Notes,
		formatTime(entry.CreatedAt),
		formatTime(entry.UpdatedAt),
	)
	return mapError(err)
}

// UpdateProgress overwrites the date and text of an existing note.
func (s *Store) UpdateProgress(ctx context.Context, entry persistence.ProgressEntry) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE progress_entries SET recorded_on = ?, notes = ?, updated_at = ? WHERE id = ?`,
		formatTime(entry.RecordedOn),
		entry.Notes,
		formatTime(entry.UpdatedAt),
		entry.ID,
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

// GetProgress retrieves one note by ID.
func (s *Store) GetProgress(ctx context.Context, id string) (persistence.ProgressEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, student_id, recorded_on, notes, created_at, updated_at FROM progress_entries WHERE id = ?`, id)
	return scanProgress(row)
}

// ListProgressByStudent returns one student's notes, newest first.
func (s *Store) ListProgressByStudent(ctx context.Context, studentID string) ([]persistence.ProgressEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, recorded_on, notes, created_at, updated_at
		 FROM progress_entries WHERE student_id = ? ORDER BY recorded_on DESC, id`, studentID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var entries []persistence.ProgressEntry
	for rows.Next() {
		entry, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress entries: %w", err)
	}
	return entries, nil
}

// DeleteProgress removes a single note.
func (s *Store) DeleteProgress(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM progress_entries WHERE id = ?`, id)
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

func scanProgress(row rowScanner) (persistence.ProgressEntry, error) {
	var (
		entry              persistence.ProgressEntry
		recordedOn         string
		createdAt, updated string
	)
	err := row.Scan(
		&entry.ID,
		&entry.StudentID,
		&recordedOn,
		&entry.Notes,
		&createdAt,
		&updated,
	)
	if err != nil {
		return persistence.ProgressEntry{}, mapError(err)
	}

	if entry.RecordedOn, err = parseTime(recordedOn); err != nil {
		return persistence.ProgressEntry{}, err
	}
	if entry.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.ProgressEntry{}, err
	}
	if entry.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.ProgressEntry{}, err
	}
	return entry, nil
}
