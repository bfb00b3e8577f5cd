package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/tutor-scheduler/internal/persistence"
)

// ProgressService manages free-form progress notes recorded after lessons.
type ProgressService struct {
	progress    persistence.ProgressRepository
	students    persistence.StudentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewProgressService wires dependencies for progress note operations.
func NewProgressService(progress persistence.ProgressRepository, students persistence.StudentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ProgressService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ProgressService{
		progress:    progress,
		students:    students,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateEntry validates and stores a progress note for a student.
func (s *ProgressService) CreateEntry(ctx context.Context, input ProgressInput) (persistence.ProgressEntry, error) {
	if s == nil || s.progress == nil {
		return persistence.ProgressEntry{}, fmt.Errorf("progress repository not configured")
	}

	if _, vErr := resolveStudent(ctx, s.students, input.StudentID); vErr != nil {
		return persistence.ProgressEntry{}, vErr
	}
	if err := validateProgressCore(&input); err != nil {
		return persistence.ProgressEntry{}, err
	}

	createdAt := s.now()
	entry := persistence.ProgressEntry{
		ID:         s.idGenerator(),
		StudentID:  input.StudentID,
		RecordedOn: input.RecordedOn,
		Notes:      input.Notes,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	if err := s.progress.CreateProgress(ctx, entry); err != nil {
		return persistence.ProgressEntry{}, mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "progress", "create", "entry_id", entry.ID, "student_id", entry.StudentID).
		InfoContext(ctx, "progress entry created")
	return entry, nil
}

// UpdateEntry applies validated changes to an existing progress note. The
// student attribution is immutable once recorded.
func (s *ProgressService) UpdateEntry(ctx context.Context, id string, input ProgressInput) (persistence.ProgressEntry, error) {
	if s == nil || s.progress == nil {
		return persistence.ProgressEntry{}, fmt.Errorf("progress repository not configured")
	}

	existing, err := s.progress.GetProgress(ctx, id)
	if err != nil {
		return persistence.ProgressEntry{}, mapRepoError(err)
	}

	if err := validateProgressCore(&input); err != nil {
		return persistence.ProgressEntry{}, err
	}

	updated := existing
	updated.RecordedOn = input.RecordedOn
	updated.Notes = input.Notes
	updated.UpdatedAt = s.now()

	if err := s.progress.UpdateProgress(ctx, updated); err != nil {
		return persistence.ProgressEntry{}, mapRepoError(err)
	}

	return updated, nil
}

// GetEntry retrieves one progress note by ID.
func (s *ProgressService) GetEntry(ctx context.Context, id string) (persistence.ProgressEntry, error) {
	if s == nil || s.progress == nil {
		return persistence.ProgressEntry{}, fmt.Errorf("progress repository not configured")
	}

	entry, err := s.progress.GetProgress(ctx, id)
	if err != nil {
		return persistence.ProgressEntry{}, mapRepoError(err)
	}
	return entry, nil
}

// ListEntriesByStudent returns a student's progress history, newest first.
func (s *ProgressService) ListEntriesByStudent(ctx context.Context, studentID string) ([]persistence.ProgressEntry, error) {
	if s == nil || s.progress == nil {
		return nil, fmt.Errorf("progress repository not configured")
	}

	entries, err := s.progress.ListProgressByStudent(ctx, studentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return entries, nil
}

// DeleteEntry removes a single progress note.
func (s *ProgressService) DeleteEntry(ctx context.Context, id string) error {
	if s == nil || s.progress == nil {
		return fmt.Errorf("progress repository not configured")
	}

	if err := s.progress.DeleteProgress(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

func validateProgressCore(input *ProgressInput) error {
	input.Notes = strings.TrimSpace(input.Notes)

	vErr := &ValidationError{}
	if input.RecordedOn.IsZero() {
		vErr.add("recorded_on", "recorded date is required")
	}
	if input.Notes == "" {
		vErr.add("notes", "notes must not be empty")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
