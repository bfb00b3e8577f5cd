package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/tutor-scheduler/internal/persistence"
)

// LessonService orchestrates validation and persistence for one-off bookings
// and payment state changes.
type LessonService struct {
	lessons     persistence.LessonRepository
	students    persistence.StudentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewLessonService wires dependencies for lesson operations.
func NewLessonService(lessons persistence.LessonRepository, students persistence.StudentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *LessonService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &LessonService{
		lessons:     lessons,
		students:    students,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateLesson validates and inserts a manually booked lesson. Duration and
// price fall back to the student's billing defaults when left at zero.
func (s *LessonService) CreateLesson(ctx context.Context, input LessonInput) (persistence.Lesson, error) {
	if s == nil || s.lessons == nil {
		return persistence.Lesson{}, fmt.Errorf("lesson repository not configured")
	}

	student, vErr := resolveStudent(ctx, s.students, input.StudentID)
	if vErr != nil {
		return persistence.Lesson{}, vErr
	}
	if input.DurationMinutes == 0 {
		input.DurationMinutes = student.DefaultDuration
	}
	if input.Price == 0 {
		input.Price = student.DefaultPrice
	}
	if input.PaymentStatus == "" {
		input.PaymentStatus = persistence.PaymentPending
	}

	if err := validateLessonCore(input); err != nil {
		return persistence.Lesson{}, err
	}

	createdAt := s.now()
	lesson := persistence.Lesson{
		ID:              s.idGenerator(),
		StudentID:       input.StudentID,
		StartsAt:        input.StartsAt,
		DurationMinutes: input.DurationMinutes,
		Price:           input.Price,
		PaymentStatus:   input.PaymentStatus,
		Note:            input.Note,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}

	if err := s.lessons.CreateLesson(ctx, lesson); err != nil {
		return persistence.Lesson{}, mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "lessons", "create", "lesson_id", lesson.ID, "student_id", lesson.StudentID).
		InfoContext(ctx, "lesson created")
	return lesson, nil
}

// UpdateLesson applies validated changes to an existing lesson. The advisory
// rule back-reference and creation timestamp are preserved.
func (s *LessonService) UpdateLesson(ctx context.Context, id string, input LessonInput) (persistence.Lesson, error) {
	if s == nil || s.lessons == nil {
		return persistence.Lesson{}, fmt.Errorf("lesson repository not configured")
	}

	existing, err := s.lessons.GetLesson(ctx, id)
	if err != nil {
		return persistence.Lesson{}, mapRepoError(err)
	}

	if input.StudentID == "" {
		input.StudentID = existing.StudentID
	}
	if _, vErr := resolveStudent(ctx, s.students, input.StudentID); vErr != nil {
		return persistence.Lesson{}, vErr
	}
	if input.PaymentStatus == "" {
		input.PaymentStatus = existing.PaymentStatus
	}

	if err := validateLessonCore(input); err != nil {
		return persistence.Lesson{}, err
	}

	updated := existing
	updated.StudentID = input.StudentID
	updated.StartsAt = input.StartsAt
	updated.DurationMinutes = input.DurationMinutes
	updated.Price = input.Price
	updated.PaymentStatus = input.PaymentStatus
	updated.Note = input.Note
	updated.UpdatedAt = s.now()

	if err := s.lessons.UpdateLesson(ctx, updated); err != nil {
		return persistence.Lesson{}, mapRepoError(err)
	}

	return updated, nil
}

// UpdatePayment changes the payment status of one lesson. Unknown status
// values are rejected before any I/O.
func (s *LessonService) UpdatePayment(ctx context.Context, id string, status persistence.PaymentStatus) (persistence.Lesson, error) {
	if s == nil || s.lessons == nil {
		return persistence.Lesson{}, fmt.Errorf("lesson repository not configured")
	}

	if !status.Valid() {
		vErr := &ValidationError{}
		vErr.add("payment_status", "payment status must be pending, paid, or cancelled")
		return persistence.Lesson{}, vErr
	}

	if err := s.lessons.UpdateLessonPayment(ctx, id, status); err != nil {
		return persistence.Lesson{}, mapRepoError(err)
	}

	lesson, err := s.lessons.GetLesson(ctx, id)
	if err != nil {
		return persistence.Lesson{}, mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "lessons", "update_payment", "lesson_id", id, "status", string(status)).
		InfoContext(ctx, "payment status updated")
	return lesson, nil
}

// GetLesson retrieves one lesson by ID.
func (s *LessonService) GetLesson(ctx context.Context, id string) (persistence.Lesson, error) {
	if s == nil || s.lessons == nil {
		return persistence.Lesson{}, fmt.Errorf("lesson repository not configured")
	}

	lesson, err := s.lessons.GetLesson(ctx, id)
	if err != nil {
		return persistence.Lesson{}, mapRepoError(err)
	}
	return lesson, nil
}

// ListLessons returns persisted lessons whose start falls inside the closed
// range [from, to], ascending.
func (s *LessonService) ListLessons(ctx context.Context, from, to time.Time) ([]persistence.Lesson, error) {
	if s == nil || s.lessons == nil {
		return nil, fmt.Errorf("lesson repository not configured")
	}

	if err := validateWindow(from, to); err != nil {
		return nil, err
	}

	lessons, err := s.lessons.ListLessonsInRange(ctx, from, to)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return lessons, nil
}

// ListLessonsByStudent returns the lesson history for one student.
func (s *LessonService) ListLessonsByStudent(ctx context.Context, studentID string) ([]persistence.Lesson, error) {
	if s == nil || s.lessons == nil {
		return nil, fmt.Errorf("lesson repository not configured")
	}

	lessons, err := s.lessons.ListLessonsByStudent(ctx, studentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return lessons, nil
}

// DeleteLesson removes a single booking.
func (s *LessonService) DeleteLesson(ctx context.Context, id string) error {
	if s == nil || s.lessons == nil {
		return fmt.Errorf("lesson repository not configured")
	}

	if err := s.lessons.DeleteLesson(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

func resolveStudent(ctx context.Context, students persistence.StudentRepository, studentID string) (persistence.Student, *ValidationError) {
	vErr := &ValidationError{}
	if studentID == "" {
		vErr.add("student_id", "student is required")
		return persistence.Student{}, vErr
	}
	if students == nil {
		return persistence.Student{}, nil
	}

	student, err := students.GetStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr.add("student_id", "student does not exist")
			return persistence.Student{}, vErr
		}
		vErr.add("student_id", fmt.Sprintf("student lookup failed: %v", err))
		return persistence.Student{}, vErr
	}
	return student, nil
}

func validateLessonCore(input LessonInput) error {
	vErr := &ValidationError{}

	if input.StartsAt.IsZero() {
		vErr.add("starts_at", "start time is required")
	}
	if input.DurationMinutes <= 0 {
		vErr.add("duration_minutes", "duration must be positive")
	}
	if input.Price < 0 {
		vErr.add("price", "price must not be negative")
	}
	if !input.PaymentStatus.Valid() {
		vErr.add("payment_status", "payment status must be pending, paid, or cancelled")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func validateWindow(from, to time.Time) error {
	vErr := &ValidationError{}
	if from.IsZero() {
		vErr.add("from", "range start is required")
	}
	if to.IsZero() {
		vErr.add("to", "range end is required")
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		vErr.add("range", "range end must not precede range start")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
