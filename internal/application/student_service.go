package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/tutor-scheduler/internal/persistence"
)

const defaultLessonDuration = 40

// StudentService orchestrates validation and persistence for the roster.
type StudentService struct {
	students    persistence.StudentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewStudentService wires dependencies for student operations.
func NewStudentService(students persistence.StudentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *StudentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &StudentService{
		students:    students,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateStudent validates the input before inserting a new roster entry.
func (s *StudentService) CreateStudent(ctx context.Context, input StudentInput) (persistence.Student, error) {
	if s == nil || s.students == nil {
		return persistence.Student{}, fmt.Errorf("student repository not configured")
	}

	normalizeStudentInput(&input)

	vErr := &ValidationError{}
	validateStudentCore(input, vErr)
	if vErr.HasErrors() {
		return persistence.Student{}, vErr
	}

	createdAt := s.now()
	student := persistence.Student{
		ID:              s.idGenerator(),
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		GuardianName:    input.GuardianName,
		Phone:           input.Phone,
		Email:           input.Email,
		DefaultDuration: input.DefaultDuration,
		DefaultPrice:    input.DefaultPrice,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}

	if err := s.students.CreateStudent(ctx, student); err != nil {
		return persistence.Student{}, mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "students", "create", "student_id", student.ID).
		InfoContext(ctx, "student created")
	return student, nil
}

// UpdateStudent applies validated changes to an existing student. The student
// ID is immutable once assigned.
func (s *StudentService) UpdateStudent(ctx context.Context, id string, input StudentInput) (persistence.Student, error) {
	if s == nil || s.students == nil {
		return persistence.Student{}, fmt.Errorf("student repository not configured")
	}

	existing, err := s.students.GetStudent(ctx, id)
	if err != nil {
		return persistence.Student{}, mapRepoError(err)
	}

	normalizeStudentInput(&input)

	vErr := &ValidationError{}
	validateStudentCore(input, vErr)
	if vErr.HasErrors() {
		return persistence.Student{}, vErr
	}

	updated := existing
	updated.FirstName = input.FirstName
	updated.LastName = input.LastName
	updated.GuardianName = input.GuardianName
	updated.Phone = input.Phone
	updated.Email = input.Email
	updated.DefaultDuration = input.DefaultDuration
	updated.DefaultPrice = input.DefaultPrice
	updated.UpdatedAt = s.now()

	if err := s.students.UpdateStudent(ctx, updated); err != nil {
		return persistence.Student{}, mapRepoError(err)
	}

	return updated, nil
}

// GetStudent retrieves one student by ID.
func (s *StudentService) GetStudent(ctx context.Context, id string) (persistence.Student, error) {
	if s == nil || s.students == nil {
		return persistence.Student{}, fmt.Errorf("student repository not configured")
	}

	student, err := s.students.GetStudent(ctx, id)
	if err != nil {
		return persistence.Student{}, mapRepoError(err)
	}
	return student, nil
}

// ListStudents enumerates the roster ordered by last name.
func (s *StudentService) ListStudents(ctx context.Context) ([]persistence.Student, error) {
	if s == nil || s.students == nil {
		return nil, fmt.Errorf("student repository not configured")
	}

	students, err := s.students.ListStudents(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return students, nil
}

// DeleteStudent removes a student. Associated lessons, rules, and progress
// entries are cascade-deleted by the store.
func (s *StudentService) DeleteStudent(ctx context.Context, id string) error {
	if s == nil || s.students == nil {
		return fmt.Errorf("student repository not configured")
	}

	if err := s.students.DeleteStudent(ctx, id); err != nil {
		return mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "students", "delete", "student_id", id).
		InfoContext(ctx, "student deleted")
	return nil
}

func normalizeStudentInput(input *StudentInput) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.DefaultDuration == 0 {
		input.DefaultDuration = defaultLessonDuration
	}
}

func validateStudentCore(input StudentInput, vErr *ValidationError) {
	if input.FirstName == "" {
		vErr.add("first_name", "first name is required")
	}
	if input.Phone == "" {
		vErr.add("phone", "phone is required")
	}
	if input.DefaultDuration <= 0 {
		vErr.add("default_duration", "default duration must be positive")
	}
	if input.DefaultPrice < 0 {
		vErr.add("default_price", "default price must not be negative")
	}
}
