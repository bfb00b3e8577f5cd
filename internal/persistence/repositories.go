package persistence

import (
	"context"
	"time"
)

// StudentRepository exposes CRUD operations for students.
type StudentRepository interface {
	CreateStudent(ctx context.Context, student Student) error
	UpdateStudent(ctx context.Context, student Student) error
	GetStudent(ctx context.Context, id string) (Student, error)
	ListStudents(ctx context.Context) ([]Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

// LessonRepository stores concrete lesson bookings.
//
// ListLessonsInRange is an inclusive query on the lesson start timestamp and
// returns results ordered ascending by start time.
type LessonRepository interface {
	CreateLesson(ctx context.Context, lesson Lesson) error
	UpdateLesson(ctx context.Context, lesson Lesson) error
	UpdateLessonPayment(ctx context.Context, id string, status PaymentStatus) error
	GetLesson(ctx context.Context, id string) (Lesson, error)
	ListLessonsInRange(ctx context.Context, from, to time.Time) ([]Lesson, error)
	ListLessonsByStudent(ctx context.Context, studentID string) ([]Lesson, error)
	DeleteLesson(ctx context.Context, id string) error
}

// RecurrenceRepository stores weekly recurrence rules.
//
// ListRecurrences returns every rule unfiltered: the reconciler evaluates all
// rules against a window regardless of when they were created.
type RecurrenceRepository interface {
	CreateRecurrence(ctx context.Context, rule RecurrenceRule) error
	UpdateRecurrence(ctx context.Context, rule RecurrenceRule) error
	GetRecurrence(ctx context.Context, id string) (RecurrenceRule, error)
	ListRecurrences(ctx context.Context) ([]RecurrenceRule, error)
	ListRecurrencesByStudent(ctx context.Context, studentID string) ([]RecurrenceRule, error)
	DeleteRecurrence(ctx context.Context, id string) error
}

// ProgressRepository stores dated progress notes for students.
type ProgressRepository interface {
	CreateProgress(ctx context.Context, entry ProgressEntry) error
	UpdateProgress(ctx context.Context, entry ProgressEntry) error
	GetProgress(ctx context.Context, id string) (ProgressEntry, error)
	ListProgressByStudent(ctx context.Context, studentID string) ([]ProgressEntry, error)
	DeleteProgress(ctx context.Context, id string) error
}
