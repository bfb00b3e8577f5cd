package testfixtures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/tutor-scheduler/internal/persistence"
)

func TestMemoryStoreRejectsDuplicateLessonSlot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	student := NewStudentFixture()
	store.Seed([]persistence.Student{student}, nil, nil)

	start := time.Date(2025, time.October, 8, 16, 0, 0, 0, time.UTC)
	first := NewLessonFixture(student.ID, WithLessonStart(start))
	if err := store.CreateLesson(ctx, first); err != nil {
		t.Fatalf("CreateLesson returned error: %v", err)
	}

	second := NewLessonFixture(student.ID, WithLessonStart(start))
	if err := store.CreateLesson(ctx, second); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemoryStoreEnforcesStudentForeignKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	lesson := NewLessonFixture("ghost")
	if err := store.CreateLesson(ctx, lesson); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestMemoryStoreStudentDeleteCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	student := NewStudentFixture()
	rule := NewRuleFixture(student.ID)
	lesson := NewLessonFixture(student.ID)
	store.Seed([]persistence.Student{student}, []persistence.RecurrenceRule{rule}, []persistence.Lesson{lesson})

	if err := store.DeleteStudent(ctx, student.ID); err != nil {
		t.Fatalf("DeleteStudent returned error: %v", err)
	}

	if _, err := store.GetLesson(ctx, lesson.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected cascade-deleted lesson, got %v", err)
	}
	if _, err := store.GetRecurrence(ctx, rule.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected cascade-deleted rule, got %v", err)
	}
}

func TestMemoryStoreRuleDeleteDetachesLessons(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	student := NewStudentFixture()
	rule := NewRuleFixture(student.ID)
	lesson := NewLessonFixture(student.ID, WithLessonRecurrence(rule.ID))
	store.Seed([]persistence.Student{student}, []persistence.RecurrenceRule{rule}, []persistence.Lesson{lesson})

	if err := store.DeleteRecurrence(ctx, rule.ID); err != nil {
		t.Fatalf("DeleteRecurrence returned error: %v", err)
	}

	detached, err := store.GetLesson(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("GetLesson returned error: %v", err)
	}
	if detached.RecurrenceID != nil {
		t.Fatalf("expected detached lesson, still linked to %q", *detached.RecurrenceID)
	}
}
