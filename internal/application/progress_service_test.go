package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/tutor-scheduler/internal/application"
	"github.com/example/tutor-scheduler/internal/persistence"
	"github.com/example/tutor-scheduler/internal/testfixtures"
)

func TestProgressServiceCreateAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	student := testfixtures.NewStudentFixture()
	store.Seed([]persistence.Student{student}, nil, nil)

	svc := testfixtures.NewServiceFactory().NewProgressService(store, store)

	older, err := svc.CreateEntry(ctx, application.ProgressInput{
		StudentID:  student.ID,
		RecordedOn: time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
		Notes:      "  introduced arpeggios  ",
	})
	if err != nil {
		t.Fatalf("CreateEntry returned error: %v", err)
	}
	if older.Notes != "introduced arpeggios" {
		t.Fatalf("expected trimmed notes, got %q", older.Notes)
	}

	newer, err := svc.CreateEntry(ctx, application.ProgressInput{
		StudentID:  student.ID,
		RecordedOn: time.Date(2025, time.October, 8, 0, 0, 0, 0, time.UTC),
		Notes:      "arpeggios fluent, started sight reading",
	})
	if err != nil {
		t.Fatalf("CreateEntry returned error: %v", err)
	}

	entries, err := svc.ListEntriesByStudent(ctx, student.ID)
	if err != nil {
		t.Fatalf("ListEntriesByStudent returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != newer.ID {
		t.Fatalf("expected newest entry first, got %q", entries[0].ID)
	}
}

func TestProgressServiceValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	student := testfixtures.NewStudentFixture()
	store.Seed([]persistence.Student{student}, nil, nil)

	svc := testfixtures.NewServiceFactory().NewProgressService(store, store)

	_, err := svc.CreateEntry(ctx, application.ProgressInput{StudentID: student.ID, Notes: "   "})

	var vErr *application.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"recorded_on", "notes"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected field error for %s, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestProgressServiceUpdateKeepsAttribution(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	student := testfixtures.NewStudentFixture()
	entry := testfixtures.NewProgressFixture(student.ID)
	store.Seed([]persistence.Student{student}, nil, nil)
	if err := store.CreateProgress(ctx, entry); err != nil {
		t.Fatalf("seeding progress entry: %v", err)
	}

	svc := testfixtures.NewServiceFactory().NewProgressService(store, store)

	updated, err := svc.UpdateEntry(ctx, entry.ID, application.ProgressInput{
		RecordedOn: entry.RecordedOn,
		Notes:      "revised",
	})
	if err != nil {
		t.Fatalf("UpdateEntry returned error: %v", err)
	}
	if updated.StudentID != student.ID {
		t.Fatalf("student attribution changed: %q", updated.StudentID)
	}
	if updated.Notes != "revised" {
		t.Fatalf("notes not updated: %q", updated.Notes)
	}
}
