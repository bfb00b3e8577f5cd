package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/tutor-scheduler/internal/application"
	"github.com/example/tutor-scheduler/internal/testfixtures"
)

func TestStudentServiceCreateAppliesDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	factory := testfixtures.NewServiceFactory(testfixtures.WithIDGenerator(testfixtures.NewIDGenerator("student")))
	svc := factory.NewStudentService(store)

	student, err := svc.CreateStudent(ctx, application.StudentInput{
		FirstName: "  Maria ",
		LastName:  "Papadopoulou",
		Phone:     "+30-6912345678",
	})
	if err != nil {
		t.Fatalf("CreateStudent returned error: %v", err)
	}

	if student.ID != "student-1" {
		t.Fatalf("unexpected ID %q", student.ID)
	}
	if student.FirstName != "Maria" {
		t.Fatalf("expected trimmed first name, got %q", student.FirstName)
	}
	if student.DefaultDuration != 40 {
		t.Fatalf("expected default duration 40, got %d", student.DefaultDuration)
	}
	if !student.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), student.CreatedAt)
	}
}

func TestStudentServiceCreateValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := testfixtures.NewServiceFactory().NewStudentService(testfixtures.NewMemoryStore())

	_, err := svc.CreateStudent(ctx, application.StudentInput{LastName: "Nguyen", DefaultPrice: -5})

	var vErr *application.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"first_name", "phone", "default_price"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected field error for %s, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestStudentServiceUpdatePreservesIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	factory := testfixtures.NewServiceFactory()
	svc := factory.NewStudentService(store)

	created, err := svc.CreateStudent(ctx, application.StudentInput{FirstName: "Nikos", Phone: "123"})
	if err != nil {
		t.Fatalf("CreateStudent returned error: %v", err)
	}

	factory.Clock.Advance(1)
	updated, err := svc.UpdateStudent(ctx, created.ID, application.StudentInput{FirstName: "Nikolaos", Phone: "123"})
	if err != nil {
		t.Fatalf("UpdateStudent returned error: %v", err)
	}

	if updated.ID != created.ID {
		t.Fatalf("ID changed on update: %q -> %q", created.ID, updated.ID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("creation timestamp changed on update")
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected UpdatedAt to advance")
	}
}

func TestStudentServiceNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := testfixtures.NewServiceFactory().NewStudentService(testfixtures.NewMemoryStore())

	if _, err := svc.GetStudent(ctx, "missing"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteStudent(ctx, "missing"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
