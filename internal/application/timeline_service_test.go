package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/tutor-scheduler/internal/application"
	"github.com/example/tutor-scheduler/internal/persistence"
	"github.com/example/tutor-scheduler/internal/testfixtures"
)

var (
	octoberStart = time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	octoberEnd   = time.Date(2025, time.October, 31, 23, 59, 59, 0, time.UTC)
)

func TestTimelineGeneratesWeeklyOccurrences(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	student := testfixtures.NewStudentFixture()
	rule := testfixtures.NewRuleFixture(student.ID)
	store.Seed([]persistence.Student{student}, []persistence.RecurrenceRule{rule}, nil)

	svc := testfixtures.NewServiceFactory().NewTimelineService(store, store)

	entries, err := svc.Timeline(ctx, octoberStart, octoberEnd)
	if err != nil {
		t.Fatalf("Timeline returned error: %v", err)
	}

	// October 2025 has Wednesdays on the 1st, 8th, 15th, 22nd, and 29th.
	if len(entries) != 5 {
		t.Fatalf("expected 5 occurrences, got %d", len(entries))
	}
	for i, entry := range entries {
		if !entry.Generated {
			t.Fatalf("entry %d should be generated: %+v", i, entry)
		}
		if entry.PaymentStatus != persistence.PaymentPending {
			t.Fatalf("generated entry %d not pending: %q", i, entry.PaymentStatus)
		}
		want := time.Date(2025, time.October, 1+7*i, 16, 0, 0, 0, time.UTC)
		if !entry.StartsAt.Equal(want) {
			t.Fatalf("entry %d starts at %v, want %v", i, entry.StartsAt, want)
		}
		wantID := fmt.Sprintf("recurring_%s_%d", rule.ID, want.UnixMilli())
		if entry.ID != wantID {
			t.Fatalf("entry %d has ID %q, want %q", i, entry.ID, wantID)
		}
		if entry.RecurrenceID == nil || *entry.RecurrenceID != rule.ID {
			t.Fatalf("entry %d missing rule back-reference", i)
		}
	}
}

func TestTimelineMergesPersistedLessons(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	student := testfixtures.NewStudentFixture()
	rule := testfixtures.NewRuleFixture(student.ID)
	booked := testfixtures.NewLessonFixture(student.ID,
		testfixtures.WithLessonStart(time.Date(2025, time.October, 8, 16, 0, 0, 0, time.UTC)),
		testfixtures.WithLessonPayment(persistence.PaymentPaid),
	)
	store.Seed([]persistence.Student{student}, []persistence.RecurrenceRule{rule}, []persistence.Lesson{booked})

	svc := testfixtures.NewServiceFactory().NewTimelineService(store, store)

	entries, err := svc.Timeline(ctx, octoberStart, octoberEnd)
	if err != nil {
		t.Fatalf("Timeline returned error: %v", err)
	}

	if len(entries) != 5 {
		t.Fatalf("expected 5 merged entries, got %d", len(entries))
	}

	generated := 0
	seen := map[int64]bool{}
	for _, entry := range entries {
		key := entry.StartsAt.UnixMilli()
		if seen[key] {
			t.Fatalf("duplicate slot at %v", entry.StartsAt)
		}
		seen[key] = true
		if entry.Generated {
			generated++
		}
	}
	if generated != 4 {
		t.Fatalf("expected 4 generated entries next to the booked one, got %d", generated)
	}

	if entries[1].Generated || entries[1].ID != booked.ID {
		t.Fatalf("expected persisted lesson at position 1, got %+v", entries[1])
	}
	if entries[1].PaymentStatus != persistence.PaymentPaid {
		t.Fatalf("persisted lesson lost its payment status: %q", entries[1].PaymentStatus)
	}
}

func TestTimelineIsDeterministic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	student := testfixtures.NewStudentFixture()
	ruleA := testfixtures.NewRuleFixture(student.ID)
	ruleB := testfixtures.NewRuleFixture(student.ID, testfixtures.WithRuleSlot(time.Monday, "10:00"))
	store.Seed([]persistence.Student{student}, []persistence.RecurrenceRule{ruleA, ruleB}, nil)

	factory := testfixtures.NewServiceFactory()
	first, err := factory.NewTimelineService(store, store).Timeline(ctx, octoberStart, octoberEnd)
	if err != nil {
		t.Fatalf("Timeline returned error: %v", err)
	}
	second, err := factory.NewTimelineService(store, store).Timeline(ctx, octoberStart, octoberEnd)
	if err != nil {
		t.Fatalf("Timeline returned error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("runs disagree on length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.ID != b.ID || !a.StartsAt.Equal(b.StartsAt) || a.Generated != b.Generated || a.PaymentStatus != b.PaymentStatus {
			t.Fatalf("entry %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i].StartsAt.Before(first[i-1].StartsAt) {
			t.Fatalf("timeline not ascending at index %d", i)
		}
	}
}

func TestTimelineAbortsOnStoreFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	store.FailWith = errors.New("disk on fire")

	svc := testfixtures.NewServiceFactory().NewTimelineService(store, store)

	if _, err := svc.Timeline(ctx, octoberStart, octoberEnd); err == nil {
		t.Fatal("expected timeline to abort when the store fails")
	}
}

func TestTimelineWindowValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	svc := testfixtures.NewServiceFactory().NewTimelineService(store, store)

	var vErr *application.ValidationError
	if _, err := svc.Timeline(ctx, octoberEnd, octoberStart); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for inverted window, got %v", err)
	}
}

func TestMaterializeIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	student := testfixtures.NewStudentFixture()
	rule := testfixtures.NewRuleFixture(student.ID)
	store.Seed([]persistence.Student{student}, []persistence.RecurrenceRule{rule}, nil)

	svc := testfixtures.NewServiceFactory().NewTimelineService(store, store)

	first, err := svc.Materialize(ctx, octoberStart, octoberEnd)
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}
	if first.Created != 5 || first.Skipped != 0 || len(first.Errors) != 0 {
		t.Fatalf("unexpected first run result: %+v", first)
	}

	lessons, err := store.ListLessonsInRange(ctx, octoberStart, octoberEnd)
	if err != nil {
		t.Fatalf("ListLessonsInRange returned error: %v", err)
	}
	if len(lessons) != 5 {
		t.Fatalf("expected 5 persisted lessons, got %d", len(lessons))
	}
	for _, lesson := range lessons {
		if lesson.PaymentStatus != persistence.PaymentPending {
			t.Fatalf("materialized lesson not pending: %q", lesson.PaymentStatus)
		}
		if lesson.RecurrenceID == nil || *lesson.RecurrenceID != rule.ID {
			t.Fatalf("materialized lesson missing rule back-reference: %+v", lesson)
		}
	}

	second, err := svc.Materialize(ctx, octoberStart, octoberEnd)
	if err != nil {
		t.Fatalf("second Materialize returned error: %v", err)
	}
	if second.Created != 0 || len(second.Errors) != 0 {
		t.Fatalf("second run should create nothing: %+v", second)
	}

	entries, err := svc.Timeline(ctx, octoberStart, octoberEnd)
	if err != nil {
		t.Fatalf("Timeline returned error: %v", err)
	}
	for _, entry := range entries {
		if entry.Generated {
			t.Fatalf("generated entry survived materialization: %+v", entry)
		}
	}
}

func TestMaterializeSkipsRacingDuplicates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	student := testfixtures.NewStudentFixture()
	// Two rules occupying the same slot produce candidate pairs that collide
	// on the unique (student, start time) constraint, the same way two
	// concurrent materialization runs would.
	ruleA := testfixtures.NewRuleFixture(student.ID)
	ruleB := testfixtures.NewRuleFixture(student.ID)
	store.Seed([]persistence.Student{student}, []persistence.RecurrenceRule{ruleA, ruleB}, nil)

	svc := testfixtures.NewServiceFactory().NewTimelineService(store, store)

	result, err := svc.Materialize(ctx, octoberStart, octoberEnd)
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}
	if result.Created != 5 || result.Skipped != 5 {
		t.Fatalf("expected 5 created and 5 skipped, got %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("duplicate rejections should not surface as errors: %v", result.Errors)
	}
}

func TestPaymentSummaryForRange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testfixtures.NewMemoryStore()
	student := testfixtures.NewStudentFixture()
	inWindow := []persistence.Lesson{
		testfixtures.NewLessonFixture(student.ID,
			testfixtures.WithLessonStart(time.Date(2025, time.October, 2, 16, 0, 0, 0, time.UTC)),
			testfixtures.WithLessonPayment(persistence.PaymentPaid),
			testfixtures.WithLessonPrice(20)),
		testfixtures.NewLessonFixture(student.ID,
			testfixtures.WithLessonStart(time.Date(2025, time.October, 9, 16, 0, 0, 0, time.UTC)),
			testfixtures.WithLessonPayment(persistence.PaymentCancelled),
			testfixtures.WithLessonPrice(20)),
	}
	outOfWindow := testfixtures.NewLessonFixture(student.ID,
		testfixtures.WithLessonStart(time.Date(2025, time.November, 6, 16, 0, 0, 0, time.UTC)),
		testfixtures.WithLessonPayment(persistence.PaymentPaid),
		testfixtures.WithLessonPrice(500))
	store.Seed([]persistence.Student{student}, nil, append(inWindow, outOfWindow))

	svc := testfixtures.NewServiceFactory().NewTimelineService(store, store)

	summary, err := svc.PaymentSummaryForRange(ctx, octoberStart, octoberEnd)
	if err != nil {
		t.Fatalf("PaymentSummaryForRange returned error: %v", err)
	}

	if summary.Total != 2 || summary.Paid != 1 || summary.Cancelled != 1 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.TotalAmount != 20 || summary.PaidAmount != 20 {
		t.Fatalf("unexpected amounts: %+v", summary)
	}
}
