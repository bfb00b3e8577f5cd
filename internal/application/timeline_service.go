package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/tutor-scheduler/internal/persistence"
	"github.com/example/tutor-scheduler/internal/recurrence"
)

// TimelineService reconciles persisted lessons with the virtual occurrences
// generated from recurrence rules.
//
// Timeline is read-only and never writes generated occurrences back to the
// store; Materialize is the single write path for them. Assembled timelines
// are cached briefly, and any materialization run drops the cache.
type TimelineService struct {
	lessons     persistence.LessonRepository
	rules       persistence.RecurrenceRepository
	expander    *recurrence.Expander
	cache       *timelineCache
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// TimelineServiceOption adjusts optional TimelineService behavior.
type TimelineServiceOption func(*timelineServiceSettings)

type timelineServiceSettings struct {
	cacheTTL time.Duration
}

// WithTimelineCacheTTL overrides how long assembled timelines stay cached.
// Zero or negative keeps the default.
func WithTimelineCacheTTL(ttl time.Duration) TimelineServiceOption {
	return func(settings *timelineServiceSettings) {
		settings.cacheTTL = ttl
	}
}

// NewTimelineService wires dependencies for timeline assembly and
// materialization. A nil expander defaults to the local time zone.
func NewTimelineService(lessons persistence.LessonRepository, rules persistence.RecurrenceRepository, expander *recurrence.Expander, idGenerator func() string, now func() time.Time, logger *slog.Logger, opts ...TimelineServiceOption) *TimelineService {
	if expander == nil {
		expander = recurrence.NewExpander(nil)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	var settings timelineServiceSettings
	for _, opt := range opts {
		opt(&settings)
	}
	return &TimelineService{
		lessons:     lessons,
		rules:       rules,
		expander:    expander,
		cache:       newTimelineCache(settings.cacheTTL, 0, now),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Timeline returns the merged calendar for the closed range [from, to]:
// every persisted lesson in the range plus a virtual entry for each rule
// occurrence that has no persisted counterpart. Entries come back ascending
// by start time.
//
// A failure to load either rules or lessons aborts the whole call; a stale
// half-merged timeline is worse than an error.
func (s *TimelineService) Timeline(ctx context.Context, from, to time.Time) ([]TimelineEntry, error) {
	if s == nil || s.lessons == nil || s.rules == nil {
		return nil, fmt.Errorf("timeline repositories not configured")
	}
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}

	cacheKey := buildTimelineCacheKey(from, to)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}

	lessons, occurrences, err := s.assemble(ctx, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]TimelineEntry, 0, len(lessons)+len(occurrences))
	for _, lesson := range lessons {
		entries = append(entries, lessonEntry(lesson))
	}
	for _, occ := range occurrences {
		entries = append(entries, generatedEntry(occ))
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].StartsAt.Equal(entries[j].StartsAt) {
			return entries[i].StartsAt.Before(entries[j].StartsAt)
		}
		return entries[i].ID < entries[j].ID
	})

	s.cache.Store(cacheKey, entries)
	return entries, nil
}

// Materialize persists the generated occurrences for the closed range
// [from, to] as real pending lessons.
//
// Writes are attempted one at a time in ascending start order. A duplicate
// rejection from the store means another writer got there first and counts
// as Skipped; any other failure is recorded and the run continues. Running
// Materialize twice over the same unchanged range creates nothing the
// second time.
func (s *TimelineService) Materialize(ctx context.Context, from, to time.Time) (MaterializeResult, error) {
	if s == nil || s.lessons == nil || s.rules == nil {
		return MaterializeResult{}, fmt.Errorf("timeline repositories not configured")
	}
	if err := validateWindow(from, to); err != nil {
		return MaterializeResult{}, err
	}

	_, occurrences, err := s.assemble(ctx, from, to)
	if err != nil {
		return MaterializeResult{}, err
	}

	var result MaterializeResult
	createdAt := s.now()
	for _, occ := range occurrences {
		ruleID := occ.RuleID
		lesson := persistence.Lesson{
			ID:              s.idGenerator(),
			StudentID:       occ.StudentID,
			StartsAt:        occ.Start,
			DurationMinutes: occ.DurationMinutes,
			Price:           occ.Price,
			PaymentStatus:   persistence.PaymentPending,
			RecurrenceID:    &ruleID,
			CreatedAt:       createdAt,
			UpdatedAt:       createdAt,
		}
		if err := s.lessons.CreateLesson(ctx, lesson); err != nil {
			if errors.Is(err, persistence.ErrDuplicate) {
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("rule %s at %s: %v", occ.RuleID, occ.Start.Format(time.RFC3339), err))
			continue
		}
		result.Created++
	}

	s.cache.Invalidate()
	serviceLogger(ctx, s.logger, "timeline", "materialize",
		"created", result.Created, "skipped", result.Skipped, "failed", len(result.Errors)).
		InfoContext(ctx, "materialization run finished")
	return result, nil
}

// PaymentSummaryForRange aggregates payment state over the persisted lessons
// in the closed range [from, to]. Generated occurrences are not yet billable
// and are excluded.
func (s *TimelineService) PaymentSummaryForRange(ctx context.Context, from, to time.Time) (PaymentSummary, error) {
	if s == nil || s.lessons == nil {
		return PaymentSummary{}, fmt.Errorf("timeline repositories not configured")
	}
	if err := validateWindow(from, to); err != nil {
		return PaymentSummary{}, err
	}

	lessons, err := s.lessons.ListLessonsInRange(ctx, from, to)
	if err != nil {
		return PaymentSummary{}, mapRepoError(err)
	}
	return SummarizePayments(lessons), nil
}

// InvalidateCache drops all cached timelines. Callers that mutate lessons or
// rules outside Materialize use it to avoid serving stale merges.
func (s *TimelineService) InvalidateCache() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

// assemble loads both sides of the merge and returns the persisted lessons
// together with the deduplicated generated occurrences, ascending.
func (s *TimelineService) assemble(ctx context.Context, from, to time.Time) ([]persistence.Lesson, []recurrence.Occurrence, error) {
	rules, err := s.rules.ListRecurrences(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading recurrence rules: %w", mapRepoError(err))
	}
	lessons, err := s.lessons.ListLessonsInRange(ctx, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("loading lessons: %w", mapRepoError(err))
	}

	var candidates []recurrence.Occurrence
	for _, stored := range rules {
		rule, convErr := expansionRule(stored)
		if convErr != nil {
			serviceLogger(ctx, s.logger, "timeline", "expand", "rule_id", stored.ID).
				WarnContext(ctx, "skipping malformed recurrence rule", "error", convErr)
			continue
		}
		occurrences, expandErr := s.expander.Expand(rule, from, to)
		if expandErr != nil {
			serviceLogger(ctx, s.logger, "timeline", "expand", "rule_id", stored.ID).
				WarnContext(ctx, "skipping malformed recurrence rule", "error", expandErr)
			continue
		}
		candidates = append(candidates, occurrences...)
	}

	existing := make([]recurrence.LessonKey, 0, len(lessons))
	for _, lesson := range lessons {
		existing = append(existing, recurrence.KeyFor(lesson.StudentID, lesson.StartsAt))
	}
	survivors := recurrence.Deduplicate(candidates, existing)

	sort.Slice(survivors, func(i, j int) bool {
		if !survivors[i].Start.Equal(survivors[j].Start) {
			return survivors[i].Start.Before(survivors[j].Start)
		}
		return survivors[i].RuleID < survivors[j].RuleID
	})
	return lessons, survivors, nil
}

func expansionRule(stored persistence.RecurrenceRule) (recurrence.Rule, error) {
	hour, minute, err := recurrence.ParseTimeOfDay(stored.StartTime)
	if err != nil {
		return recurrence.Rule{}, err
	}
	return recurrence.Rule{
		ID:              stored.ID,
		StudentID:       stored.StudentID,
		Weekday:         stored.Weekday,
		StartHour:       hour,
		StartMinute:     minute,
		DurationMinutes: stored.DurationMinutes,
		Price:           stored.Price,
		StartsOn:        stored.StartsOn,
		EndsOn:          stored.EndsOn,
	}, nil
}

func lessonEntry(lesson persistence.Lesson) TimelineEntry {
	return TimelineEntry{
		ID:              lesson.ID,
		StudentID:       lesson.StudentID,
		StartsAt:        lesson.StartsAt,
		DurationMinutes: lesson.DurationMinutes,
		Price:           lesson.Price,
		PaymentStatus:   lesson.PaymentStatus,
		Note:            lesson.Note,
		RecurrenceID:    lesson.RecurrenceID,
		Generated:       false,
	}
}

func generatedEntry(occ recurrence.Occurrence) TimelineEntry {
	ruleID := occ.RuleID
	return TimelineEntry{
		ID:              fmt.Sprintf("recurring_%s_%d", occ.RuleID, occ.Start.UnixMilli()),
		StudentID:       occ.StudentID,
		StartsAt:        occ.Start,
		DurationMinutes: occ.DurationMinutes,
		Price:           occ.Price,
		PaymentStatus:   persistence.PaymentPending,
		RecurrenceID:    &ruleID,
		Generated:       true,
	}
}
