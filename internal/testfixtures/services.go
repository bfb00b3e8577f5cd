package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/tutor-scheduler/internal/application"
	"github.com/example/tutor-scheduler/internal/persistence"
	"github.com/example/tutor-scheduler/internal/recurrence"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults: the reference
// clock and an "id" prefixed sequence.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger overrides the logger passed to constructed services.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// NewStudentService builds a student service on the supplied repository.
func (f *ServiceFactory) NewStudentService(students persistence.StudentRepository) *application.StudentService {
	return application.NewStudentService(students, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// NewLessonService builds a lesson service on the supplied repositories.
func (f *ServiceFactory) NewLessonService(lessons persistence.LessonRepository, students persistence.StudentRepository) *application.LessonService {
	return application.NewLessonService(lessons, students, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// NewRuleService builds a recurrence rule service on the supplied
// repositories.
func (f *ServiceFactory) NewRuleService(rules persistence.RecurrenceRepository, students persistence.StudentRepository) *application.RuleService {
	return application.NewRuleService(rules, students, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// NewProgressService builds a progress note service on the supplied
// repositories.
func (f *ServiceFactory) NewProgressService(progress persistence.ProgressRepository, students persistence.StudentRepository) *application.ProgressService {
	return application.NewProgressService(progress, students, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// NewTimelineService builds a timeline service expanding rules in UTC so test
// expectations are independent of the host time zone.
func (f *ServiceFactory) NewTimelineService(lessons persistence.LessonRepository, rules persistence.RecurrenceRepository) *application.TimelineService {
	expander := recurrence.NewExpander(time.UTC)
	return application.NewTimelineService(lessons, rules, expander, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}
