package testfixtures

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/tutor-scheduler/internal/persistence"
)

// MemoryStore is an in-memory implementation of all four repository
// interfaces, mirroring the behaviour of the SQLite store closely enough for
// service and handler tests: it enforces the unique (student, start time)
// lesson constraint, the student foreign key, cascade deletes, and the
// rule-deletion rule that detaches materialized lessons instead of removing
// them.
type MemoryStore struct {
	mu       sync.RWMutex
	students map[string]persistence.Student
	lessons  map[string]persistence.Lesson
	rules    map[string]persistence.RecurrenceRule
	progress map[string]persistence.ProgressEntry

	// FailWith, when set, is returned verbatim by every operation. Tests use
	// it to exercise error propagation.
	FailWith error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		students: make(map[string]persistence.Student),
		lessons:  make(map[string]persistence.Lesson),
		rules:    make(map[string]persistence.RecurrenceRule),
		progress: make(map[string]persistence.ProgressEntry),
	}
}

// Seed inserts fixtures directly, bypassing constraint checks.
func (m *MemoryStore) Seed(students []persistence.Student, rules []persistence.RecurrenceRule, lessons []persistence.Lesson) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range students {
		m.students[s.ID] = s
	}
	for _, r := range rules {
		m.rules[r.ID] = r
	}
	for _, l := range lessons {
		m.lessons[l.ID] = l
	}
}

// ------------------------------- students --------------------------------

func (m *MemoryStore) CreateStudent(ctx context.Context, student persistence.Student) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.students[student.ID]; exists {
		return persistence.ErrDuplicate
	}
	m.students[student.ID] = student
	return nil
}

func (m *MemoryStore) UpdateStudent(ctx context.Context, student persistence.Student) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.students[student.ID]; !exists {
		return persistence.ErrNotFound
	}
	m.students[student.ID] = student
	return nil
}

func (m *MemoryStore) GetStudent(ctx context.Context, id string) (persistence.Student, error) {
	if m.FailWith != nil {
		return persistence.Student{}, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	student, exists := m.students[id]
	if !exists {
		return persistence.Student{}, persistence.ErrNotFound
	}
	return student, nil
}

func (m *MemoryStore) ListStudents(ctx context.Context) ([]persistence.Student, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]persistence.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return strings.ToLower(out[i].LastName) < strings.ToLower(out[j].LastName)
		}
		return strings.ToLower(out[i].FirstName) < strings.ToLower(out[j].FirstName)
	})
	return out, nil
}

func (m *MemoryStore) DeleteStudent(ctx context.Context, id string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.students[id]; !exists {
		return persistence.ErrNotFound
	}
	delete(m.students, id)
	for lessonID, lesson := range m.lessons {
		if lesson.StudentID == id {
			delete(m.lessons, lessonID)
		}
	}
	for ruleID, rule := range m.rules {
		if rule.StudentID == id {
			delete(m.rules, ruleID)
		}
	}
	for entryID, entry := range m.progress {
		if entry.StudentID == id {
			delete(m.progress, entryID)
		}
	}
	return nil
}

// -------------------------------- lessons --------------------------------

func (m *MemoryStore) CreateLesson(ctx context.Context, lesson persistence.Lesson) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.lessons[lesson.ID]; exists {
		return persistence.ErrDuplicate
	}
	if _, exists := m.students[lesson.StudentID]; !exists {
		return persistence.ErrForeignKeyViolation
	}
	for _, existing := range m.lessons {
		if existing.StudentID == lesson.StudentID && existing.StartsAt.Equal(lesson.StartsAt) {
			return persistence.ErrDuplicate
		}
	}
	m.lessons[lesson.ID] = lesson
	return nil
}

func (m *MemoryStore) UpdateLesson(ctx context.Context, lesson persistence.Lesson) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.lessons[lesson.ID]; !exists {
		return persistence.ErrNotFound
	}
	for id, existing := range m.lessons {
		if id != lesson.ID && existing.StudentID == lesson.StudentID && existing.StartsAt.Equal(lesson.StartsAt) {
			return persistence.ErrDuplicate
		}
	}
	m.lessons[lesson.ID] = lesson
	return nil
}

func (m *MemoryStore) UpdateLessonPayment(ctx context.Context, id string, status persistence.PaymentStatus) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	if !status.Valid() {
		return persistence.ErrConstraintViolation
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	lesson, exists := m.lessons[id]
	if !exists {
		return persistence.ErrNotFound
	}
	lesson.PaymentStatus = status
	m.lessons[id] = lesson
	return nil
}

func (m *MemoryStore) GetLesson(ctx context.Context, id string) (persistence.Lesson, error) {
	if m.FailWith != nil {
		return persistence.Lesson{}, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	lesson, exists := m.lessons[id]
	if !exists {
		return persistence.Lesson{}, persistence.ErrNotFound
	}
	return lesson, nil
}

func (m *MemoryStore) ListLessonsInRange(ctx context.Context, from, to time.Time) ([]persistence.Lesson, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []persistence.Lesson
	for _, lesson := range m.lessons {
		if lesson.StartsAt.Before(from) || lesson.StartsAt.After(to) {
			continue
		}
		out = append(out, lesson)
	}
	sortLessons(out)
	return out, nil
}

func (m *MemoryStore) ListLessonsByStudent(ctx context.Context, studentID string) ([]persistence.Lesson, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []persistence.Lesson
	for _, lesson := range m.lessons {
		if lesson.StudentID == studentID {
			out = append(out, lesson)
		}
	}
	sortLessons(out)
	return out, nil
}

func (m *MemoryStore) DeleteLesson(ctx context.Context, id string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.lessons[id]; !exists {
		return persistence.ErrNotFound
	}
	delete(m.lessons, id)
	return nil
}

// --------------------------------- rules ---------------------------------

func (m *MemoryStore) CreateRecurrence(ctx context.Context, rule persistence.RecurrenceRule) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rules[rule.ID]; exists {
		return persistence.ErrDuplicate
	}
	if _, exists := m.students[rule.StudentID]; !exists {
		return persistence.ErrForeignKeyViolation
	}
	m.rules[rule.ID] = rule
	return nil
}

func (m *MemoryStore) UpdateRecurrence(ctx context.Context, rule persistence.RecurrenceRule) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rules[rule.ID]; !exists {
		return persistence.ErrNotFound
	}
	m.rules[rule.ID] = rule
	return nil
}

func (m *MemoryStore) GetRecurrence(ctx context.Context, id string) (persistence.RecurrenceRule, error) {
	if m.FailWith != nil {
		return persistence.RecurrenceRule{}, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rule, exists := m.rules[id]
	if !exists {
		return persistence.RecurrenceRule{}, persistence.ErrNotFound
	}
	return rule, nil
}

func (m *MemoryStore) ListRecurrences(ctx context.Context) ([]persistence.RecurrenceRule, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]persistence.RecurrenceRule, 0, len(m.rules))
	for _, rule := range m.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListRecurrencesByStudent(ctx context.Context, studentID string) ([]persistence.RecurrenceRule, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []persistence.RecurrenceRule
	for _, rule := range m.rules {
		if rule.StudentID == studentID {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) DeleteRecurrence(ctx context.Context, id string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rules[id]; !exists {
		return persistence.ErrNotFound
	}
	delete(m.rules, id)
	for lessonID, lesson := range m.lessons {
		if lesson.RecurrenceID != nil && *lesson.RecurrenceID == id {
			lesson.RecurrenceID = nil
			m.lessons[lessonID] = lesson
		}
	}
	return nil
}

// -------------------------------- progress -------------------------------

func (m *MemoryStore) CreateProgress(ctx context.Context, entry persistence.ProgressEntry) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.progress[entry.ID]; exists {
		return persistence.ErrDuplicate
	}
	if _, exists := m.students[entry.StudentID]; !exists {
		return persistence.ErrForeignKeyViolation
	}
	m.progress[entry.ID] = entry
	return nil
}

func (m *MemoryStore) UpdateProgress(ctx context.Context, entry persistence.ProgressEntry) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.progress[entry.ID]; !exists {
		return persistence.ErrNotFound
	}
	m.progress[entry.ID] = entry
	return nil
}

func (m *MemoryStore) GetProgress(ctx context.Context, id string) (persistence.ProgressEntry, error) {
	if m.FailWith != nil {
		return persistence.ProgressEntry{}, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, exists := m.progress[id]
	if !exists {
		return persistence.ProgressEntry{}, persistence.ErrNotFound
	}
	return entry, nil
}

func (m *MemoryStore) ListProgressByStudent(ctx context.Context, studentID string) ([]persistence.ProgressEntry, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []persistence.ProgressEntry
	for _, entry := range m.progress {
		if entry.StudentID == studentID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedOn.Equal(out[j].RecordedOn) {
			return out[i].RecordedOn.After(out[j].RecordedOn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) DeleteProgress(ctx context.Context, id string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.progress[id]; !exists {
		return persistence.ErrNotFound
	}
	delete(m.progress, id)
	return nil
}

func sortLessons(lessons []persistence.Lesson) {
	sort.Slice(lessons, func(i, j int) bool {
		if !lessons[i].StartsAt.Equal(lessons[j].StartsAt) {
			return lessons[i].StartsAt.Before(lessons[j].StartsAt)
		}
		return lessons[i].ID < lessons[j].ID
	})
}
