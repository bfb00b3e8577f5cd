package http

import (
	"context"
	"log/slog"

	"github.com/example/tutor-scheduler/internal/logging"
)

type contextKey string

const (
	studentIDContextKey  contextKey = "student_id"
	lessonIDContextKey   contextKey = "lesson_id"
	ruleIDContextKey     contextKey = "rule_id"
	progressIDContextKey contextKey = "progress_id"
)

// ContextWithStudentID injects the student identifier resolved from the request path.
func ContextWithStudentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, studentIDContextKey, id)
}

// StudentIDFromContext extracts a student identifier previously associated with the context.
func StudentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(studentIDContextKey).(string)
	return id, ok
}

// ContextWithLessonID injects the lesson identifier resolved from the request path.
func ContextWithLessonID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, lessonIDContextKey, id)
}

// LessonIDFromContext extracts a lesson identifier previously associated with the context.
func LessonIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(lessonIDContextKey).(string)
	return id, ok
}

// ContextWithRuleID injects the rule identifier resolved from the request path.
func ContextWithRuleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ruleIDContextKey, id)
}

// RuleIDFromContext extracts a rule identifier previously associated with the context.
func RuleIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ruleIDContextKey).(string)
	return id, ok
}

// ContextWithProgressID injects the progress entry identifier resolved from the request path.
func ContextWithProgressID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, progressIDContextKey, id)
}

// ProgressIDFromContext extracts a progress entry identifier previously associated with the context.
func ProgressIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(progressIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a logger previously attached to the context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
