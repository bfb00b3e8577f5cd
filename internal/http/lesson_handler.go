package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/tutor-scheduler/internal/application"
	"github.com/example/tutor-scheduler/internal/persistence"
)

type lessonService interface {
	CreateLesson(ctx context.Context, input application.LessonInput) (persistence.Lesson, error)
	UpdateLesson(ctx context.Context, id string, input application.LessonInput) (persistence.Lesson, error)
	UpdatePayment(ctx context.Context, id string, status persistence.PaymentStatus) (persistence.Lesson, error)
	GetLesson(ctx context.Context, id string) (persistence.Lesson, error)
	ListLessons(ctx context.Context, from, to time.Time) ([]persistence.Lesson, error)
	ListLessonsByStudent(ctx context.Context, studentID string) ([]persistence.Lesson, error)
	DeleteLesson(ctx context.Context, id string) error
}

// cacheInvalidator lets mutating handlers drop cached timelines so reads
// right after a write see fresh data.
type cacheInvalidator interface {
	InvalidateCache()
}

type LessonHandler struct {
	service   lessonService
	cache     cacheInvalidator
	responder responder
	logger    *slog.Logger
}

func NewLessonHandler(service lessonService, cache cacheInvalidator, logger *slog.Logger) *LessonHandler {
	base := defaultLogger(logger)
	return &LessonHandler{service: service, cache: cache, responder: newResponder(base), logger: base}
}

func (h *LessonHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "LessonHandler", operation, attrs...)
}

func (h *LessonHandler) invalidate() {
	if h != nil && h.cache != nil {
		h.cache.InvalidateCache()
	}
}

func (h *LessonHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req lessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode lesson request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "student_id", input.StudentID)
	lesson, err := h.service.CreateLesson(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "lesson creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate()
	logger.With("lesson_id", lesson.ID).InfoContext(r.Context(), "lesson created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, lessonResponse{Lesson: toLessonDTO(lesson)})
}

func (h *LessonHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := LessonIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLessonID)
		return
	}

	var req lessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "lesson_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode lesson update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "lesson_id", id)
	lesson, err := h.service.UpdateLesson(r.Context(), id, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "lesson update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate()
	logger.InfoContext(r.Context(), "lesson updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, lessonResponse{Lesson: toLessonDTO(lesson)})
}

func (h *LessonHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := LessonIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLessonID)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdatePayment", "lesson_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode payment update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdatePayment", "lesson_id", id, "status", req.PaymentStatus)
	lesson, err := h.service.UpdatePayment(r.Context(), id, persistence.PaymentStatus(req.PaymentStatus))
	if err != nil {
		logger.ErrorContext(r.Context(), "payment update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate()
	logger.InfoContext(r.Context(), "payment status updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, lessonResponse{Lesson: toLessonDTO(lesson)})
}

func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := LessonIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLessonID)
		return
	}

	lesson, err := h.service.GetLesson(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "lesson_id", id).ErrorContext(r.Context(), "lesson lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, lessonResponse{Lesson: toLessonDTO(lesson)})
}

// List returns lessons in the closed range given by the from/to query
// parameters.
func (h *LessonHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	from, to, err := parseRange(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "List")
	lessons, err := h.service.ListLessons(r.Context(), from, to)
	if err != nil {
		logger.ErrorContext(r.Context(), "lesson list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(lessons)).InfoContext(r.Context(), "lessons listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listLessonsResponse{Lessons: toLessonDTOs(lessons)})
}

// ListByStudent returns one student's lesson history.
func (h *LessonHandler) ListByStudent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	studentID, ok := StudentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(studentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	lessons, err := h.service.ListLessonsByStudent(r.Context(), studentID)
	if err != nil {
		h.log(r.Context(), "ListByStudent", "student_id", studentID).ErrorContext(r.Context(), "lesson history failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listLessonsResponse{Lessons: toLessonDTOs(lessons)})
}

func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := LessonIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLessonID)
		return
	}

	logger := h.log(r.Context(), "Delete", "lesson_id", id)
	if err := h.service.DeleteLesson(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "lesson delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate()
	logger.InfoContext(r.Context(), "lesson deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type lessonRequest struct {
	StudentID       string  `json:"student_id"`
	StartsAt        string  `json:"starts_at"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	PaymentStatus   string  `json:"payment_status"`
	Note            *string `json:"note"`
}

func (r lessonRequest) toInput() (application.LessonInput, error) {
	var startsAt time.Time
	if raw := strings.TrimSpace(r.StartsAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return application.LessonInput{}, errBadRequestBody
		}
		startsAt = parsed
	}
	return application.LessonInput{
		StudentID:       strings.TrimSpace(r.StudentID),
		StartsAt:        startsAt,
		DurationMinutes: r.DurationMinutes,
		Price:           r.Price,
		PaymentStatus:   persistence.PaymentStatus(strings.TrimSpace(r.PaymentStatus)),
		Note:            r.Note,
	}, nil
}

type paymentRequest struct {
	PaymentStatus string `json:"payment_status"`
}

type lessonResponse struct {
	Lesson lessonDTO `json:"lesson"`
}

type listLessonsResponse struct {
	Lessons []lessonDTO `json:"lessons"`
}

type lessonDTO struct {
	ID              string  `json:"id"`
	StudentID       string  `json:"student_id"`
	StartsAt        string  `json:"starts_at"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	PaymentStatus   string  `json:"payment_status"`
	Note            *string `json:"note,omitempty"`
	RecurrenceID    *string `json:"recurrence_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toLessonDTO(lesson persistence.Lesson) lessonDTO {
	return lessonDTO{
		ID:              lesson.ID,
		StudentID:       lesson.StudentID,
		StartsAt:        formatTimestamp(lesson.StartsAt),
		DurationMinutes: lesson.DurationMinutes,
		Price:           lesson.Price,
		PaymentStatus:   string(lesson.PaymentStatus),
		Note:            lesson.Note,
		RecurrenceID:    lesson.RecurrenceID,
		CreatedAt:       formatTimestamp(lesson.CreatedAt),
		UpdatedAt:       formatTimestamp(lesson.UpdatedAt),
	}
}

func toLessonDTOs(lessons []persistence.Lesson) []lessonDTO {
	if len(lessons) == 0 {
		return nil
	}
	out := make([]lessonDTO, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, toLessonDTO(lesson))
	}
	return out
}
