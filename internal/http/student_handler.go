package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/tutor-scheduler/internal/application"
	"github.com/example/tutor-scheduler/internal/persistence"
)

type studentService interface {
	CreateStudent(ctx context.Context, input application.StudentInput) (persistence.Student, error)
	UpdateStudent(ctx context.Context, id string, input application.StudentInput) (persistence.Student, error)
	GetStudent(ctx context.Context, id string) (persistence.Student, error)
	ListStudents(ctx context.Context) ([]persistence.Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

type StudentHandler struct {
	service   studentService
	responder responder
	logger    *slog.Logger
}

func NewStudentHandler(service studentService, logger *slog.Logger) *StudentHandler {
	base := defaultLogger(logger)
	return &StudentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *StudentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "StudentHandler", operation, attrs...)
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode student request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")
	student, err := h.service.CreateStudent(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "student creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("student_id", student.ID).InfoContext(r.Context(), "student created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, studentResponse{Student: toStudentDTO(student)})
}

func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := StudentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "student_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode student update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "student_id", id)
	student, err := h.service.UpdateStudent(r.Context(), id, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "student update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentResponse{Student: toStudentDTO(student)})
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := StudentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	student, err := h.service.GetStudent(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "student_id", id).ErrorContext(r.Context(), "student lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentResponse{Student: toStudentDTO(student)})
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	students, err := h.service.ListStudents(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "student list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(students)).InfoContext(r.Context(), "students listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listStudentsResponse{Students: toStudentDTOs(students)})
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := StudentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	logger := h.log(r.Context(), "Delete", "student_id", id)
	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "student delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type studentRequest struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	GuardianName    *string `json:"guardian_name"`
	Phone           string  `json:"phone"`
	Email           *string `json:"email"`
	DefaultDuration int     `json:"default_duration"`
	DefaultPrice    float64 `json:"default_price"`
}

func (r studentRequest) toInput() application.StudentInput {
	var guardian *string
	if r.GuardianName != nil {
		trimmed := strings.TrimSpace(*r.GuardianName)
		guardian = &trimmed
	}
	var email *string
	if r.Email != nil {
		trimmed := strings.TrimSpace(*r.Email)
		email = &trimmed
	}
	return application.StudentInput{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		GuardianName:    guardian,
		Phone:           r.Phone,
		Email:           email,
		DefaultDuration: r.DefaultDuration,
		DefaultPrice:    r.DefaultPrice,
	}
}

type studentResponse struct {
	Student studentDTO `json:"student"`
}

type listStudentsResponse struct {
	Students []studentDTO `json:"students"`
}

type studentDTO struct {
	ID              string  `json:"id"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	GuardianName    *string `json:"guardian_name,omitempty"`
	Phone           string  `json:"phone"`
	Email           *string `json:"email,omitempty"`
	DefaultDuration int     `json:"default_duration"`
	DefaultPrice    float64 `json:"default_price"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toStudentDTO(student persistence.Student) studentDTO {
	return studentDTO{
		ID:              student.ID,
		FirstName:       student.FirstName,
		LastName:        student.LastName,
		GuardianName:    student.GuardianName,
		Phone:           student.Phone,
		Email:           student.Email,
		DefaultDuration: student.DefaultDuration,
		DefaultPrice:    student.DefaultPrice,
		CreatedAt:       formatTimestamp(student.CreatedAt),
		UpdatedAt:       formatTimestamp(student.UpdatedAt),
	}
}

func toStudentDTOs(students []persistence.Student) []studentDTO {
	if len(students) == 0 {
		return nil
	}
	out := make([]studentDTO, 0, len(students))
	for _, student := range students {
		out = append(out, toStudentDTO(student))
	}
	return out
}
