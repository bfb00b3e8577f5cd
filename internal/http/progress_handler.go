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

type progressService interface {
	CreateEntry(ctx context.Context, input application.ProgressInput) (persistence.ProgressEntry, error)
	UpdateEntry(ctx context.Context, id string, input application.ProgressInput) (persistence.ProgressEntry, error)
	GetEntry(ctx context.Context, id string) (persistence.ProgressEntry, error)
	ListEntriesByStudent(ctx context.Context, studentID string) ([]persistence.ProgressEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

type ProgressHandler struct {
	service   progressService
	responder responder
	logger    *slog.Logger
}

func NewProgressHandler(service progressService, logger *slog.Logger) *ProgressHandler {
	base := defaultLogger(logger)
	return &ProgressHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProgressHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProgressHandler", operation, attrs...)
}

// Create records a progress note for the student in the request path.
func (h *ProgressHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	studentID, ok := StudentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(studentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "student_id", studentID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode progress request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput(studentID)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "student_id", studentID)
	entry, err := h.service.CreateEntry(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "progress creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("entry_id", entry.ID).InfoContext(r.Context(), "progress entry created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, progressResponse{Entry: toProgressDTO(entry)})
}

func (h *ProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ProgressIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProgressID)
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "entry_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode progress update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput("")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "entry_id", id)
	entry, err := h.service.UpdateEntry(r.Context(), id, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "progress update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "progress entry updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, progressResponse{Entry: toProgressDTO(entry)})
}

// ListByStudent returns a student's progress history, newest first.
func (h *ProgressHandler) ListByStudent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	studentID, ok := StudentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(studentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	entries, err := h.service.ListEntriesByStudent(r.Context(), studentID)
	if err != nil {
		h.log(r.Context(), "ListByStudent", "student_id", studentID).ErrorContext(r.Context(), "progress list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listProgressResponse{Entries: toProgressDTOs(entries)})
}

func (h *ProgressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ProgressIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProgressID)
		return
	}

	logger := h.log(r.Context(), "Delete", "entry_id", id)
	if err := h.service.DeleteEntry(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "progress delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "progress entry deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type progressRequest struct {
	RecordedOn string `json:"recorded_on"`
	Notes      string `json:"notes"`
}

func (r progressRequest) toInput(studentID string) (application.ProgressInput, error) {
	var recordedOn time.Time
	if raw := strings.TrimSpace(r.RecordedOn); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return application.ProgressInput{}, errBadRequestBody
		}
		recordedOn = parsed
	}
	return application.ProgressInput{
		StudentID:  studentID,
		RecordedOn: recordedOn,
		Notes:      r.Notes,
	}, nil
}

type progressResponse struct {
	Entry progressDTO `json:"entry"`
}

type listProgressResponse struct {
	Entries []progressDTO `json:"entries"`
}

type progressDTO struct {
	ID         string `json:"id"`
	StudentID  string `json:"student_id"`
	RecordedOn string `json:"recorded_on"`
	Notes      string `json:"notes"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toProgressDTO(entry persistence.ProgressEntry) progressDTO {
	return progressDTO{
		ID:         entry.ID,
		StudentID:  entry.StudentID,
		RecordedOn: formatTimestamp(entry.RecordedOn),
		Notes:      entry.Notes,
		CreatedAt:  formatTimestamp(entry.CreatedAt),
		UpdatedAt:  formatTimestamp(entry.UpdatedAt),
	}
}

func toProgressDTOs(entries []persistence.ProgressEntry) []progressDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]progressDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toProgressDTO(entry))
	}
	return out
}
