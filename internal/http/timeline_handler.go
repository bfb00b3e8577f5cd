package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/tutor-scheduler/internal/application"
)

type timelineService interface {
	Timeline(ctx context.Context, from, to time.Time) ([]application.TimelineEntry, error)
	Materialize(ctx context.Context, from, to time.Time) (application.MaterializeResult, error)
	PaymentSummaryForRange(ctx context.Context, from, to time.Time) (application.PaymentSummary, error)
}

type TimelineHandler struct {
	service   timelineService
	responder responder
	logger    *slog.Logger
}

func NewTimelineHandler(service timelineService, logger *slog.Logger) *TimelineHandler {
	base := defaultLogger(logger)
	return &TimelineHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TimelineHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TimelineHandler", operation, attrs...)
}

// Timeline returns the merged calendar of persisted lessons and generated
// occurrences for the closed range given by the from/to query parameters.
func (h *TimelineHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	from, to, err := parseRange(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Timeline")
	entries, err := h.service.Timeline(r.Context(), from, to)
	if err != nil {
		logger.ErrorContext(r.Context(), "timeline assembly failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries)).InfoContext(r.Context(), "timeline assembled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, timelineResponse{Entries: toTimelineDTOs(entries)})
}

// Materialize persists the generated occurrences in the requested range and
// reports what happened. Partial failure still yields 200 with the error
// details in the body.
func (h *TimelineHandler) Materialize(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	from, to, err := parseRange(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Materialize")
	result, err := h.service.Materialize(r.Context(), from, to)
	if err != nil {
		logger.ErrorContext(r.Context(), "materialization failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("created", result.Created, "skipped", result.Skipped, "failed", len(result.Errors)).
		InfoContext(r.Context(), "materialization finished")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, materializeResponse{
		Created: result.Created,
		Skipped: result.Skipped,
		Errors:  result.Errors,
	})
}

// PaymentSummary aggregates payment state over the persisted lessons in the
// requested range.
func (h *TimelineHandler) PaymentSummary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	from, to, err := parseRange(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "PaymentSummary")
	summary, err := h.service.PaymentSummaryForRange(r.Context(), from, to)
	if err != nil {
		logger.ErrorContext(r.Context(), "payment summary failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, paymentSummaryDTO{
		Total:          summary.Total,
		Paid:           summary.Paid,
		Pending:        summary.Pending,
		Cancelled:      summary.Cancelled,
		TotalAmount:    summary.TotalAmount,
		PaidAmount:     summary.PaidAmount,
		PendingAmount:  summary.PendingAmount,
		PaidPercent:    summary.PaidPercent,
		PendingPercent: summary.PendingPercent,
	})
}

type timelineResponse struct {
	Entries []timelineEntryDTO `json:"entries"`
}

type timelineEntryDTO struct {
	ID              string  `json:"id"`
	StudentID       string  `json:"student_id"`
	StartsAt        string  `json:"starts_at"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	PaymentStatus   string  `json:"payment_status"`
	Note            *string `json:"note,omitempty"`
	RecurrenceID    *string `json:"recurrence_id,omitempty"`
	IsGenerated     bool    `json:"is_generated"`
}

func toTimelineDTOs(entries []application.TimelineEntry) []timelineEntryDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]timelineEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, timelineEntryDTO{
			ID:              entry.ID,
			StudentID:       entry.StudentID,
			StartsAt:        formatTimestamp(entry.StartsAt),
			DurationMinutes: entry.DurationMinutes,
			Price:           entry.Price,
			PaymentStatus:   string(entry.PaymentStatus),
			Note:            entry.Note,
			RecurrenceID:    entry.RecurrenceID,
			IsGenerated:     entry.Generated,
		})
	}
	return out
}

type materializeResponse struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

type paymentSummaryDTO struct {
	Total          int     `json:"total"`
	Paid           int     `json:"paid"`
	Pending        int     `json:"pending"`
	Cancelled      int     `json:"cancelled"`
	TotalAmount    float64 `json:"total_amount"`
	PaidAmount     float64 `json:"paid_amount"`
	PendingAmount  float64 `json:"pending_amount"`
	PaidPercent    float64 `json:"paid_percent"`
	PendingPercent float64 `json:"pending_percent"`
}
