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

type ruleService interface {
	CreateRule(ctx context.Context, input application.RuleInput) (persistence.RecurrenceRule, error)
	UpdateRule(ctx context.Context, id string, input application.RuleInput) (persistence.RecurrenceRule, error)
	GetRule(ctx context.Context, id string) (persistence.RecurrenceRule, error)
	ListRules(ctx context.Context) ([]persistence.RecurrenceRule, error)
	ListRulesByStudent(ctx context.Context, studentID string) ([]persistence.RecurrenceRule, error)
	DeleteRule(ctx context.Context, id string) error
}

type RuleHandler struct {
	service   ruleService
	cache     cacheInvalidator
	responder responder
	logger    *slog.Logger
}

func NewRuleHandler(service ruleService, cache cacheInvalidator, logger *slog.Logger) *RuleHandler {
	base := defaultLogger(logger)
	return &RuleHandler{service: service, cache: cache, responder: newResponder(base), logger: base}
}

func (h *RuleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RuleHandler", operation, attrs...)
}

func (h *RuleHandler) invalidate() {
	if h != nil && h.cache != nil {
		h.cache.InvalidateCache()
	}
}

func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode rule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "student_id", input.StudentID)
	rule, err := h.service.CreateRule(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "rule creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate()
	logger.With("rule_id", rule.ID).InfoContext(r.Context(), "recurrence rule created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, ruleResponse{Rule: toRuleDTO(rule)})
}

func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := RuleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "rule_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode rule update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "rule_id", id)
	rule, err := h.service.UpdateRule(r.Context(), id, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "rule update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate()
	logger.InfoContext(r.Context(), "recurrence rule updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ruleResponse{Rule: toRuleDTO(rule)})
}

func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := RuleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	rule, err := h.service.GetRule(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "rule_id", id).ErrorContext(r.Context(), "rule lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, ruleResponse{Rule: toRuleDTO(rule)})
}

func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	rules, err := h.service.ListRules(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "rule list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(rules)).InfoContext(r.Context(), "recurrence rules listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRulesResponse{Rules: toRuleDTOs(rules)})
}

// ListByStudent returns the weekly slots configured for one student.
func (h *RuleHandler) ListByStudent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	studentID, ok := StudentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(studentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	rules, err := h.service.ListRulesByStudent(r.Context(), studentID)
	if err != nil {
		h.log(r.Context(), "ListByStudent", "student_id", studentID).ErrorContext(r.Context(), "rule list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRulesResponse{Rules: toRuleDTOs(rules)})
}

func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := RuleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	logger := h.log(r.Context(), "Delete", "rule_id", id)
	if err := h.service.DeleteRule(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "rule delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate()
	logger.InfoContext(r.Context(), "recurrence rule deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type ruleRequest struct {
	StudentID       string  `json:"student_id"`
	Weekday         int     `json:"weekday"`
	StartTime       string  `json:"start_time"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	StartsOn        string  `json:"starts_on"`
	EndsOn          *string `json:"ends_on"`
}

func (r ruleRequest) toInput() (application.RuleInput, error) {
	var startsOn time.Time
	if raw := strings.TrimSpace(r.StartsOn); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return application.RuleInput{}, errBadRequestBody
		}
		startsOn = parsed
	}

	var endsOn *time.Time
	if r.EndsOn != nil && strings.TrimSpace(*r.EndsOn) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*r.EndsOn))
		if err != nil {
			return application.RuleInput{}, errBadRequestBody
		}
		endsOn = &parsed
	}

	return application.RuleInput{
		StudentID:       strings.TrimSpace(r.StudentID),
		Weekday:         r.Weekday,
		StartTime:       strings.TrimSpace(r.StartTime),
		DurationMinutes: r.DurationMinutes,
		Price:           r.Price,
		StartsOn:        startsOn,
		EndsOn:          endsOn,
	}, nil
}

type ruleResponse struct {
	Rule ruleDTO `json:"rule"`
}

type listRulesResponse struct {
	Rules []ruleDTO `json:"rules"`
}

type ruleDTO struct {
	ID              string  `json:"id"`
	StudentID       string  `json:"student_id"`
	Weekday         int     `json:"weekday"`
	StartTime       string  `json:"start_time"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	StartsOn        string  `json:"starts_on"`
	EndsOn          *string `json:"ends_on,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toRuleDTO(rule persistence.RecurrenceRule) ruleDTO {
	var endsOn *string
	if rule.EndsOn != nil {
		formatted := formatTimestamp(*rule.EndsOn)
		endsOn = &formatted
	}
	return ruleDTO{
		ID:              rule.ID,
		StudentID:       rule.StudentID,
		Weekday:         int(rule.Weekday),
		StartTime:       rule.StartTime,
		DurationMinutes: rule.DurationMinutes,
		Price:           rule.Price,
		StartsOn:        formatTimestamp(rule.StartsOn),
		EndsOn:          endsOn,
		CreatedAt:       formatTimestamp(rule.CreatedAt),
		UpdatedAt:       formatTimestamp(rule.UpdatedAt),
	}
}

func toRuleDTOs(rules []persistence.RecurrenceRule) []ruleDTO {
	if len(rules) == 0 {
		return nil
	}
	out := make([]ruleDTO, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleDTO(rule))
	}
	return out
}
