package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/workstreamhq/recur-api/internal/api/shared"
	"github.com/workstreamhq/recur-api/internal/platform/logger"
	"github.com/workstreamhq/recur-api/internal/recurrence"
)

// RecurrenceHandler exposes the rule validator and describer over HTTP.
// Both endpoints are pure: they inspect the rule string without touching
// any stored task.
type RecurrenceHandler struct {
	logger *slog.Logger
}

// NewRecurrenceHandler creates a new RecurrenceHandler
func NewRecurrenceHandler(logger *slog.Logger) *RecurrenceHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RecurrenceHandler")
	}

	return &RecurrenceHandler{
		logger: logger.With(slog.String("component", "recurrence_handler")),
	}
}

// ValidateRule handles GET /recurrence/validate requests
// It reports whether the "rule" query parameter is a well-formed recurrence
// rule with a supported frequency. The optional RFC 3339 "anchor" parameter
// sets the rule's reference date.
func (h *RecurrenceHandler) ValidateRule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	rule := r.URL.Query().Get("rule")
	if rule == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "rule parameter is required")
		return
	}

	anchor, err := parseTimeParam(r, "anchor")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid anchor parameter, expected RFC 3339")
		return
	}

	valid := recurrence.ValidateRule(rule, anchor)

	log.Debug("validated recurrence rule", slog.Bool("valid", valid))
	shared.RespondWithJSON(w, r, http.StatusOK, ValidateRuleResponse{
		Rule:  rule,
		Valid: valid,
	})
}

// DescribeRule handles GET /recurrence/describe requests
// It renders the "rule" query parameter as a short human-readable summary.
// The describer never fails: malformed rules yield a fixed fallback string.
func (h *RecurrenceHandler) DescribeRule(w http.ResponseWriter, r *http.Request) {
	rule := r.URL.Query().Get("rule")

	anchor, err := parseTimeParam(r, "anchor")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid anchor parameter, expected RFC 3339")
		return
	}
	if anchor.IsZero() {
		anchor = time.Now().UTC()
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DescribeRuleResponse{
		Rule:        rule,
		Description: recurrence.DescribeRule(rule, anchor),
	})
}
