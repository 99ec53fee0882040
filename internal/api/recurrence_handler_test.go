package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRuleHandler(t *testing.T) {
	handler := NewRecurrenceHandler(slog.Default())

	tests := []struct {
		name       string
		rule       string
		wantStatus int
		wantValid  bool
	}{
		{
			name:       "valid weekly rule",
			rule:       "FREQ=WEEKLY;BYDAY=MO,FR",
			wantStatus: http.StatusOK,
			wantValid:  true,
		},
		{
			name:       "unsupported frequency",
			rule:       "FREQ=HOURLY",
			wantStatus: http.StatusOK,
			wantValid:  false,
		},
		{
			name:       "garbage rule",
			rule:       "definitely not a rule",
			wantStatus: http.StatusOK,
			wantValid:  false,
		},
		{
			name:       "missing rule parameter",
			rule:       "",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/api/recurrence/validate"
			if tt.rule != "" {
				target += "?rule=" + url.QueryEscape(tt.rule)
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			recorder := httptest.NewRecorder()

			handler.ValidateRule(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantStatus == http.StatusOK {
				var response ValidateRuleResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
				assert.Equal(t, tt.wantValid, response.Valid)
				assert.Equal(t, tt.rule, response.Rule)
			}
		})
	}

	t.Run("invalid anchor rejected", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodGet,
			"/api/recurrence/validate?rule=FREQ%3DDAILY&anchor=yesterday",
			nil,
		)
		recorder := httptest.NewRecorder()

		handler.ValidateRule(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestDescribeRuleHandler(t *testing.T) {
	handler := NewRecurrenceHandler(slog.Default())

	tests := []struct {
		name            string
		rule            string
		wantDescription string
	}{
		{
			name:            "weekly with weekdays",
			rule:            "FREQ=WEEKLY;BYDAY=MO,WE",
			wantDescription: "Weekly on Monday, Wednesday",
		},
		{
			name:            "interval phrase",
			rule:            "FREQ=DAILY;INTERVAL=3",
			wantDescription: "Every 3 days",
		},
		{
			name:            "empty rule",
			rule:            "",
			wantDescription: "No recurrence",
		},
		{
			name:            "unparseable rule",
			rule:            "FREQ=SOMETIMES",
			wantDescription: "Invalid recurrence rule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/api/recurrence/describe?rule=" + url.QueryEscape(tt.rule)
			req := httptest.NewRequest(http.MethodGet, target, nil)
			recorder := httptest.NewRecorder()

			handler.DescribeRule(recorder, req)

			assert.Equal(t, http.StatusOK, recorder.Code)

			var response DescribeRuleResponse
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
			assert.Equal(t, tt.wantDescription, response.Description)
		})
	}
}
