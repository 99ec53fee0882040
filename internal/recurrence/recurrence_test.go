package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testAnchor = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC) // a Monday

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name string
		rule string
		want bool
	}{
		{
			name: "empty rule is invalid",
			rule: "",
			want: false,
		},
		{
			name: "whitespace-only rule is invalid",
			rule: "   \n\t",
			want: false,
		},
		{
			name: "simple daily rule",
			rule: "FREQ=DAILY",
			want: true,
		},
		{
			name: "weekly with byday",
			rule: "FREQ=WEEKLY;BYDAY=MO,WE,FR",
			want: true,
		},
		{
			name: "monthly with interval",
			rule: "FREQ=MONTHLY;INTERVAL=2",
			want: true,
		},
		{
			name: "yearly rule",
			rule: "FREQ=YEARLY",
			want: true,
		},
		{
			name: "rrule prefix accepted",
			rule: "RRULE:FREQ=DAILY;INTERVAL=3",
			want: true,
		},
		{
			name: "hourly frequency unsupported",
			rule: "FREQ=HOURLY",
			want: false,
		},
		{
			name: "minutely frequency unsupported",
			rule: "FREQ=MINUTELY",
			want: false,
		},
		{
			name: "secondly frequency unsupported",
			rule: "FREQ=SECONDLY",
			want: false,
		},
		{
			name: "missing FREQ component",
			rule: "INTERVAL=2;BYDAY=MO",
			want: false,
		},
		{
			name: "garbage input",
			rule: "not a rule at all",
			want: false,
		},
		{
			name: "unknown FREQ value",
			rule: "FREQ=FORTNIGHTLY",
			want: false,
		},
		{
			name: "rule with valid exdate line",
			rule: "FREQ=DAILY\nEXDATE:20260107T090000Z",
			want: true,
		},
		{
			name: "rule with malformed exdate line",
			rule: "FREQ=DAILY\nEXDATE:not-a-date",
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateRule(tc.rule, testAnchor)
			assert.Equal(t, tc.want, got, "rule: %q", tc.rule)
		})
	}
}

func TestValidateRuleZeroAnchor(t *testing.T) {
	// A zero anchor must not break parsing; the current time is substituted.
	assert.True(t, ValidateRule("FREQ=WEEKLY;BYDAY=TU", time.Time{}))
}

func TestDescribeRule(t *testing.T) {
	tests := []struct {
		name string
		rule string
		want string
	}{
		{
			name: "empty rule",
			rule: "",
			want: DescribeNoRecurrence,
		},
		{
			name: "whitespace rule",
			rule: "  ",
			want: DescribeNoRecurrence,
		},
		{
			name: "invalid rule",
			rule: "FREQ=NOPE",
			want: DescribeInvalidRule,
		},
		{
			name: "garbage rule",
			rule: "???",
			want: DescribeInvalidRule,
		},
		{
			name: "daily",
			rule: "FREQ=DAILY",
			want: "Daily",
		},
		{
			name: "every 3 days",
			rule: "FREQ=DAILY;INTERVAL=3",
			want: "Every 3 days",
		},
		{
			name: "weekly",
			rule: "FREQ=WEEKLY",
			want: "Weekly",
		},
		{
			name: "every 2 weeks",
			rule: "FREQ=WEEKLY;INTERVAL=2",
			want: "Every 2 weeks",
		},
		{
			name: "monthly",
			rule: "FREQ=MONTHLY",
			want: "Monthly",
		},
		{
			name: "every 6 months",
			rule: "FREQ=MONTHLY;INTERVAL=6",
			want: "Every 6 months",
		},
		{
			name: "yearly",
			rule: "FREQ=YEARLY",
			want: "Yearly",
		},
		{
			name: "every 2 years",
			rule: "FREQ=YEARLY;INTERVAL=2",
			want: "Every 2 years",
		},
		{
			name: "interval of one collapses to plain form",
			rule: "FREQ=DAILY;INTERVAL=1",
			want: "Daily",
		},
		{
			name: "weekly with single weekday",
			rule: "FREQ=WEEKLY;BYDAY=MO",
			want: "Weekly on Monday",
		},
		{
			name: "weekday order follows the rule not chronology",
			rule: "FREQ=WEEKLY;BYDAY=FR,MO",
			want: "Weekly on Friday, Monday",
		},
		{
			name: "interval and weekdays combined",
			rule: "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE",
			want: "Every 2 weeks on Monday, Wednesday",
		},
		{
			name: "rrule prefix accepted",
			rule: "RRULE:FREQ=WEEKLY;BYDAY=SA,SU",
			want: "Weekly on Saturday, Sunday",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DescribeRule(tc.rule, testAnchor)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRuleFrequency(t *testing.T) {
	freq, ok := ruleFrequency("FREQ=WEEKLY;BYDAY=MO")
	assert.True(t, ok)
	assert.Equal(t, "WEEKLY", freq)

	freq, ok = ruleFrequency("RRULE:FREQ=daily")
	assert.True(t, ok)
	assert.Equal(t, "DAILY", freq)

	_, ok = ruleFrequency("BYDAY=MO")
	assert.False(t, ok)
}
