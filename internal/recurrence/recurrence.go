// Package recurrence implements the recurring-task pipeline: validating
// iCalendar-style recurrence rules, expanding them into concrete occurrence
// dates within a bounded window, and rendering them as short human-readable
// summaries. The grammar itself is handled by github.com/teambition/rrule-go;
// this package wraps it with the application's windowing, bounding, and
// fallback semantics.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Fixed describer outputs for degenerate rules.
const (
	// DescribeNoRecurrence is returned by DescribeRule for an empty rule.
	DescribeNoRecurrence = "No recurrence"

	// DescribeInvalidRule is returned by DescribeRule when the rule cannot
	// be parsed. The describer never propagates parse errors.
	DescribeInvalidRule = "Invalid recurrence rule"

	// DescribeGeneric is used for parseable rules whose frequency falls
	// outside the supported set.
	DescribeGeneric = "Recurring"
)

// supportedFrequencies is the fixed set of frequencies the platform accepts.
// Rules with any other FREQ token are rejected by the validator.
var supportedFrequencies = map[string]rrule.Frequency{
	"DAILY":   rrule.DAILY,
	"WEEKLY":  rrule.WEEKLY,
	"MONTHLY": rrule.MONTHLY,
	"YEARLY":  rrule.YEARLY,
}

// weekdayNames maps rrule weekday indices (Monday = 0) to full English names.
var weekdayNames = [7]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// ValidateRule reports whether the given rule string is a well-formed
// recurrence rule with a supported frequency. The anchor is used as the
// rule's DTSTART during parsing; a zero anchor defaults to the current time.
//
// This is a pure predicate intended for form-validation contexts: any parse
// failure, including malformed exception-date clauses, yields false rather
// than an error.
func ValidateRule(rule string, anchor time.Time) bool {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return false
	}

	freq, ok := ruleFrequency(rule)
	if !ok {
		return false
	}
	if _, ok := supportedFrequencies[freq]; !ok {
		return false
	}

	_, err := parseRuleSet(rule, anchorOrNow(anchor))
	return err == nil
}

// DescribeRule renders a rule as a short display string such as
// "Weekly on Monday, Wednesday" or "Every 3 days". It never fails: an empty
// rule yields DescribeNoRecurrence and an unparseable one DescribeInvalidRule.
func DescribeRule(rule string, anchor time.Time) string {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return DescribeNoRecurrence
	}

	line, ok := extractRuleLine(rule)
	if !ok {
		return DescribeInvalidRule
	}

	opt, err := rrule.StrToROption(line)
	if err != nil {
		return DescribeInvalidRule
	}

	interval := opt.Interval
	if interval <= 0 {
		interval = 1
	}

	var phrase string
	switch opt.Freq {
	case rrule.DAILY:
		phrase = intervalPhrase(interval, "Daily", "days")
	case rrule.WEEKLY:
		phrase = intervalPhrase(interval, "Weekly", "weeks")
	case rrule.MONTHLY:
		phrase = intervalPhrase(interval, "Monthly", "months")
	case rrule.YEARLY:
		phrase = intervalPhrase(interval, "Yearly", "years")
	default:
		phrase = DescribeGeneric
	}

	if len(opt.Byweekday) > 0 {
		// Weekday order follows the rule's own BYDAY list, not chronology.
		names := make([]string, 0, len(opt.Byweekday))
		for _, wd := range opt.Byweekday {
			day := wd.Day()
			if day >= 0 && day < len(weekdayNames) {
				names = append(names, weekdayNames[day])
			}
		}
		if len(names) > 0 {
			phrase += " on " + strings.Join(names, ", ")
		}
	}

	return phrase
}

// intervalPhrase picks between the bare frequency word ("Daily") and the
// spelled-out interval form ("Every 3 days").
func intervalPhrase(interval int, single, plural string) string {
	if interval == 1 {
		return single
	}
	return fmt.Sprintf("Every %d %s", interval, plural)
}

// ruleFrequency extracts the FREQ token from the rule's RRULE line.
// Returns false when no FREQ component is present.
func ruleFrequency(rule string) (string, bool) {
	line, ok := extractRuleLine(rule)
	if !ok {
		return "", false
	}
	for _, part := range strings.Split(line, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "FREQ") {
			return strings.ToUpper(strings.TrimSpace(kv[1])), true
		}
	}
	return "", false
}

// extractRuleLine finds the RRULE content in a possibly multi-line rule
// string, stripping an optional "RRULE:" prefix. Lines carrying exception
// dates or an explicit DTSTART are skipped.
func extractRuleLine(rule string) (string, bool) {
	for _, line := range splitRuleLines(rule) {
		upper := strings.ToUpper(line)
		if strings.HasPrefix(upper, "EXDATE") || strings.HasPrefix(upper, "RDATE") ||
			strings.HasPrefix(upper, "DTSTART") {
			continue
		}
		return strings.TrimPrefix(strings.TrimPrefix(line, "RRULE:"), "rrule:"), true
	}
	return "", false
}

// splitRuleLines normalizes line endings and drops blank lines.
func splitRuleLines(rule string) []string {
	raw := strings.Split(strings.ReplaceAll(rule, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// parseRuleSet parses a stored rule string, including any exception-date
// clauses, into an rrule.Set anchored at the given time. An explicit DTSTART
// line inside the rule wins over the caller's anchor.
func parseRuleSet(rule string, anchor time.Time) (*rrule.Set, error) {
	set := &rrule.Set{}
	var (
		haveRule        bool
		dtstartOverride time.Time
	)

	for _, line := range splitRuleLines(rule) {
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "EXDATE"):
			idx := strings.Index(line, ":")
			if idx < 0 {
				return nil, fmt.Errorf("malformed EXDATE clause: %q", line)
			}
			dates, err := rrule.StrToDates(line[idx+1:])
			if err != nil {
				return nil, fmt.Errorf("parse EXDATE clause: %w", err)
			}
			for _, d := range dates {
				set.ExDate(d)
			}

		case strings.HasPrefix(upper, "DTSTART"):
			rest := strings.TrimLeft(line[len("DTSTART"):], ";:")
			dt, err := rrule.StrToDtStart(rest, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("parse DTSTART clause: %w", err)
			}
			dtstartOverride = dt

		default:
			value := strings.TrimPrefix(strings.TrimPrefix(line, "RRULE:"), "rrule:")
			opt, err := rrule.StrToROption(value)
			if err != nil {
				return nil, fmt.Errorf("parse recurrence rule: %w", err)
			}
			if opt.Dtstart.IsZero() {
				opt.Dtstart = anchor.UTC()
			}
			r, err := rrule.NewRRule(*opt)
			if err != nil {
				return nil, fmt.Errorf("build recurrence rule: %w", err)
			}
			set.RRule(r)
			haveRule = true
		}
	}

	if !haveRule {
		return nil, fmt.Errorf("rule contains no RRULE component")
	}

	if !dtstartOverride.IsZero() {
		set.DTStart(dtstartOverride)
	}

	return set, nil
}

func anchorOrNow(anchor time.Time) time.Time {
	if anchor.IsZero() {
		return time.Now().UTC()
	}
	return anchor
}
