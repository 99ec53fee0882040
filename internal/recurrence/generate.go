package recurrence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workstreamhq/recur-api/internal/platform/logger"
)

const (
	// MaxOccurrences is a hard ceiling on the number of occurrences a single
	// expansion may produce, independent of the date window. It bounds
	// enumeration even for rules with no end date.
	MaxOccurrences = 1000

	// defaultWindow bounds expansion when neither the caller nor the
	// definition supplies a window end.
	defaultWindow = 365 * 24 * time.Hour
)

// Definition carries the recurrence-relevant fields of a parent task.
// It decouples expansion from the persistence model so the generator stays
// a pure computation over its inputs.
type Definition struct {
	// ID identifies the parent task, used only for log context.
	ID uuid.UUID

	// Rule is the stored recurrence rule text. An empty rule generates nothing.
	Rule string

	// AnchorDue is the parent's due date, the reference point expansion is
	// relative to.
	AnchorDue time.Time

	// AnchorStart, when set together with AnchorDue, defines a fixed duration
	// that every generated occurrence preserves.
	AnchorStart *time.Time

	// RecurrenceEnd is the stored end of the recurrence. It is authoritative:
	// no occurrence past it is ever produced, regardless of the requested
	// window.
	RecurrenceEnd *time.Time
}

// Occurrence is one concrete date produced by expanding a recurrence rule.
type Occurrence struct {
	// Due is the occurrence's due timestamp.
	Due time.Time

	// Start is the derived start timestamp, present only when the definition
	// carries both anchor dates.
	Start *time.Time
}

// Occurrences expands the definition's rule into an ordered, deduplicated
// list of occurrences within [windowStart, windowEnd]. A nil or zero
// windowEnd falls back to the definition's recurrence end, then to one year
// from now.
//
// A definition with no rule yields an empty list and no error. A rule that
// fails to parse is logged with the definition ID and returned as an error:
// it indicates a corrupted stored rule that needs human attention.
func Occurrences(
	ctx context.Context,
	def Definition,
	windowStart time.Time,
	windowEnd *time.Time,
) ([]Occurrence, error) {
	if def.Rule == "" {
		return nil, nil
	}

	log := logger.FromContext(ctx)

	set, err := parseRuleSet(def.Rule, anchorOrNow(def.AnchorDue))
	if err != nil {
		log.Error("failed to expand recurrence rule",
			slog.String("task_id", def.ID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("expand recurrence rule for task %s: %w", def.ID, err)
	}

	end := resolveWindowEnd(def, windowEnd)

	var duration time.Duration
	hasDuration := false
	if def.AnchorStart != nil && !def.AnchorDue.IsZero() {
		duration = def.AnchorDue.Sub(*def.AnchorStart)
		hasDuration = true
	}

	// Incremental expansion stops at the window end or the occurrence
	// ceiling, whichever comes first, so a far-future window end never
	// enumerates more than MaxOccurrences timestamps. The iterator yields
	// times in chronological order, which the result preserves.
	next := set.Iterator()
	seen := make(map[int64]struct{})
	occurrences := []Occurrence{}
	for {
		t, ok := next()
		if !ok || t.After(end) {
			break
		}
		if t.Before(windowStart) {
			continue
		}

		// The stored recurrence end is re-applied even though the window end
		// already accounts for it: the caller may have passed a later window
		// end, and the stored end must never be exceeded. Times arrive in
		// order, so the first one past the end terminates the expansion.
		if def.RecurrenceEnd != nil && t.After(*def.RecurrenceEnd) {
			break
		}

		key := t.UTC().Unix()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		occ := Occurrence{Due: t}
		if hasDuration {
			start := t.Add(-duration)
			occ.Start = &start
		}
		occurrences = append(occurrences, occ)

		if len(occurrences) >= MaxOccurrences {
			log.Warn("recurrence expansion hit occurrence ceiling",
				slog.String("task_id", def.ID.String()),
				slog.Int("max_occurrences", MaxOccurrences))
			break
		}
	}

	return occurrences, nil
}

// resolveWindowEnd applies the window-end defaulting chain: explicit caller
// value, then the definition's stored recurrence end, then one year from now.
func resolveWindowEnd(def Definition, windowEnd *time.Time) time.Time {
	if windowEnd != nil && !windowEnd.IsZero() {
		return *windowEnd
	}
	if def.RecurrenceEnd != nil && !def.RecurrenceEnd.IsZero() {
		return *def.RecurrenceEnd
	}
	return time.Now().UTC().Add(defaultWindow)
}
