package billing

import (
	"time"

	"github.com/rentflow/backend/internal/domain/shared"
)

// Period is a closed calendar window [Start, End] covered by an invoice or
// measurement.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod validates and builds a billing period.
func NewPeriod(start, end time.Time) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, shared.NewDomainError(shared.CodeInvalidInput, "Billing period start and end are required")
	}
	if DateOf(end).Before(DateOf(start)) {
		return Period{}, shared.NewDomainErrorf(shared.CodeInvalidInput,
			"Billing period end %s is before start %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return Period{Start: DateOf(start), End: DateOf(end)}, nil
}

// DateOf returns the calendar date of t, read in t's own location, as UTC
// midnight. Billing compares and counts dates only.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two closed periods share at least one instant.
// Touching boundaries count as overlap.
func (p Period) Overlaps(other Period) bool {
	return !p.Start.After(other.End) && !p.End.Before(other.Start)
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

func (p Period) String() string {
	return p.Start.Format(time.DateOnly) + ".." + p.End.Format(time.DateOnly)
}

// FindOverlap returns the first existing period colliding with proposed.
func FindOverlap(proposed Period, existing []Period) (Period, bool) {
	for _, e := range existing {
		if e.Overlaps(proposed) {
			return e, true
		}
	}
	return Period{}, false
}
