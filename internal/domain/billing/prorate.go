package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// ItemWindow is the active window of a contract item.
// DepartureDate (when the asset left the yard) takes precedence over StartDate
// as the billing floor; ReturnDate takes precedence over EndDate as the ceiling.
type ItemWindow struct {
	StartDate     time.Time
	EndDate       *time.Time
	DepartureDate *time.Time
	ReturnDate    *time.Time
}

// Floor returns the first billable date for the item.
func (w ItemWindow) Floor() time.Time {
	if w.DepartureDate != nil {
		return DateOf(*w.DepartureDate)
	}
	return DateOf(w.StartDate)
}

// Ceiling returns the last billable date for the item inside period.
func (w ItemWindow) Ceiling(period Period) time.Time {
	if w.ReturnDate != nil {
		return DateOf(*w.ReturnDate)
	}
	if w.EndDate != nil && DateOf(*w.EndDate).Before(DateOf(period.End)) {
		return DateOf(*w.EndDate)
	}
	return DateOf(period.End)
}

// Proration is the billed slice of one item over one period.
type Proration struct {
	BillingStart time.Time
	BillingEnd   time.Time
	TotalDays    int
	ExcludedDays int
	BilledDays   int
	DailyRate    decimal.Decimal
	Value        decimal.Decimal
}

// Prorate intersects period with the item window and prices the result.
// An item with no overlap yields zero days. Excluded days beyond the window
// floor the billed days at zero.
func Prorate(period Period, window ItemWindow, dailyRate decimal.Decimal, excludedDays int) Proration {
	start := latest(DateOf(period.Start), window.Floor())
	end := earliest(DateOf(period.End), window.Ceiling(period))

	if excludedDays < 0 {
		excludedDays = 0
	}

	total := CeilDays(start, end)
	billed := total - excludedDays
	if billed < 0 {
		billed = 0
	}

	return Proration{
		BillingStart: start,
		BillingEnd:   end,
		TotalDays:    total,
		ExcludedDays: excludedDays,
		BilledDays:   billed,
		DailyRate:    dailyRate,
		Value:        dailyRate.Mul(decimal.NewFromInt(int64(billed))),
	}
}

// CeilDays returns ceil((end - start) / 24h), floored at 0.
func CeilDays(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	return days
}

// ValidateExclusion checks an item selection's excluded days and reason.
func ValidateExclusion(excludedDays int, reason string) error {
	if excludedDays < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Excluded days cannot be negative").WithField("excludedDays")
	}
	if excludedDays > 0 && strings.TrimSpace(reason) == "" {
		return shared.NewDomainError(shared.CodeExclusionReasonRequired,
			"An exclusion reason is required when excluded days are greater than zero").WithField("excludedReason")
	}
	return nil
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// Line is one contract item's proration ready to be placed on an invoice or
// measurement.
type Line struct {
	ContractItemID uuid.UUID
	AssetID        uuid.UUID
	AssetCode      string
	Proration      Proration
	ExcludedReason string
}
