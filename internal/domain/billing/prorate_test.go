package billing

import (
	"testing"
	"time"

	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func march2026(t *testing.T) Period {
	p, err := NewPeriod(date(2026, 3, 1), date(2026, 3, 31))
	require.NoError(t, err)
	return p
}

func TestProrate_FullPeriod(t *testing.T) {
	period := march2026(t)
	window := ItemWindow{StartDate: date(2026, 3, 1)}

	got := Prorate(period, window, decimal.NewFromInt(150), 0)

	assert.Equal(t, date(2026, 3, 1), got.BillingStart)
	assert.Equal(t, date(2026, 3, 31), got.BillingEnd)
	assert.Equal(t, 30, got.TotalDays)
	assert.Equal(t, 30, got.BilledDays)
	assert.True(t, got.Value.Equal(decimal.NewFromInt(4500)), "value = %s", got.Value)
}

func TestProrate_Windows(t *testing.T) {
	period := march2026(t)
	rate := decimal.NewFromInt(100)

	tests := []struct {
		name      string
		window    ItemWindow
		excluded  int
		wantStart time.Time
		wantEnd   time.Time
		wantTotal int
		wantBill  int
	}{
		{
			name:      "item started before the period",
			window:    ItemWindow{StartDate: date(2026, 1, 10)},
			wantStart: date(2026, 3, 1),
			wantEnd:   date(2026, 3, 31),
			wantTotal: 30,
			wantBill:  30,
		},
		{
			name:      "departure date overrides start date",
			window:    ItemWindow{StartDate: date(2026, 2, 20), DepartureDate: ptr(date(2026, 3, 11))},
			wantStart: date(2026, 3, 11),
			wantEnd:   date(2026, 3, 31),
			wantTotal: 20,
			wantBill:  20,
		},
		{
			name:      "end date earlier than period end caps the window",
			window:    ItemWindow{StartDate: date(2026, 3, 1), EndDate: ptr(date(2026, 3, 16))},
			wantStart: date(2026, 3, 1),
			wantEnd:   date(2026, 3, 16),
			wantTotal: 15,
			wantBill:  15,
		},
		{
			name:      "end date after period end is ignored",
			window:    ItemWindow{StartDate: date(2026, 3, 1), EndDate: ptr(date(2026, 5, 1))},
			wantStart: date(2026, 3, 1),
			wantEnd:   date(2026, 3, 31),
			wantTotal: 30,
			wantBill:  30,
		},
		{
			name: "return date wins over end date",
			window: ItemWindow{
				StartDate:  date(2026, 3, 1),
				EndDate:    ptr(date(2026, 3, 10)),
				ReturnDate: ptr(date(2026, 3, 21)),
			},
			wantStart: date(2026, 3, 1),
			wantEnd:   date(2026, 3, 21),
			wantTotal: 20,
			wantBill:  20,
		},
		{
			name:      "return date after period end is capped",
			window:    ItemWindow{StartDate: date(2026, 3, 1), ReturnDate: ptr(date(2026, 4, 9))},
			wantStart: date(2026, 3, 1),
			wantEnd:   date(2026, 3, 31),
			wantTotal: 30,
			wantBill:  30,
		},
		{
			name:      "floor after period end contributes nothing",
			window:    ItemWindow{StartDate: date(2026, 4, 5)},
			wantStart: date(2026, 4, 5),
			wantEnd:   date(2026, 3, 31),
			wantTotal: 0,
			wantBill:  0,
		},
		{
			name:      "ceiling before period start contributes nothing",
			window:    ItemWindow{StartDate: date(2026, 1, 1), ReturnDate: ptr(date(2026, 2, 10))},
			wantStart: date(2026, 3, 1),
			wantEnd:   date(2026, 2, 10),
			wantTotal: 0,
			wantBill:  0,
		},
		{
			name:      "excluded days are subtracted",
			window:    ItemWindow{StartDate: date(2026, 3, 1)},
			excluded:  5,
			wantStart: date(2026, 3, 1),
			wantEnd:   date(2026, 3, 31),
			wantTotal: 30,
			wantBill:  25,
		},
		{
			name:      "excluded days beyond the window floor at zero",
			window:    ItemWindow{StartDate: date(2026, 3, 1), EndDate: ptr(date(2026, 3, 4))},
			excluded:  10,
			wantStart: date(2026, 3, 1),
			wantEnd:   date(2026, 3, 4),
			wantTotal: 3,
			wantBill:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Prorate(period, tt.window, rate, tt.excluded)

			assert.Equal(t, tt.wantStart, got.BillingStart)
			assert.Equal(t, tt.wantEnd, got.BillingEnd)
			assert.Equal(t, tt.wantTotal, got.TotalDays)
			assert.Equal(t, tt.wantBill, got.BilledDays)
			assert.True(t, got.Value.Equal(rate.Mul(decimal.NewFromInt(int64(tt.wantBill)))))
			assert.False(t, got.Value.IsNegative())
		})
	}
}

func TestProrate_NeverNegative(t *testing.T) {
	period := march2026(t)
	rate := decimal.RequireFromString("87.35")

	for excluded := -3; excluded <= 60; excluded++ {
		got := Prorate(period, ItemWindow{StartDate: date(2026, 3, 20)}, rate, excluded)
		assert.GreaterOrEqual(t, got.BilledDays, 0)
		assert.False(t, got.Value.IsNegative())
		assert.LessOrEqual(t, got.BilledDays, got.TotalDays)
	}
}

func TestProrate_CountsCalendarDates(t *testing.T) {
	rate := decimal.NewFromInt(150)
	window := ItemWindow{StartDate: date(2026, 3, 1)}

	t.Run("time of day is ignored", func(t *testing.T) {
		period, err := NewPeriod(date(2026, 3, 1), time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC))
		require.NoError(t, err)

		got := Prorate(period, window, rate, 0)

		assert.Equal(t, date(2026, 3, 31), got.BillingEnd)
		assert.Equal(t, 30, got.TotalDays)
		assert.True(t, got.Value.Equal(decimal.NewFromInt(4500)), "value = %s", got.Value)
	})

	t.Run("offset timestamps keep their calendar date", func(t *testing.T) {
		brt := time.FixedZone("BRT", -3*60*60)
		period, err := NewPeriod(time.Date(2026, 3, 1, 22, 0, 0, 0, brt), time.Date(2026, 3, 31, 0, 0, 0, 0, brt))
		require.NoError(t, err)
		assert.Equal(t, date(2026, 3, 1), period.Start)
		assert.Equal(t, date(2026, 3, 31), period.End)

		got := Prorate(period, window, rate, 0)
		assert.Equal(t, 30, got.TotalDays)
	})

	t.Run("window dates are truncated too", func(t *testing.T) {
		w := ItemWindow{
			StartDate:  time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC),
			ReturnDate: ptr(time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)),
		}

		got := Prorate(march2026(t), w, rate, 0)

		assert.Equal(t, date(2026, 3, 1), got.BillingStart)
		assert.Equal(t, date(2026, 3, 11), got.BillingEnd)
		assert.Equal(t, 10, got.TotalDays)
	})
}

func TestCeilDays(t *testing.T) {
	start := date(2026, 3, 1)

	assert.Equal(t, 0, CeilDays(start, start))
	assert.Equal(t, 0, CeilDays(start, start.Add(-time.Hour)))
	assert.Equal(t, 1, CeilDays(start, start.Add(time.Hour)))
	assert.Equal(t, 1, CeilDays(start, start.Add(24*time.Hour)))
	assert.Equal(t, 2, CeilDays(start, start.Add(25*time.Hour)))
}

func TestValidateExclusion(t *testing.T) {
	assert.NoError(t, ValidateExclusion(0, ""))
	assert.NoError(t, ValidateExclusion(5, "maintenance downtime"))

	err := ValidateExclusion(5, "  ")
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeExclusionReasonRequired, de.Code)
	assert.Equal(t, "excludedReason", de.Field)

	err = ValidateExclusion(-1, "x")
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeInvalidInput, de.Code)
}
