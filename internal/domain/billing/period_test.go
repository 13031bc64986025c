package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod(t *testing.T) {
	_, err := NewPeriod(date(2026, 3, 31), date(2026, 3, 1))
	assert.Error(t, err)

	p, err := NewPeriod(date(2026, 3, 1), date(2026, 3, 1))
	require.NoError(t, err)
	assert.True(t, p.Contains(date(2026, 3, 1)))

	// same calendar day at different times is a valid one-day period
	p, err = NewPeriod(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, date(2026, 3, 1), p.End)
}

func TestPeriod_Overlaps(t *testing.T) {
	march := Period{Start: date(2026, 3, 1), End: date(2026, 3, 31)}

	tests := []struct {
		name  string
		other Period
		want  bool
	}{
		{"mid-march into april", Period{date(2026, 3, 15), date(2026, 4, 15)}, true},
		{"same period", march, true},
		{"contained", Period{date(2026, 3, 10), date(2026, 3, 12)}, true},
		{"touching end boundary", Period{date(2026, 3, 31), date(2026, 4, 30)}, true},
		{"next month", Period{date(2026, 4, 1), date(2026, 4, 30)}, false},
		{"previous month", Period{date(2026, 2, 1), date(2026, 2, 28)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, march.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(march))
		})
	}
}

func TestFindOverlap(t *testing.T) {
	existing := []Period{
		{date(2026, 1, 1), date(2026, 1, 31)},
		{date(2026, 3, 1), date(2026, 3, 31)},
	}

	hit, ok := FindOverlap(Period{date(2026, 3, 15), date(2026, 4, 15)}, existing)
	assert.True(t, ok)
	assert.Equal(t, existing[1], hit)

	_, ok = FindOverlap(Period{date(2026, 2, 1), date(2026, 2, 28)}, existing)
	assert.False(t, ok)
}
