package contract

import (
	"testing"

	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/stretchr/testify/require"
)

func mustPeriod(t *testing.T) billing.Period {
	p, err := billing.NewPeriod(day(2026, 3, 1), day(2026, 3, 31))
	require.NoError(t, err)
	return p
}
