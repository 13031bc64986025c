package billing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DocumentKind identifies a numbered document family.
type DocumentKind string

const (
	DocumentInvoice     DocumentKind = "INV"
	DocumentContract    DocumentKind = "CTR"
	DocumentMeasurement DocumentKind = "MED"
)

// DefaultSequenceWidth is the zero-padded width of the numeric suffix.
const DefaultSequenceWidth = 6

// Prefix returns the per-year prefix for kind, e.g. "INV-2026-".
func (k DocumentKind) Prefix(year int) string {
	return fmt.Sprintf("%s-%d-", k, year)
}

// ParseSequence extracts the trailing numeric suffix of number.
// It returns false when number does not start with prefix or has no digits.
func ParseSequence(number, prefix string) (int, bool) {
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	suffix := strings.TrimPrefix(number, prefix)
	end := len(suffix)
	start := end
	for start > 0 && suffix[start-1] >= '0' && suffix[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.Atoi(suffix[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatSequence renders prefix + seq zero-padded to width.
func FormatSequence(prefix string, seq, width int) string {
	if width <= 0 {
		width = DefaultSequenceWidth
	}
	return fmt.Sprintf("%s%0*d", prefix, width, seq)
}

// NextSequence returns the number following the highest of existing.
// Numbers not matching prefix are ignored; with none, the sequence starts at 1.
func NextSequence(prefix string, existing []string, width int) string {
	highest := 0
	for _, number := range existing {
		if n, ok := ParseSequence(number, prefix); ok && n > highest {
			highest = n
		}
	}
	return FormatSequence(prefix, highest+1, width)
}

// SequenceAllocator derives the next document number for a tenant and year.
// Numbers are advisory; a unique index on the number column is what rejects
// a concurrent duplicate.
type SequenceAllocator interface {
	Next(ctx context.Context, tenantID uuid.UUID, kind DocumentKind, year int) (string, error)
}
