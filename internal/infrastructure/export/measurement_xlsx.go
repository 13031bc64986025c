package export

import (
	"bytes"
	"fmt"

	"github.com/rentflow/backend/internal/domain/measurement"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "summary"
	itemsSheet   = "items"
)

var measurementItemHeaders = []string{
	"Asset", "Period start", "Period end", "Total days",
	"Excluded days", "Excluded reason", "Billed days", "Daily rate", "Value",
}

// MeasurementXLSX renders a measurement as a two-sheet workbook
func (r *Renderer) MeasurementXLSX(m *measurement.Measurement) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("measurement is nil")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}

	summary := [][2]any{
		{"Measurement", m.MeasurementNumber},
		{"Customer", m.CustomerName},
		{"Period start", formatDate(m.PeriodStart)},
		{"Period end", formatDate(m.PeriodEnd)},
		{"Status", r.label(string(m.Status))},
		{"Total value", m.TotalValue.Round(2).InexactFloat64()},
		{"Currency", r.currency},
		{"Approved at", formatDatePtr(m.ApprovedAt)},
		{"Invoiced at", formatDatePtr(m.InvoicedAt)},
	}
	_ = f.SetCellValue(summarySheet, "A1", r.companyName)
	for i, kv := range summary {
		row := i + 3
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), kv[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), kv[1])
	}

	for i, h := range measurementItemHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(itemsSheet, cell, h)
	}
	for i, item := range m.Items {
		row := i + 2
		values := []any{
			item.AssetCode,
			formatDate(item.PeriodStart),
			formatDate(item.PeriodEnd),
			item.TotalDays,
			item.ExcludedDays,
			item.ExcludedReason,
			item.BilledDays,
			item.DailyRate.InexactFloat64(),
			item.TotalValue.Round(2).InexactFloat64(),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(itemsSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
