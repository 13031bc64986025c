package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/rentflow/backend/internal/domain/invoice"
)

var invoiceColumns = []struct {
	title string
	width float64
	align string
}{
	{"Asset", 30, "L"},
	{"Period", 50, "C"},
	{"Days", 15, "R"},
	{"Excluded", 18, "R"},
	{"Billed", 15, "R"},
	{"Daily rate", 27, "R"},
	{"Value", 35, "R"},
}

// InvoicePDF renders an invoice with its items, totals and payments
func (r *Renderer) InvoicePDF(inv *invoice.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("invoice is nil")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, true)
	pdf.SetAuthor(r.companyName, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(r.companyName))
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Invoice "+inv.InvoiceNumber)
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	header := [][2]string{
		{"Customer", inv.CustomerName},
		{"Status", r.label(string(inv.Status))},
		{"Issue date", formatDate(inv.IssueDate)},
		{"Due date", formatDate(inv.DueDate)},
	}
	if inv.BillingPeriodStart != nil {
		header = append(header, [2]string{
			"Billing period",
			formatDatePtr(inv.BillingPeriodStart) + " to " + formatDatePtr(inv.BillingPeriodEnd),
		})
	}
	if inv.StatusReason != "" {
		header = append(header, [2]string{"Status reason", inv.StatusReason})
	}
	for _, kv := range header {
		pdf.CellFormat(40, 6, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(inv.Items) > 0 {
		pdf.SetFont("Arial", "B", 9)
		for _, col := range invoiceColumns {
			pdf.CellFormat(col.width, 6, col.title, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, item := range inv.Items {
			cells := []string{
				item.AssetCode,
				formatDate(item.PeriodStart) + " - " + formatDate(item.PeriodEnd),
				strconv.Itoa(item.TotalDays),
				strconv.Itoa(item.ExcludedDays),
				strconv.Itoa(item.BilledDays),
				r.money(item.DailyRate),
				r.money(item.TotalValue),
			}
			for i, col := range invoiceColumns {
				pdf.CellFormat(col.width, 6, tr(cells[i]), "1", 0, col.align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		for _, item := range inv.Items {
			if item.ExcludedReason == "" {
				continue
			}
			pdf.SetFont("Arial", "I", 8)
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("%s: %d day(s) excluded, %s", item.AssetCode, item.ExcludedDays, item.ExcludedReason)), "", "L", false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 10)
	totals := [][2]string{
		{"Total", r.moneyWithCurrency(inv.Amount)},
		{"Paid", r.moneyWithCurrency(inv.PaidAmount)},
		{"Outstanding", r.moneyWithCurrency(inv.Outstanding())},
	}
	for _, kv := range totals {
		pdf.CellFormat(155, 6, kv[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, kv[1], "", 1, "R", false, 0, "")
	}

	if len(inv.Payments) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Payments")
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 9)
		for _, p := range inv.Payments {
			pdf.CellFormat(30, 6, formatDate(p.PaymentDate), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, tr(p.Method), "1", 0, "L", false, 0, "")
			pdf.CellFormat(85, 6, tr(p.Reference), "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, r.money(p.Amount), "1", 1, "R", false, 0, "")
		}
	}

	if inv.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(inv.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
