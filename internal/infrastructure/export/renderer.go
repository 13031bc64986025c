// Package export renders invoices and measurements into downloadable
// documents: invoices as PDF and measurements as XLSX workbooks.
package export

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const dateLayout = "2006-01-02"

// Config holds the presentation settings shared by every document
type Config struct {
	CompanyName string
	Currency    string
	Locale      string
}

// DefaultConfig returns settings suitable for local development
func DefaultConfig() Config {
	return Config{
		CompanyName: "RentFlow",
		Currency:    "BRL",
		Locale:      "pt-BR",
	}
}

// Renderer implements rental.DocumentRenderer
type Renderer struct {
	companyName string
	currency    string
	printer     *message.Printer
	title       cases.Caser
}

// NewRenderer creates a renderer. An unparseable locale falls back to English.
func NewRenderer(cfg Config) *Renderer {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		tag = language.English
	}
	if cfg.CompanyName == "" {
		cfg.CompanyName = DefaultConfig().CompanyName
	}
	return &Renderer{
		companyName: cfg.CompanyName,
		currency:    strings.TrimSpace(cfg.Currency),
		printer:     message.NewPrinter(tag),
		title:       cases.Title(tag),
	}
}

// money formats an amount with grouping for the configured locale
// Example (en): 1234.5 -> "1,234.50"
func (r *Renderer) money(d decimal.Decimal) string {
	return r.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

func (r *Renderer) moneyWithCurrency(d decimal.Decimal) string {
	if r.currency == "" {
		return r.money(d)
	}
	return r.currency + " " + r.money(d)
}

// label turns an enum value such as IN_AGREEMENT into "In Agreement"
func (r *Renderer) label(s string) string {
	return r.title.String(strings.ReplaceAll(strings.ToLower(s), "_", " "))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}
