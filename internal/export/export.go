// Package export renders priced quotes as text, spreadsheets and PDFs.
package export

import (
	"fmt"
	"strings"

	"github.com/Simplici0/avquote/internal/pricing"
	"github.com/Simplici0/avquote/internal/quote"
)

// Document is the presentation input shared by all renderers.
type Document struct {
	Quote    quote.Quote
	Currency string
	// Date is preformatted by the caller.
	Date string

	// Layout and TitleBlock only affect the PDF.
	Layout     Layout
	TitleBlock TitleBlock
}

func (d Document) title() string {
	if t := strings.TrimSpace(d.Quote.Title); t != "" {
		return t
	}
	return "Quote"
}

// FormatMoney renders amount with thousands separators and two decimals.
func FormatMoney(amount float64, currency string) string {
	rounded := pricing.Round2(amount)
	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	raw := fmt.Sprintf("%.2f", rounded)
	intPart, decPart, _ := strings.Cut(raw, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + "." + decPart
	if negative {
		out = "-" + out
	}
	if currency != "" {
		out += " " + currency
	}
	return out
}

// formatHours drops the decimals for whole hours.
func formatHours(h float64) string {
	if h == float64(int64(h)) {
		return fmt.Sprintf("%d", int64(h))
	}
	return fmt.Sprintf("%.2f", h)
}

type summaryLine struct {
	Label  string
	Amount float64
}

func summaryLines(d Document) []summaryLine {
	t := d.Quote.Totals
	return []summaryLine{
		{"Equipment cost", t.EquipmentCost},
		{"Equipment price", t.EquipmentPrice},
		{fmt.Sprintf("Labor (%s h)", formatHours(t.LaborHours)), t.LaborCost},
		{"Subtotal", t.Subtotal},
		{"Tax", t.Tax},
		{"Total", t.Total},
		{fmt.Sprintf("Margin (%.1f%%)", t.MarginPercentage), t.Margin},
	}
}

// Text renders a plain-text quote summary.
func Text(d Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", d.title())
	if d.Quote.ID != "" {
		fmt.Fprintf(&b, "Reference: %s\n", d.Quote.ID)
	}
	if d.Date != "" {
		fmt.Fprintf(&b, "Date: %s\n", d.Date)
	}
	if notes := strings.TrimSpace(d.Quote.Notes); notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", notes)
	}

	b.WriteString("\nEquipment:\n")
	if len(d.Quote.Items) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, item := range d.Quote.Items {
		fmt.Fprintf(&b, "  %d x %s %s [%s] @ %s = %s\n",
			item.Quantity, item.Manufacturer, item.Model, item.Category,
			FormatMoney(item.UnitCost, d.Currency), FormatMoney(item.TotalCost, d.Currency))
	}

	b.WriteString("\nSummary:\n")
	for _, line := range summaryLines(d) {
		fmt.Fprintf(&b, "  %s: %s\n", line.Label, FormatMoney(line.Amount, d.Currency))
	}
	return b.String()
}
