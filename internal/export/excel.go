package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/avquote/internal/pricing"
)

const (
	maxSheetName = 31
	moneyFormat  = "#,##0.00"
)

// Excel renders the quote as an xlsx workbook.
func Excel(d Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(d.title())
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	widths := []float64{6, 18, 24, 16, 8, 14, 16}
	for i, col := range columns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	numFmt := moneyFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}

	cells := []struct {
		cell  string
		value any
	}{
		{"A1", sanitizeCell(d.title())},
		{"A2", "Reference: " + d.Quote.ID},
		{"A3", "Date: " + d.Date},
	}
	for _, c := range cells {
		if err := f.SetCellValue(sheet, c.cell, c.value); err != nil {
			return nil, fmt.Errorf("set %s: %w", c.cell, err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", titleStyle); err != nil {
		return nil, fmt.Errorf("style title: %w", err)
	}

	unitCost, totalCost := "Unit Cost", "Total Cost"
	if d.Currency != "" {
		unitCost += " (" + d.Currency + ")"
		totalCost += " (" + d.Currency + ")"
	}
	headers := []string{"#", "Manufacturer", "Model", "Category", "Qty", unitCost, totalCost}
	for i, h := range headers {
		if err := f.SetCellValue(sheet, fmt.Sprintf("%s5", columns[i]), h); err != nil {
			return nil, fmt.Errorf("set header %s: %w", h, err)
		}
	}
	if err := f.SetCellStyle(sheet, "A5", "G5", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	row := 6
	for i, item := range d.Quote.Items {
		values := []any{
			i + 1,
			sanitizeCell(item.Manufacturer),
			sanitizeCell(item.Model),
			string(item.Category),
			item.Quantity,
			item.UnitCost,
			item.TotalCost,
		}
		for j, v := range values {
			if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", columns[j], row), v); err != nil {
				return nil, fmt.Errorf("set item row %d: %w", row, err)
			}
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("F%d", row), fmt.Sprintf("G%d", row), moneyStyle); err != nil {
			return nil, fmt.Errorf("style item row %d: %w", row, err)
		}
		row++
	}

	row++
	for _, line := range summaryLines(d) {
		label := fmt.Sprintf("F%d", row)
		if err := f.SetCellValue(sheet, label, line.Label); err != nil {
			return nil, fmt.Errorf("set summary label: %w", err)
		}
		if err := f.SetCellStyle(sheet, label, label, labelStyle); err != nil {
			return nil, fmt.Errorf("style summary label: %w", err)
		}
		value := fmt.Sprintf("G%d", row)
		if err := f.SetCellValue(sheet, value, pricing.Round2(line.Amount)); err != nil {
			return nil, fmt.Errorf("set summary value: %w", err)
		}
		if err := f.SetCellStyle(sheet, value, value, moneyStyle); err != nil {
			return nil, fmt.Errorf("style summary value: %w", err)
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, title)
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	if strings.TrimSpace(name) == "" {
		return "Quote"
	}
	return name
}

// sanitizeCell keeps user text from being read as a formula.
func sanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
