package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	mutedColor  = &props.Color{Red: 100, Green: 100, Blue: 100}
	headerColor = &props.Color{Red: 33, Green: 37, Blue: 41}
	altRowColor = &props.Color{Red: 248, Green: 249, Blue: 250}
)

// PDF renders the quote on the page described by d.Layout.
func PDF(d Document) ([]byte, error) {
	if err := d.Layout.Validate(); err != nil {
		return nil, err
	}

	cfg := d.Layout.builder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addPDFHeader(m, d)
	addPDFItems(m, d)
	addPDFSummary(m, d)
	addPDFTitleBlock(m, d)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate quote pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addPDFHeader(m core.Maroto, d Document) {
	m.AddRows(
		row.New(10).Add(
			col.New(8).Add(text.New(d.title(), props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Left,
			})),
			col.New(4).Add(text.New("QUOTE", props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Right,
				Color: headerColor,
			})),
		),
	)

	meta := props.Text{Size: 8, Align: align.Left, Color: mutedColor}
	if d.Quote.ID != "" {
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New("Reference: "+d.Quote.ID, meta))))
	}
	if d.Date != "" {
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New("Date: "+d.Date, meta))))
	}
	if d.Quote.Notes != "" {
		m.AddRows(row.New(8).Add(col.New(12).Add(text.New(d.Quote.Notes, props.Text{Size: 8, Align: align.Left}))))
	}

	m.AddRows(row.New(4))
}

func addPDFItems(m core.Maroto, d Document) {
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerCell := props.Cell{BackgroundColor: headerColor}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", headerText)).WithStyle(&headerCell),
			col.New(5).Add(text.New("Equipment", headerTextLeft)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Category", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Qty", headerText)).WithStyle(&headerCell),
			col.New(3).Add(text.New("Total Cost", headerText)).WithStyle(&headerCell),
		),
	)

	if len(d.Quote.Items) == 0 {
		m.AddRows(row.New(7).Add(col.New(12).Add(text.New("No equipment", props.Text{
			Size:  8,
			Align: align.Center,
			Color: mutedColor,
		}))))
	}

	bodyText := props.Text{Size: 8, Align: align.Center}
	bodyTextLeft := props.Text{Size: 8, Align: align.Left}
	bodyTextRight := props.Text{Size: 8, Align: align.Right}
	for i, item := range d.Quote.Items {
		cols := []core.Col{
			col.New(1).Add(text.New(fmt.Sprintf("%d", i+1), bodyText)),
			col.New(5).Add(text.New(item.Manufacturer+" "+item.Model, bodyTextLeft)),
			col.New(2).Add(text.New(string(item.Category), bodyText)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", item.Quantity), bodyText)),
			col.New(3).Add(text.New(FormatMoney(item.TotalCost, d.Currency), bodyTextRight)),
		}
		if i%2 == 1 {
			for j := range cols {
				cols[j] = cols[j].WithStyle(&props.Cell{BackgroundColor: altRowColor})
			}
		}
		m.AddRows(row.New(7).Add(cols...))
	}

	m.AddRows(row.New(4))
}

func addPDFSummary(m core.Maroto, d Document) {
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 9, Align: align.Right}

	for _, line := range summaryLines(d) {
		m.AddRows(
			row.New(6).Add(
				col.New(6),
				col.New(3).Add(text.New(line.Label, label)),
				col.New(3).Add(text.New(FormatMoney(line.Amount, d.Currency), value)),
			),
		)
	}
}

func addPDFTitleBlock(m core.Maroto, d Document) {
	fields := d.TitleBlock.fields()
	if len(fields) == 0 {
		return
	}

	label := props.Text{Size: 7, Align: align.Left, Color: mutedColor}
	value := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left, Top: 3.5}
	boxed := &props.Cell{BorderType: border.Full, BorderColor: mutedColor}

	cols := []core.Col{
		col.New(12 - 2*len(fields)).Add(
			text.New("Project", label),
			text.New(d.title(), value),
		).WithStyle(boxed),
	}
	for _, f := range fields {
		cols = append(cols, col.New(2).Add(
			text.New(f[0], label),
			text.New(f[1], value),
		).WithStyle(boxed))
	}

	m.AddRows(row.New(6))
	m.AddRows(row.New(10).Add(cols...))
}
