package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
)

// ErrInvalidLayout is returned for an unknown page size, orientation or
// margins that leave no room to print.
var ErrInvalidLayout = errors.New("invalid page layout")

// PageSize names a paper size.
type PageSize string

const (
	PageLetter  PageSize = "letter"
	PageLegal   PageSize = "legal"
	PageTabloid PageSize = "tabloid"
	PageA4      PageSize = "a4"
	PageA3      PageSize = "a3"
	PageArchD   PageSize = "archd"
)

// Orientation is the page orientation.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

const defaultMargin = 10.0

// Margins are page margins in millimetres.
type Margins struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// UniformMargins returns margins of mm on every side.
func UniformMargins(mm float64) *Margins {
	return &Margins{Top: mm, Bottom: mm, Left: mm, Right: mm}
}

// Layout describes the PDF page. The zero value is A4 portrait with 10 mm
// margins and maroto's taller bottom margin, which leaves room for the page
// number.
type Layout struct {
	Size        PageSize
	Orientation Orientation
	Margins     *Margins
}

// ParsePageSize accepts a page size name in any case. Empty input yields the
// default size.
func ParsePageSize(s string) (PageSize, error) {
	size := PageSize(strings.ToLower(strings.TrimSpace(s)))
	switch size {
	case "", PageLetter, PageLegal, PageTabloid, PageA4, PageA3, PageArchD:
		return size, nil
	case "arch-d", "arch_d":
		return PageArchD, nil
	}
	return "", fmt.Errorf("%w: unknown page size %q", ErrInvalidLayout, s)
}

// ParseOrientation accepts "portrait" or "landscape" in any case. Empty input
// yields portrait.
func ParseOrientation(s string) (Orientation, error) {
	o := Orientation(strings.ToLower(strings.TrimSpace(s)))
	switch o {
	case "", Portrait, Landscape:
		return o, nil
	}
	return "", fmt.Errorf("%w: unknown orientation %q", ErrInvalidLayout, s)
}

func (l Layout) margins() Margins {
	if l.Margins == nil {
		m := *UniformMargins(defaultMargin)
		m.Bottom = pagesize.DefaultBottomMargin
		return m
	}
	return *l.Margins
}

// Dimensions returns the page width and height in millimetres after
// orientation is applied.
func (l Layout) Dimensions() (width, height float64) {
	switch l.Size {
	case PageArchD:
		width, height = 609.6, 914.4
	case "":
		width, height = pagesize.GetDimensions(pagesize.A4)
	default:
		width, height = pagesize.GetDimensions(pagesize.Type(l.Size))
	}
	if l.Orientation == Landscape {
		width, height = height, width
	}
	return width, height
}

// Validate checks the size, orientation and margins.
func (l Layout) Validate() error {
	if _, err := ParsePageSize(string(l.Size)); err != nil {
		return err
	}
	if _, err := ParseOrientation(string(l.Orientation)); err != nil {
		return err
	}

	m := l.margins()
	if m.Top < 0 || m.Bottom < 0 || m.Left < 0 || m.Right < 0 {
		return fmt.Errorf("%w: margins must not be negative", ErrInvalidLayout)
	}
	width, height := l.Dimensions()
	if m.Left+m.Right >= width || m.Top+m.Bottom >= height {
		return fmt.Errorf("%w: margins leave no printable area", ErrInvalidLayout)
	}
	return nil
}

func (l Layout) builder() config.Builder {
	m := l.margins()
	width, height := l.Dimensions()

	o := orientation.Vertical
	if l.Orientation == Landscape {
		o = orientation.Horizontal
	}

	return config.NewBuilder().
		WithOrientation(o).
		WithDimensions(width, height).
		WithLeftMargin(m.Left).
		WithTopMargin(m.Top).
		WithRightMargin(m.Right).
		WithBottomMargin(m.Bottom)
}

// TitleBlock carries the sign-off fields printed at the foot of the PDF.
type TitleBlock struct {
	DrawingNumber string
	Revision      string
	DrawnBy       string
	CheckedBy     string
	ApprovedBy    string
}

func (tb TitleBlock) fields() [][2]string {
	var out [][2]string
	for _, f := range [][2]string{
		{"Drawing No.", tb.DrawingNumber},
		{"Revision", tb.Revision},
		{"Drawn by", tb.DrawnBy},
		{"Checked by", tb.CheckedBy},
		{"Approved by", tb.ApprovedBy},
	} {
		if strings.TrimSpace(f[1]) != "" {
			out = append(out, f)
		}
	}
	return out
}
