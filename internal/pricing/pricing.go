package pricing

import (
	"errors"
	"fmt"
)

// ErrInvalidMargin is returned when a margin would put the sale price at or
// past the 100% asymptote.
var ErrInvalidMargin = errors.New("margin must be less than 100%")

// Category groups equipment for labor estimation.
type Category string

const (
	CategoryVideo          Category = "video"
	CategoryAudio          Category = "audio"
	CategoryControl        Category = "control"
	CategoryInfrastructure Category = "infrastructure"
)

// Categories lists every known equipment category in display order.
var Categories = []Category{
	CategoryVideo,
	CategoryAudio,
	CategoryControl,
	CategoryInfrastructure,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryVideo, CategoryAudio, CategoryControl, CategoryInfrastructure:
		return true
	}
	return false
}

// ParseCategory converts raw into a known Category.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.Valid() {
		return "", fmt.Errorf("unknown equipment category %q", raw)
	}
	return c, nil
}

// BOMItem is one catalog entry expanded by quantity for a room design.
// TotalCost and TotalMsrp are maintained by the producer.
type BOMItem struct {
	EquipmentID  int64    `json:"equipmentId"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	SKU          string   `json:"sku"`
	Category     Category `json:"category"`
	Subcategory  string   `json:"subcategory"`
	Description  string   `json:"description"`
	Quantity     int      `json:"quantity"`
	UnitCost     float64  `json:"unitCost"`
	UnitMsrp     float64  `json:"unitMsrp"`
	TotalCost    float64  `json:"totalCost"`
	TotalMsrp    float64  `json:"totalMsrp"`
}

// LaborConfig holds the rates used to estimate installation labor.
type LaborConfig struct {
	HourlyRate   float64              `json:"hourlyRate"`
	HoursPerItem map[Category]float64 `json:"hoursPerItem"`
	// DefaultHoursPerItem applies to categories missing from HoursPerItem.
	// Nil means those categories add no hours.
	DefaultHoursPerItem *float64 `json:"defaultHoursPerItem,omitempty"`
	SetupHours          float64  `json:"setupHours"`
	ProgrammingHours    float64  `json:"programmingHours"`
	TestingHours        float64  `json:"testingHours"`
}

// FixedHours returns the hours charged once per quote regardless of items.
func (c LaborConfig) FixedHours() float64 {
	return c.SetupHours + c.ProgrammingHours + c.TestingHours
}

// TaxConfig controls which parts of a quote are taxed and at what rate.
type TaxConfig struct {
	Rate             float64 `json:"rate"`
	ApplyToEquipment bool    `json:"applyToEquipment"`
	ApplyToLabor     bool    `json:"applyToLabor"`
}

// LaborEstimate is the output of CalculateLabor.
type LaborEstimate struct {
	Hours float64 `json:"hours"`
	Cost  float64 `json:"cost"`
}

// Result contains the itemized totals of a quote.
type Result struct {
	EquipmentCost    float64 `json:"equipmentCost"`
	EquipmentPrice   float64 `json:"equipmentPrice"`
	LaborCost        float64 `json:"laborCost"`
	LaborHours       float64 `json:"laborHours"`
	Subtotal         float64 `json:"subtotal"`
	Tax              float64 `json:"tax"`
	Total            float64 `json:"total"`
	Margin           float64 `json:"margin"`
	MarginPercentage float64 `json:"marginPercentage"`
}

// CalculateMargin returns the profit amount between cost and price.
func CalculateMargin(cost, price float64) float64 {
	return price - cost
}

// CalculateMarkup returns profit as a percentage of cost. A zero cost yields 0.
func CalculateMarkup(cost, price float64) float64 {
	if cost == 0 {
		return 0
	}
	return ((price - cost) / cost) * 100
}

// ApplyMarginPercentage returns the price at which marginPercent of the price
// is profit.
func ApplyMarginPercentage(cost, marginPercent float64) (float64, error) {
	if marginPercent >= 100 {
		return 0, fmt.Errorf("apply margin %v%%: %w", marginPercent, ErrInvalidMargin)
	}
	if marginPercent == 0 {
		return cost, nil
	}
	return cost / (1 - marginPercent/100), nil
}

// ApplyMarkupPercentage returns cost raised by markupPercent of itself.
func ApplyMarkupPercentage(cost, markupPercent float64) float64 {
	return cost * (1 + markupPercent/100)
}

// CalculateLabor estimates labor hours and cost for a bill of materials.
func CalculateLabor(items []BOMItem, cfg LaborConfig) LaborEstimate {
	hours := cfg.FixedHours()

	for _, item := range items {
		perItem, ok := cfg.HoursPerItem[item.Category]
		if !ok {
			if cfg.DefaultHoursPerItem == nil {
				continue
			}
			perItem = *cfg.DefaultHoursPerItem
		}
		hours += perItem * float64(item.Quantity)
	}

	return LaborEstimate{
		Hours: hours,
		Cost:  hours * cfg.HourlyRate,
	}
}

// CalculateTax returns the tax owed on the taxable parts of a quote, rounded
// to cents.
func CalculateTax(equipmentPrice, laborCost float64, cfg TaxConfig) float64 {
	base := 0.0
	if cfg.ApplyToEquipment {
		base += equipmentPrice
	}
	if cfg.ApplyToLabor {
		base += laborCost
	}
	if base == 0 || cfg.Rate == 0 {
		return 0
	}
	return Round2(base * cfg.Rate / 100)
}

// CalculateQuoteTotals prices a bill of materials with margin, labor and tax.
//
// MarginPercentage echoes marginPercent rather than being derived from the
// computed amounts, except for an empty equipment cost where both the margin
// and its percentage are reported as zero.
func CalculateQuoteTotals(items []BOMItem, marginPercent float64, labor LaborConfig, tax TaxConfig) (Result, error) {
	equipmentCost := 0.0
	for _, item := range items {
		equipmentCost += item.TotalCost
	}

	equipmentPrice, err := ApplyMarginPercentage(equipmentCost, marginPercent)
	if err != nil {
		return Result{}, err
	}

	estimate := CalculateLabor(items, labor)
	subtotal := equipmentPrice + estimate.Cost
	taxAmount := CalculateTax(equipmentPrice, estimate.Cost, tax)

	result := Result{
		EquipmentCost:    equipmentCost,
		EquipmentPrice:   equipmentPrice,
		LaborCost:        estimate.Cost,
		LaborHours:       estimate.Hours,
		Subtotal:         subtotal,
		Tax:              taxAmount,
		Total:            subtotal + taxAmount,
		Margin:           CalculateMargin(equipmentCost, equipmentPrice),
		MarginPercentage: marginPercent,
	}
	if equipmentCost == 0 {
		result.Margin = 0
		result.MarginPercentage = 0
	}

	return result, nil
}
