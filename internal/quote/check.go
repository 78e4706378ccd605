package quote

import (
	"fmt"

	"github.com/Simplici0/avquote/internal/pricing"
)

// Mode selects how a percentage turns a cost into a price.
type Mode string

const (
	ModeMargin Mode = "margin"
	ModeMarkup Mode = "markup"
)

// PriceCheck is the price of a single cost under one pricing mode, with the
// margin and markup it implies.
type PriceCheck struct {
	Cost          float64 `json:"cost"`
	Price         float64 `json:"price"`
	Profit        float64 `json:"profit"`
	MarginPercent float64 `json:"marginPercent"`
	MarkupPercent float64 `json:"markupPercent"`
}

// CheckPrice prices cost with percent interpreted according to mode.
func CheckPrice(cost float64, mode Mode, percent float64) (PriceCheck, error) {
	var price float64
	switch mode {
	case ModeMargin:
		p, err := pricing.ApplyMarginPercentage(cost, percent)
		if err != nil {
			return PriceCheck{}, err
		}
		price = p
	case ModeMarkup:
		price = pricing.ApplyMarkupPercentage(cost, percent)
	default:
		return PriceCheck{}, fmt.Errorf("%w: unknown pricing mode %q", ErrInvalidRequest, mode)
	}

	check := PriceCheck{
		Cost:          cost,
		Price:         price,
		Profit:        pricing.CalculateMargin(cost, price),
		MarkupPercent: pricing.CalculateMarkup(cost, price),
	}
	if price != 0 {
		check.MarginPercent = check.Profit / price * 100
	}
	return check, nil
}
