// Package bom turns equipment placed in a room design into priced line items.
package bom

import (
	"errors"
	"fmt"

	"github.com/Simplici0/avquote/internal/pricing"
)

// ErrUnknownEquipment is returned when a placement references equipment that
// is not in the catalog.
var ErrUnknownEquipment = errors.New("unknown equipment")

// Equipment is a catalog entry.
type Equipment struct {
	ID           int64            `json:"id"`
	Manufacturer string           `json:"manufacturer"`
	Model        string           `json:"model"`
	SKU          string           `json:"sku"`
	Category     pricing.Category `json:"category"`
	Subcategory  string           `json:"subcategory"`
	Description  string           `json:"description"`
	UnitCost     float64          `json:"unitCost"`
	UnitMsrp     float64          `json:"unitMsrp"`
	Active       bool             `json:"active"`
}

// Placement is a piece of equipment placed in a room.
type Placement struct {
	RoomID      string `json:"roomId" yaml:"room_id"`
	EquipmentID int64  `json:"equipmentId" yaml:"equipment_id"`
	Quantity    int    `json:"quantity" yaml:"quantity"`
}

// Catalog resolves equipment by ID.
type Catalog interface {
	Equipment(id int64) (Equipment, bool)
}

// MapCatalog is an in-memory Catalog keyed by equipment ID.
type MapCatalog map[int64]Equipment

// NewMapCatalog indexes entries by ID.
func NewMapCatalog(entries []Equipment) MapCatalog {
	c := make(MapCatalog, len(entries))
	for _, e := range entries {
		c[e.ID] = e
	}
	return c
}

// Equipment implements Catalog.
func (c MapCatalog) Equipment(id int64) (Equipment, bool) {
	e, ok := c[id]
	return e, ok
}

// Generate expands placements into BOM items, one per distinct equipment ID
// in first-seen order. A quote covers the whole project, so the same equipment
// placed in several rooms becomes one line. Placements with a non-positive
// quantity are ignored.
func Generate(placements []Placement, catalog Catalog) ([]pricing.BOMItem, error) {
	items := make([]pricing.BOMItem, 0, len(placements))
	index := make(map[int64]int, len(placements))

	for _, p := range placements {
		if p.Quantity <= 0 {
			continue
		}

		if i, ok := index[p.EquipmentID]; ok {
			items[i].Quantity += p.Quantity
			continue
		}

		e, ok := catalog.Equipment(p.EquipmentID)
		if !ok {
			return nil, fmt.Errorf("resolve equipment %d: %w", p.EquipmentID, ErrUnknownEquipment)
		}

		index[p.EquipmentID] = len(items)
		items = append(items, pricing.BOMItem{
			EquipmentID:  e.ID,
			Manufacturer: e.Manufacturer,
			Model:        e.Model,
			SKU:          e.SKU,
			Category:     e.Category,
			Subcategory:  e.Subcategory,
			Description:  e.Description,
			Quantity:     p.Quantity,
			UnitCost:     e.UnitCost,
			UnitMsrp:     e.UnitMsrp,
		})
	}

	for i := range items {
		qty := float64(items[i].Quantity)
		items[i].TotalCost = items[i].UnitCost * qty
		items[i].TotalMsrp = items[i].UnitMsrp * qty
	}

	return items, nil
}

// CategoryTotal aggregates the items of one category.
type CategoryTotal struct {
	Units     int     `json:"units"`
	TotalCost float64 `json:"totalCost"`
	TotalMsrp float64 `json:"totalMsrp"`
}

// Summary aggregates a bill of materials.
type Summary struct {
	ItemCount  int                                `json:"itemCount"`
	UnitCount  int                                `json:"unitCount"`
	TotalCost  float64                            `json:"totalCost"`
	TotalMsrp  float64                            `json:"totalMsrp"`
	ByCategory map[pricing.Category]CategoryTotal `json:"byCategory"`
}

// Summarize rolls items up by category.
func Summarize(items []pricing.BOMItem) Summary {
	s := Summary{
		ItemCount:  len(items),
		ByCategory: make(map[pricing.Category]CategoryTotal),
	}
	for _, item := range items {
		s.UnitCount += item.Quantity
		s.TotalCost += item.TotalCost
		s.TotalMsrp += item.TotalMsrp

		ct := s.ByCategory[item.Category]
		ct.Units += item.Quantity
		ct.TotalCost += item.TotalCost
		ct.TotalMsrp += item.TotalMsrp
		s.ByCategory[item.Category] = ct
	}
	return s
}
