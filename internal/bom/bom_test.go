package bom

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Simplici0/avquote/internal/pricing"
)

func testCatalog() MapCatalog {
	return NewMapCatalog([]Equipment{
		{ID: 1, Manufacturer: "Sony", Model: "FW-75BZ40L", SKU: "SNY-75", Category: pricing.CategoryVideo, UnitCost: 1500, UnitMsrp: 2100},
		{ID: 2, Manufacturer: "Shure", Model: "MXA920", SKU: "SHR-920", Category: pricing.CategoryAudio, UnitCost: 2000, UnitMsrp: 2600},
		{ID: 3, Manufacturer: "Crestron", Model: "CP4N", SKU: "CRS-CP4N", Category: pricing.CategoryControl, UnitCost: 1500, UnitMsrp: 1950},
	})
}

func TestGenerate_MergesPlacementsAndFillsTotals(t *testing.T) {
	placements := []Placement{
		{RoomID: "boardroom", EquipmentID: 1, Quantity: 1},
		{RoomID: "boardroom", EquipmentID: 2, Quantity: 1},
		{RoomID: "boardroom", EquipmentID: 1, Quantity: 1},
		{RoomID: "boardroom", EquipmentID: 3, Quantity: 1},
	}

	got, err := Generate(placements, testCatalog())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := []pricing.BOMItem{
		{EquipmentID: 1, Manufacturer: "Sony", Model: "FW-75BZ40L", SKU: "SNY-75", Category: pricing.CategoryVideo, Quantity: 2, UnitCost: 1500, UnitMsrp: 2100, TotalCost: 3000, TotalMsrp: 4200},
		{EquipmentID: 2, Manufacturer: "Shure", Model: "MXA920", SKU: "SHR-920", Category: pricing.CategoryAudio, Quantity: 1, UnitCost: 2000, UnitMsrp: 2600, TotalCost: 2000, TotalMsrp: 2600},
		{EquipmentID: 3, Manufacturer: "Crestron", Model: "CP4N", SKU: "CRS-CP4N", Category: pricing.CategoryControl, Quantity: 1, UnitCost: 1500, UnitMsrp: 1950, TotalCost: 1500, TotalMsrp: 1950},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Generate mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_MergesAcrossRooms(t *testing.T) {
	got, err := Generate([]Placement{
		{RoomID: "boardroom", EquipmentID: 2, Quantity: 2},
		{RoomID: "huddle", EquipmentID: 2, Quantity: 1},
	}, testCatalog())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 1 || got[0].Quantity != 3 || got[0].TotalCost != 6000 {
		t.Fatalf("expected one merged line of 3 units, got %+v", got)
	}
}

func TestGenerate_SkipsNonPositiveQuantities(t *testing.T) {
	got, err := Generate([]Placement{
		{EquipmentID: 1, Quantity: 0},
		{EquipmentID: 99, Quantity: -2},
	}, testCatalog())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty BOM, got %+v", got)
	}
}

func TestGenerate_UnknownEquipment(t *testing.T) {
	_, err := Generate([]Placement{{EquipmentID: 42, Quantity: 1}}, testCatalog())
	if !errors.Is(err, ErrUnknownEquipment) {
		t.Fatalf("err = %v, want ErrUnknownEquipment", err)
	}
}

func TestSummarize(t *testing.T) {
	items, err := Generate([]Placement{
		{EquipmentID: 1, Quantity: 2},
		{EquipmentID: 2, Quantity: 1},
		{EquipmentID: 3, Quantity: 1},
	}, testCatalog())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	got := Summarize(items)

	want := Summary{
		ItemCount: 3,
		UnitCount: 4,
		TotalCost: 6500,
		TotalMsrp: 8750,
		ByCategory: map[pricing.Category]CategoryTotal{
			pricing.CategoryVideo:   {Units: 2, TotalCost: 3000, TotalMsrp: 4200},
			pricing.CategoryAudio:   {Units: 1, TotalCost: 2000, TotalMsrp: 2600},
			pricing.CategoryControl: {Units: 1, TotalCost: 1500, TotalMsrp: 1950},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_FeedsPricingEngine(t *testing.T) {
	items, err := Generate([]Placement{
		{EquipmentID: 1, Quantity: 2},
		{EquipmentID: 2, Quantity: 1},
		{EquipmentID: 3, Quantity: 1},
	}, testCatalog())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	labor := pricing.CalculateLabor(items, pricing.LaborConfig{
		HourlyRate:   100,
		HoursPerItem: map[pricing.Category]float64{pricing.CategoryVideo: 2, pricing.CategoryAudio: 1.5, pricing.CategoryControl: 3},
	})
	if labor.Hours != 8.5 {
		t.Fatalf("labor hours = %v, want 8.5", labor.Hours)
	}
}
