package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Simplici0/avquote/internal/bom"
	"github.com/Simplici0/avquote/internal/pricing"
	"github.com/Simplici0/avquote/internal/quote"
)

func (s *server) handleLaborGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.LaborConfig(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleLaborPut(w http.ResponseWriter, r *http.Request) {
	var cfg pricing.LaborConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validateLaborConfig(cfg); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.SaveLaborConfig(r.Context(), cfg); err != nil {
		s.fail(w, r, err)
		return
	}
	s.handleLaborGet(w, r)
}

func validateLaborConfig(cfg pricing.LaborConfig) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"hourlyRate", cfg.HourlyRate},
		{"setupHours", cfg.SetupHours},
		{"programmingHours", cfg.ProgrammingHours},
		{"testingHours", cfg.TestingHours},
	}
	for _, f := range fields {
		if err := checkNonNegative(f.value, f.name); err != nil {
			return err
		}
	}
	if cfg.DefaultHoursPerItem != nil {
		if err := checkNonNegative(*cfg.DefaultHoursPerItem, "defaultHoursPerItem"); err != nil {
			return err
		}
	}
	for category, hours := range cfg.HoursPerItem {
		if !category.Valid() {
			return fmt.Errorf("%w: unknown equipment category %q", errInvalidInput, category)
		}
		if err := checkNonNegative(hours, "hoursPerItem."+string(category)); err != nil {
			return err
		}
	}
	return nil
}

func (s *server) handleTaxGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.TaxConfig(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleTaxPut(w http.ResponseWriter, r *http.Request) {
	var cfg pricing.TaxConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := checkPercent(cfg.Rate, "rate"); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.SaveTaxConfig(r.Context(), cfg); err != nil {
		s.fail(w, r, err)
		return
	}
	s.handleTaxGet(w, r)
}

// equipmentInput is the request body for catalog writes. Active defaults to
// true when omitted.
type equipmentInput struct {
	Manufacturer string  `json:"manufacturer"`
	Model        string  `json:"model"`
	SKU          string  `json:"sku"`
	Category     string  `json:"category"`
	Subcategory  string  `json:"subcategory"`
	Description  string  `json:"description"`
	UnitCost     float64 `json:"unitCost"`
	UnitMsrp     float64 `json:"unitMsrp"`
	Active       *bool   `json:"active"`
}

func (in equipmentInput) equipment() (bom.Equipment, error) {
	e := bom.Equipment{
		Manufacturer: strings.TrimSpace(in.Manufacturer),
		Model:        strings.TrimSpace(in.Model),
		SKU:          strings.TrimSpace(in.SKU),
		Subcategory:  strings.TrimSpace(in.Subcategory),
		Description:  strings.TrimSpace(in.Description),
		UnitCost:     in.UnitCost,
		UnitMsrp:     in.UnitMsrp,
		Active:       in.Active == nil || *in.Active,
	}

	for _, err := range []error{
		checkRequired(e.Manufacturer, "manufacturer"),
		checkRequired(e.Model, "model"),
		checkRequired(e.SKU, "sku"),
		checkNonNegative(e.UnitCost, "unitCost"),
		checkNonNegative(e.UnitMsrp, "unitMsrp"),
	} {
		if err != nil {
			return bom.Equipment{}, err
		}
	}

	category, err := pricing.ParseCategory(strings.ToLower(strings.TrimSpace(in.Category)))
	if err != nil {
		return bom.Equipment{}, fmt.Errorf("%w: %v", errInvalidInput, err)
	}
	e.Category = category
	return e, nil
}

func (s *server) handleEquipmentList(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "1"
	entries, err := s.store.ListEquipment(r.Context(), activeOnly)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *server) handleEquipmentGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "equipment")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.store.Equipment(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *server) handleEquipmentCreate(w http.ResponseWriter, r *http.Request) {
	var in equipmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := in.equipment()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	created, err := s.store.CreateEquipment(r.Context(), e)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/equipment/%d", created.ID))
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleEquipmentUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "equipment")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in equipmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := in.equipment()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	e.ID = id
	if err := s.store.UpdateEquipment(r.Context(), e); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

type priceCheckRequest struct {
	Cost    float64    `json:"cost"`
	Mode    quote.Mode `json:"mode"`
	Percent float64    `json:"percent"`
}

func (s *server) handlePriceCheck(w http.ResponseWriter, r *http.Request) {
	var req priceCheckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := checkNonNegative(req.Cost, "cost"); err != nil {
		s.fail(w, r, err)
		return
	}

	check, err := quote.CheckPrice(req.Cost, req.Mode, req.Percent)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}
