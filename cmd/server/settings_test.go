package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/avquote/internal/bom"
	"github.com/Simplici0/avquote/internal/pricing"
	"github.com/Simplici0/avquote/internal/quote"
)

func TestLaborSettings(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/api/settings/labor", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var seeded pricing.LaborConfig
	decodeBody(t, rr, &seeded)
	assert.Equal(t, 150.0, seeded.HourlyRate)
	assert.Equal(t, 2.0, seeded.HoursPerItem[pricing.CategoryVideo])

	rr = ts.do(t, http.MethodPut, "/api/settings/labor", map[string]any{
		"hourlyRate":       120,
		"hoursPerItem":     map[string]float64{"audio": 1},
		"setupHours":       2,
		"programmingHours": 0,
		"testingHours":     1,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var saved pricing.LaborConfig
	decodeBody(t, rr, &saved)
	assert.Equal(t, 120.0, saved.HourlyRate)
	assert.Equal(t, map[pricing.Category]float64{pricing.CategoryAudio: 1}, saved.HoursPerItem)
	assert.Nil(t, saved.DefaultHoursPerItem)

	// Preview picks the new rates up immediately.
	rr = ts.do(t, http.MethodPost, "/api/quotes/preview", ts.boardroom())
	require.Equal(t, http.StatusOK, rr.Code)
	var q quote.Quote
	decodeBody(t, rr, &q)
	assert.InDelta(t, 4, q.Totals.LaborHours, 1e-9)
	assert.InDelta(t, 480, q.Totals.LaborCost, 1e-9)
}

func TestLaborSettings_Rejects(t *testing.T) {
	ts := newTestServer(t)

	for name, body := range map[string]any{
		"negative rate":    map[string]any{"hourlyRate": -1},
		"unknown category": map[string]any{"hourlyRate": 100, "hoursPerItem": map[string]float64{"lighting": 1}},
		"negative hours":   map[string]any{"hourlyRate": 100, "hoursPerItem": map[string]float64{"video": -2}},
		"negative default": map[string]any{"hourlyRate": 100, "defaultHoursPerItem": -1},
	} {
		t.Run(name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPut, "/api/settings/labor", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}

	rr := ts.do(t, http.MethodGet, "/api/settings/labor", nil)
	var unchanged pricing.LaborConfig
	decodeBody(t, rr, &unchanged)
	assert.Equal(t, 150.0, unchanged.HourlyRate)
}

func TestTaxSettings(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPut, "/api/settings/tax", pricing.TaxConfig{Rate: 10, ApplyToLabor: true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"rate":10,"applyToEquipment":false,"applyToLabor":true}`, rr.Body.String())

	rr = ts.do(t, http.MethodPut, "/api/settings/tax", pricing.TaxConfig{Rate: 101})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/settings/tax", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var cfg pricing.TaxConfig
	decodeBody(t, rr, &cfg)
	assert.Equal(t, 10.0, cfg.Rate)
}

func TestEquipmentEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/api/equipment", map[string]any{
		"manufacturer": "Biamp",
		"model":        "TesiraFORTE X 400",
		"sku":          "BIA-TFX400",
		"category":     "Audio",
		"unitCost":     2300,
		"unitMsrp":     3100,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created bom.Equipment
	decodeBody(t, rr, &created)
	assert.Equal(t, pricing.CategoryAudio, created.Category)
	assert.True(t, created.Active)
	assert.Equal(t, fmt.Sprintf("/api/equipment/%d", created.ID), rr.Header().Get("Location"))

	rr = ts.do(t, http.MethodPost, "/api/equipment", map[string]any{
		"manufacturer": "Biamp", "model": "Copy", "sku": "BIA-TFX400", "category": "audio",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.do(t, http.MethodPut, fmt.Sprintf("/api/equipment/%d", created.ID), map[string]any{
		"manufacturer": "Biamp",
		"model":        "TesiraFORTE X 400",
		"sku":          "BIA-TFX400",
		"category":     "audio",
		"unitCost":     2400,
		"active":       false,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.do(t, http.MethodGet, fmt.Sprintf("/api/equipment/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got bom.Equipment
	decodeBody(t, rr, &got)
	assert.Equal(t, 2400.0, got.UnitCost)
	assert.False(t, got.Active)

	rr = ts.do(t, http.MethodGet, "/api/equipment?active=1", nil)
	var active []bom.Equipment
	decodeBody(t, rr, &active)
	assert.Len(t, active, 4)

	rr = ts.do(t, http.MethodGet, "/api/equipment", nil)
	var all []bom.Equipment
	decodeBody(t, rr, &all)
	assert.Len(t, all, 5)
}

func TestEquipmentEndpoints_Errors(t *testing.T) {
	ts := newTestServer(t)

	valid := map[string]any{"manufacturer": "Sony", "model": "X", "sku": "SNY-X", "category": "video"}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad id", http.MethodGet, "/api/equipment/abc", nil, http.StatusBadRequest},
		{"zero id", http.MethodGet, "/api/equipment/0", nil, http.StatusBadRequest},
		{"missing", http.MethodGet, "/api/equipment/999", nil, http.StatusNotFound},
		{"update missing", http.MethodPut, "/api/equipment/999", valid, http.StatusNotFound},
		{"unknown category", http.MethodPost, "/api/equipment", map[string]any{"manufacturer": "Sony", "model": "X", "sku": "SNY-X", "category": "lighting"}, http.StatusBadRequest},
		{"missing model", http.MethodPost, "/api/equipment", map[string]any{"manufacturer": "Sony", "sku": "SNY-X", "category": "video"}, http.StatusBadRequest},
		{"negative cost", http.MethodPost, "/api/equipment", map[string]any{"manufacturer": "Sony", "model": "X", "sku": "SNY-X", "category": "video", "unitCost": -1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestPriceCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/api/pricing/check", map[string]any{"cost": 75, "mode": "margin", "percent": 25})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var check quote.PriceCheck
	decodeBody(t, rr, &check)
	assert.InDelta(t, 100, check.Price, 1e-9)
	assert.InDelta(t, 25, check.Profit, 1e-9)

	rr = ts.do(t, http.MethodPost, "/api/pricing/check", map[string]any{"cost": 75, "mode": "margin", "percent": 100})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"error":"margin must be less than 100%"}`, rr.Body.String())

	rr = ts.do(t, http.MethodPost, "/api/pricing/check", map[string]any{"cost": 75, "mode": "discount", "percent": 10})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/pricing/check", map[string]any{"cost": -1, "mode": "markup", "percent": 10})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
