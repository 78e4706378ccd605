package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/avquote/internal/bom"
	"github.com/Simplici0/avquote/internal/config"
	"github.com/Simplici0/avquote/internal/db"
	"github.com/Simplici0/avquote/internal/migrations"
	"github.com/Simplici0/avquote/internal/quote"
	"github.com/Simplici0/avquote/internal/seed"
	"github.com/Simplici0/avquote/internal/store"
)

type testServer struct {
	srv     *server
	handler http.Handler
	skuIDs  map[string]int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(database, zap.NewNop()))
	_, err = seed.Run(context.Background(), database, seed.Config{
		Pricing: config.DefaultPricingDefaults(),
		Catalog: seed.StarterCatalog(),
	})
	require.NoError(t, err)

	st := store.New(database)
	entries, err := st.ListEquipment(context.Background(), false)
	require.NoError(t, err)
	skuIDs := make(map[string]int64, len(entries))
	for _, e := range entries {
		skuIDs[e.SKU] = e.ID
	}

	srv := newServer(st, quote.NewService(st, 25, zap.NewNop()), "USD", zap.NewNop())
	return &testServer{srv: srv, handler: srv.routes(), skuIDs: skuIDs}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}

func (ts *testServer) boardroom() map[string]any {
	return map[string]any{
		"title": "Boardroom",
		"notes": "phase one",
		"placements": []map[string]any{
			{"roomId": "boardroom", "equipmentId": ts.skuIDs["SNY-FW75BZ40L"], "quantity": 2},
			{"roomId": "boardroom", "equipmentId": ts.skuIDs["SHR-MXA920"], "quantity": 1},
			{"roomId": "boardroom", "equipmentId": ts.skuIDs["CRS-CP4N"], "quantity": 1},
		},
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("Content-Type"))
}

func TestQuotePreview(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/api/quotes/preview", ts.boardroom())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var q quote.Quote
	decodeBody(t, rr, &q)
	assert.Empty(t, q.ID)
	assert.InDelta(t, 9500, q.Totals.EquipmentCost, 1e-9)
	assert.InDelta(t, 22.5, q.Totals.LaborHours, 1e-9)
	assert.Equal(t, 1076.67, q.Totals.Tax)

	list := ts.do(t, http.MethodGet, "/api/quotes", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.JSONEq(t, `[]`, list.Body.String())
}

func TestQuotePreview_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name: "margin at 100",
			body: map[string]any{
				"marginPercent": 100,
				"placements":    []map[string]any{{"equipmentId": ts.skuIDs["SHR-MXA920"], "quantity": 1}},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "margin must be less than 100%",
		},
		{
			name:       "unknown equipment",
			body:       map[string]any{"placements": []map[string]any{{"equipmentId": 9999, "quantity": 1}}},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "unknown equipment",
		},
		{
			name:       "negative margin",
			body:       map[string]any{"marginPercent": -5},
			wantStatus: http.StatusBadRequest,
			wantError:  "margin must not be negative",
		},
		{
			name:       "unknown field",
			body:       `{"discount": 10}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "unknown field",
		},
		{
			name:       "empty body",
			body:       nil,
			wantStatus: http.StatusBadRequest,
			wantError:  "empty body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPost, "/api/quotes/preview", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			var body map[string]string
			decodeBody(t, rr, &body)
			assert.Contains(t, body["error"], tt.wantError)
		})
	}
}

func TestQuoteLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/api/quotes", ts.boardroom())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created quote.Quote
	decodeBody(t, rr, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/quotes/"+created.ID, rr.Header().Get("Location"))

	rr = ts.do(t, http.MethodGet, "/api/quotes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got quote.Quote
	decodeBody(t, rr, &got)
	assert.Equal(t, created.Totals, got.Totals)
	assert.Len(t, got.Items, 3)

	rr = ts.do(t, http.MethodGet, "/api/quotes?q=phase", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []store.QuoteListItem
	decodeBody(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rr = ts.do(t, http.MethodGet, "/api/quotes?q=lobby", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	xlsx := ts.do(t, http.MethodGet, "/api/quotes/"+created.ID+"/export.xlsx", nil)
	require.Equal(t, http.StatusOK, xlsx.Code)
	assert.Equal(t, contentTypeXLSX, xlsx.Header().Get("Content-Type"))
	assert.Contains(t, xlsx.Header().Get("Content-Disposition"), "quote-"+created.ID+".xlsx")
	assert.True(t, bytes.HasPrefix(xlsx.Body.Bytes(), []byte("PK")))

	pdf := ts.do(t, http.MethodGet, "/api/quotes/"+created.ID+"/export.pdf", nil)
	require.Equal(t, http.StatusOK, pdf.Code)
	assert.Equal(t, contentTypePDF, pdf.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(pdf.Body.Bytes(), []byte("%PDF-")))

	landscape := ts.do(t, http.MethodGet, "/api/quotes/"+created.ID+"/export.pdf?pageSize=Letter&orientation=landscape&margin=12.7&revision=B&drawnBy=JS", nil)
	require.Equal(t, http.StatusOK, landscape.Code, landscape.Body.String())
	assert.True(t, bytes.Contains(landscape.Body.Bytes(), []byte("/MediaBox [0 0 792.00 612.00]")))

	for _, query := range []string{"pageSize=b5", "orientation=sideways", "margin=wide", "pageSize=letter&margin=200"} {
		rr := ts.do(t, http.MethodGet, "/api/quotes/"+created.ID+"/export.pdf?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, query)
	}
}

func TestHandleQuoteTextReturnsPlainText(t *testing.T) {
	ts := newTestServer(t)

	created, err := ts.srv.quotes.Create(context.Background(), quote.Request{
		Title:      "Huddle",
		Placements: []bom.Placement{{EquipmentID: ts.skuIDs["SHR-MXA920"], Quantity: 1}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/quotes/"+created.ID+"/text", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", created.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	ts.srv.handleQuoteText(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")

	body := rr.Body.String()
	for _, expected := range []string{"Huddle", "Reference: " + created.ID, "1 x Shure MXA920", "Total:", "USD"} {
		assert.True(t, strings.Contains(body, expected), "expected body to contain %q, got: %s", expected, body)
	}
}

func TestQuoteNotFound(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/quotes/missing",
		"/api/quotes/missing/text",
		"/api/quotes/missing/export.xlsx",
		"/api/quotes/missing/export.pdf",
	} {
		rr := ts.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.JSONEq(t, `{"error":"not found"}`, rr.Body.String(), path)
	}
}
