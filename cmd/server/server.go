package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/avquote/internal/bom"
	"github.com/Simplici0/avquote/internal/export"
	"github.com/Simplici0/avquote/internal/pricing"
	"github.com/Simplici0/avquote/internal/quote"
	"github.com/Simplici0/avquote/internal/store"
)

const maxBodyBytes = 1 << 20

var errInvalidInput = errors.New("invalid input")

type server struct {
	store    *store.Store
	quotes   *quote.Service
	currency string
	logger   *zap.Logger
}

func newServer(st *store.Store, quotes *quote.Service, currency string, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{store: st, quotes: quotes, currency: currency, logger: logger.Named("http")}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings/labor", s.handleLaborGet)
		r.Put("/settings/labor", s.handleLaborPut)
		r.Get("/settings/tax", s.handleTaxGet)
		r.Put("/settings/tax", s.handleTaxPut)

		r.Get("/equipment", s.handleEquipmentList)
		r.Post("/equipment", s.handleEquipmentCreate)
		r.Get("/equipment/{id}", s.handleEquipmentGet)
		r.Put("/equipment/{id}", s.handleEquipmentUpdate)

		r.Post("/pricing/check", s.handlePriceCheck)

		r.Post("/quotes/preview", s.handleQuotePreview)
		r.Post("/quotes", s.handleQuoteCreate)
		r.Get("/quotes", s.handleQuotesList)
		r.Get("/quotes/{id}", s.handleQuoteGet)
		r.Get("/quotes/{id}/text", s.handleQuoteText)
		r.Get("/quotes/{id}/export.xlsx", s.handleQuoteExcel)
		r.Get("/quotes/{id}/export.pdf", s.handleQuotePDF)

		r.Post("/drawings/electrical", s.handleElectricalDrawing)
	})

	return r
}

func (s *server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// fail maps domain errors onto HTTP statuses.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidMargin):
		writeError(w, http.StatusUnprocessableEntity, pricing.ErrInvalidMargin.Error())
	case errors.Is(err, bom.ErrUnknownEquipment):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errInvalidInput), errors.Is(err, quote.ErrInvalidRequest), errors.Is(err, export.ErrInvalidLayout):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "sku already exists")
	default:
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errInvalidInput)
		}
		return fmt.Errorf("%w: %v", errInvalidInput, err)
	}
	return nil
}

func parseID(r *http.Request, what string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s id", errInvalidInput, what)
	}
	return id, nil
}

func checkNonNegative(value float64, field string) error {
	if value < 0 {
		return fmt.Errorf("%w: %s must be greater than or equal to 0", errInvalidInput, field)
	}
	return nil
}

func checkPercent(value float64, field string) error {
	if err := checkNonNegative(value, field); err != nil {
		return err
	}
	if value > 100 {
		return fmt.Errorf("%w: %s must be between 0 and 100", errInvalidInput, field)
	}
	return nil
}

func checkRequired(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", errInvalidInput, field)
	}
	return nil
}
