package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/avquote/internal/export"
	"github.com/Simplici0/avquote/internal/quote"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

func (s *server) handleQuotePreview(w http.ResponseWriter, r *http.Request) {
	var req quote.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	q, err := s.quotes.Preview(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var req quote.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	q, err := s.quotes.Create(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/quotes/"+q.ID)
	writeJSON(w, http.StatusCreated, q)
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.quotes.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (s *server) handleQuoteGet(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) loadDocument(r *http.Request) (export.Document, error) {
	q, err := s.quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return export.Document{}, err
	}
	doc := export.Document{Quote: q, Currency: s.currency}
	if !q.CreatedAt.IsZero() {
		doc.Date = q.CreatedAt.Format("2006-01-02")
	}
	return doc, nil
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDocument(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(export.Text(doc)))
}

func (s *server) handleQuoteExcel(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDocument(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	b, err := export.Excel(doc)
	if err != nil {
		s.fail(w, r, fmt.Errorf("render excel: %w", err))
		return
	}
	writeAttachment(w, contentTypeXLSX, "quote-"+doc.Quote.ID+".xlsx", b)
}

// pdfOptions reads the page layout and title block from the query string.
func pdfOptions(r *http.Request) (export.Layout, export.TitleBlock, error) {
	q := r.URL.Query()

	size, err := export.ParsePageSize(q.Get("pageSize"))
	if err != nil {
		return export.Layout{}, export.TitleBlock{}, err
	}
	o, err := export.ParseOrientation(q.Get("orientation"))
	if err != nil {
		return export.Layout{}, export.TitleBlock{}, err
	}
	layout := export.Layout{Size: size, Orientation: o}
	if raw := q.Get("margin"); raw != "" {
		mm, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return export.Layout{}, export.TitleBlock{}, fmt.Errorf("%w: invalid margin %q", errInvalidInput, raw)
		}
		layout.Margins = export.UniformMargins(mm)
	}
	if err := layout.Validate(); err != nil {
		return export.Layout{}, export.TitleBlock{}, err
	}

	tb := export.TitleBlock{
		DrawingNumber: q.Get("drawingNumber"),
		Revision:      q.Get("revision"),
		DrawnBy:       q.Get("drawnBy"),
		CheckedBy:     q.Get("checkedBy"),
		ApprovedBy:    q.Get("approvedBy"),
	}
	return layout, tb, nil
}

func (s *server) handleQuotePDF(w http.ResponseWriter, r *http.Request) {
	layout, tb, err := pdfOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.loadDocument(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc.Layout, doc.TitleBlock = layout, tb
	b, err := export.PDF(doc)
	if err != nil {
		s.fail(w, r, fmt.Errorf("render pdf: %w", err))
		return
	}
	writeAttachment(w, contentTypePDF, "quote-"+doc.Quote.ID+".pdf", b)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
